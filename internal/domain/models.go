package domain

import (
	"time"
)

type Outcome string

const (
	OutcomeWin     Outcome = "WIN"
	OutcomeLose    Outcome = "LOSE"
	OutcomeUnknown Outcome = "UNKNOWN"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWin, OutcomeLose, OutcomeUnknown:
		return true
	}
	return false
}

// Player is the persisted subject profile. Every refresh replaces the
// mutable fields wholesale.
type Player struct {
	ID            int64
	CanonicalID   string
	DisplayName   string
	RatingPoints  int
	RankTier      string
	RatingScore   *int
	MainCharacter string
	LastRefreshed time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Match is append-only once stored.
type Match struct {
	ID                   string // nanoid
	PlayerID             int64
	OpponentName         string
	OpponentCharacter    string
	OpponentRatingScore  *int
	OpponentRatingPoints *int
	SubjectCharacter     string
	SubjectRatingScore   *int
	SubjectRatingPoints  *int
	Outcome              Outcome
	OccurredAt           time.Time
	CreatedAt            time.Time
}

// ProfileData is what the profile extractor hands to reconciliation.
type ProfileData struct {
	CanonicalID   string
	DisplayName   string
	RatingPoints  int
	RankTier      string
	RatingScore   *int
	MainCharacter string
	Strategy      string
}

// MatchData is one scraped battle-log entry, timestamp still unparsed.
type MatchData struct {
	DateText             string
	OpponentName         string
	OpponentCharacter    string
	OpponentRatingScore  *int
	OpponentRatingPoints *int
	SubjectCharacter     string
	SubjectRatingScore   *int
	SubjectRatingPoints  *int
	Outcome              Outcome
	IdentityConfident    bool
}

type ReconcileResult struct {
	PlayerID      int64
	CanonicalID   string
	Inserted      int
	Scraped       int
	Ambiguous     int
	DateFallbacks int
}

type Record struct {
	Opponent string
	Wins     int
	Losses   int
	Total    int
}

type StatsSummary struct {
	Total            Record
	Recent           Record
	SubjectCharacter string
	LastOpponent     *Record
	LastOpponentChar *Record
}

type RatingPoint struct {
	Date    time.Time
	Score   int
	Outcome Outcome
}
