package scraper

import (
	"context"
	"errors"
	"strings"

	"buckler-tracker/internal/constants"
	"buckler-tracker/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// Class prefixes carry a CSS-module hash suffix on the site, so every
// selector matches on the stable prefix only.
const (
	selEntries   = "[class*='battle_data_battlelog__list'] > li"
	selDate      = "[class*='battle_data_date__']"
	selNameP1    = "[class*='battle_data_name_p1__'] [class*='battle_data_name__']"
	selNameP2    = "[class*='battle_data_name_p2__'] [class*='battle_data_name__']"
	selPlayer1   = "[class*='battle_data_player1__']"
	selPlayer2   = "[class*='battle_data_player2__'], [class*='battle_data_player_2__']"
	selCharacter = "[class*='battle_data_character__'] img"
	selRating    = "[class*='battle_data_lp__']"

	classWin  = "battle_data_win__"
	classLose = "battle_data_lose__"
)

var errMissingNames = errors.New("entry has no combatant names")

// ExtractMatchHistory reads up to limit ranked battle-log entries, most
// recent first. limit <= 0 uses the configured default.
func (e *Extractor) ExtractMatchHistory(ctx context.Context, canonicalID, subjectName string, limit int) ([]domain.MatchData, error) {
	if limit <= 0 {
		limit = e.defaultLimit
	}

	doc, err := e.load(ctx, e.battleLogURL(canonicalID))
	if err != nil {
		return nil, err
	}

	matches, total := ParseBattleLog(doc, subjectName, limit, e.logger)
	if total == 0 {
		e.logger.Warn().Str("canonical_id", canonicalID).Msg("no battle log entries found")
		e.capture(ctx, "battlelog-empty-"+canonicalID)
	}

	e.logger.Info().
		Str("canonical_id", canonicalID).
		Int("entries", total).
		Int("parsed", len(matches)).
		Int("limit", limit).
		Msg("battle log extracted")
	return matches, nil
}

// ParseBattleLog parses the first limit entries of a battle-log page. It
// returns the parsed matches and the number of entries found on the page.
// Entries that cannot be parsed are skipped. A negative limit parses nothing.
func ParseBattleLog(doc *goquery.Document, subjectName string, limit int, logger zerolog.Logger) ([]domain.MatchData, int) {
	limit = max(limit, 0)
	entries := doc.Find(selEntries)
	total := entries.Length()
	matches := make([]domain.MatchData, 0, min(total, limit))

	entries.EachWithBreak(func(i int, li *goquery.Selection) bool {
		if i >= limit {
			return false
		}
		m, err := parseEntry(li, subjectName)
		if err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("skipping battle log entry")
			return true
		}
		if !m.IdentityConfident {
			logger.Warn().
				Int("index", i).
				Str("subject", subjectName).
				Str("opponent", m.OpponentName).
				Msg("subject slot ambiguous, assuming slot 2")
		}
		matches = append(matches, m)
		return true
	})
	return matches, total
}

func parseEntry(li *goquery.Selection, subjectName string) (domain.MatchData, error) {
	p1Name := strings.TrimSpace(li.Find(selNameP1).First().Text())
	p2Name := strings.TrimSpace(li.Find(selNameP2).First().Text())
	if p1Name == "" && p2Name == "" {
		return domain.MatchData{}, errMissingNames
	}

	p1 := li.Find(selPlayer1).First()
	p2 := li.Find(selPlayer2)

	slot, confident := ResolveSubjectSlot(subjectName, p1Name, p2Name)
	subject, opponent := p2, p1
	opponentName := p1Name
	if slot == SlotOne {
		subject, opponent = p1, p2
		opponentName = p2Name
	}

	m := domain.MatchData{
		DateText:          strings.TrimSpace(li.Find(selDate).First().Text()),
		OpponentName:      orUnknown(opponentName),
		OpponentCharacter: portraitAlt(opponent),
		SubjectCharacter:  portraitAlt(subject),
		Outcome:           slotOutcome(subject),
		IdentityConfident: confident,
	}
	m.SubjectRatingScore, m.SubjectRatingPoints = ParseRating(subject.Find(selRating).First().Text())
	m.OpponentRatingScore, m.OpponentRatingPoints = ParseRating(opponent.Find(selRating).First().Text())
	return m, nil
}

// slotOutcome reads the win/lose token off the slot container classes.
func slotOutcome(slot *goquery.Selection) domain.Outcome {
	outcome := domain.OutcomeUnknown
	slot.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		switch {
		case strings.Contains(class, classWin):
			outcome = domain.OutcomeWin
		case strings.Contains(class, classLose):
			outcome = domain.OutcomeLose
		default:
			return true
		}
		return false
	})
	return outcome
}

func portraitAlt(slot *goquery.Selection) string {
	alt, _ := slot.Find(selCharacter).First().Attr("alt")
	if strings.TrimSpace(alt) == "" {
		return constants.UnknownValue
	}
	return strings.TrimSpace(alt)
}
