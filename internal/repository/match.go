package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"buckler-tracker/internal/db"
	"buckler-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type MatchRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// SaveResult reports what SaveScrape wrote.
type SaveResult struct {
	PlayerID int64
	Inserted int
	// Skipped holds the indexes of matches that were already stored.
	Skipped []int
}

// SaveScrape upserts the profile and appends the matches that are not yet
// stored, all in one transaction. Repeats inside the batch collapse through
// MatchKey.Equal; FindDuplicateMatch compares the same fields against stored
// rows.
func (r *MatchRepository) SaveScrape(ctx context.Context, player *domain.Player, matches []domain.Match) (*SaveResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	playerID, err := upsertPlayer(ctx, qtx, player)
	if err != nil {
		return nil, err
	}
	player.ID = playerID

	result := &SaveResult{PlayerID: playerID}
	now := time.Now().UTC()
	seen := make([]domain.MatchKey, 0, len(matches))

	for i := range matches {
		m := &matches[i]
		m.PlayerID = playerID
		key := m.Key()

		if containsKey(seen, key) {
			result.Skipped = append(result.Skipped, i)
			continue
		}
		seen = append(seen, key)

		dup, err := findDuplicate(ctx, qtx, playerID, key)
		if err != nil {
			return nil, err
		}
		if dup {
			result.Skipped = append(result.Skipped, i)
			continue
		}

		if m.ID == "" {
			m.ID, err = gonanoid.New()
			if err != nil {
				return nil, fmt.Errorf("failed to generate nanoid: %w", err)
			}
		}
		m.CreatedAt = now

		err = qtx.InsertMatch(ctx, db.InsertMatchParams{
			ID:                   m.ID,
			PlayerID:             playerID,
			OpponentName:         m.OpponentName,
			OpponentCharacter:    m.OpponentCharacter,
			OpponentRatingScore:  toNullInt(m.OpponentRatingScore),
			OpponentRatingPoints: toNullInt(m.OpponentRatingPoints),
			SubjectCharacter:     m.SubjectCharacter,
			SubjectRatingScore:   toNullInt(m.SubjectRatingScore),
			SubjectRatingPoints:  toNullInt(m.SubjectRatingPoints),
			Outcome:              string(m.Outcome),
			OccurredAt:           m.OccurredAt.UTC(),
			CreatedAt:            now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to insert match vs %s: %w", m.OpponentName, err)
		}
		result.Inserted++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit scrape: %w", err)
	}

	r.logger.Debug().
		Int64("player_id", playerID).
		Int("inserted", result.Inserted).
		Int("skipped", len(result.Skipped)).
		Msg("scrape saved")

	return result, nil
}

func containsKey(keys []domain.MatchKey, key domain.MatchKey) bool {
	for _, k := range keys {
		if k.Equal(key) {
			return true
		}
	}
	return false
}

func findDuplicate(ctx context.Context, q *db.Queries, playerID int64, key domain.MatchKey) (bool, error) {
	_, err := q.FindDuplicateMatch(ctx, db.FindDuplicateMatchParams{
		PlayerID:            playerID,
		OpponentName:        key.OpponentName,
		OpponentCharacter:   key.OpponentCharacter,
		Outcome:             string(key.Outcome),
		SubjectRatingScore:  toNullInt(key.SubjectRatingScore),
		SubjectRatingPoints: toNullInt(key.SubjectRatingPoints),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate match: %w", err)
	}
	return true, nil
}

func (r *MatchRepository) ListByPlayer(ctx context.Context, playerID int64, limit int) ([]domain.Match, error) {
	rows, err := r.queries.ListMatchesByPlayer(ctx, db.ListMatchesByPlayerParams{
		PlayerID: playerID,
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.Match, len(rows))
	for i, m := range rows {
		result[i] = domain.Match{
			ID:                   m.ID,
			PlayerID:             m.PlayerID,
			OpponentName:         m.OpponentName,
			OpponentCharacter:    m.OpponentCharacter,
			OpponentRatingScore:  fromNullInt(m.OpponentRatingScore),
			OpponentRatingPoints: fromNullInt(m.OpponentRatingPoints),
			SubjectCharacter:     m.SubjectCharacter,
			SubjectRatingScore:   fromNullInt(m.SubjectRatingScore),
			SubjectRatingPoints:  fromNullInt(m.SubjectRatingPoints),
			Outcome:              domain.Outcome(m.Outcome),
			OccurredAt:           m.OccurredAt,
			CreatedAt:            m.CreatedAt,
		}
	}
	return result, nil
}

// Latest returns the newest stored match, or nil when there is none.
func (r *MatchRepository) Latest(ctx context.Context, playerID int64) (*domain.Match, error) {
	matches, err := r.ListByPlayer(ctx, playerID, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (r *MatchRepository) CountOutcomes(ctx context.Context, playerID int64) (domain.Record, error) {
	row, err := r.queries.CountOutcomes(ctx, playerID)
	if err != nil {
		return domain.Record{}, err
	}
	return toRecord("", row.Total, row.Wins, row.Losses), nil
}

func (r *MatchRepository) CountRecentOutcomes(ctx context.Context, playerID int64, limit int) (domain.Record, error) {
	row, err := r.queries.CountRecentOutcomes(ctx, db.CountRecentOutcomesParams{
		PlayerID: playerID,
		Limit:    int64(limit),
	})
	if err != nil {
		return domain.Record{}, err
	}
	return toRecord("", row.Total, row.Wins, row.Losses), nil
}

func (r *MatchRepository) RecordVsOpponent(ctx context.Context, playerID int64, opponent string) (domain.Record, error) {
	row, err := r.queries.CountOutcomesVsOpponent(ctx, db.CountOutcomesVsOpponentParams{
		PlayerID:     playerID,
		OpponentName: opponent,
	})
	if err != nil {
		return domain.Record{}, err
	}
	return toRecord(opponent, row.Total, row.Wins, row.Losses), nil
}

func (r *MatchRepository) RecordVsCharacter(ctx context.Context, playerID int64, character string) (domain.Record, error) {
	row, err := r.queries.CountOutcomesVsCharacter(ctx, db.CountOutcomesVsCharacterParams{
		PlayerID:          playerID,
		OpponentCharacter: character,
	})
	if err != nil {
		return domain.Record{}, err
	}
	return toRecord(character, row.Total, row.Wins, row.Losses), nil
}

// RatingHistory returns the newest limit rating-score points, oldest first.
func (r *MatchRepository) RatingHistory(ctx context.Context, playerID int64, limit int) ([]domain.RatingPoint, error) {
	rows, err := r.queries.ListRatingHistory(ctx, db.ListRatingHistoryParams{
		PlayerID: playerID,
		Limit:    int64(limit),
	})
	if err != nil {
		return nil, err
	}

	points := make([]domain.RatingPoint, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if row.SubjectRatingScore == nil {
			continue
		}
		points = append(points, domain.RatingPoint{
			Date:    row.OccurredAt,
			Score:   int(*row.SubjectRatingScore),
			Outcome: domain.Outcome(row.Outcome),
		})
	}
	return points, nil
}

func (r *MatchRepository) OpponentNames(ctx context.Context, playerID int64) ([]string, error) {
	names, err := r.queries.ListOpponentNames(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func toRecord(opponent string, total, wins, losses int64) domain.Record {
	return domain.Record{
		Opponent: opponent,
		Wins:     int(wins),
		Losses:   int(losses),
		Total:    int(total),
	}
}
