package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"buckler-tracker/internal/db"
	"buckler-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Latest returns the most recently refreshed profile.
func (r *PlayerRepository) Latest(ctx context.Context) (*domain.Player, error) {
	player, err := r.queries.GetLatestPlayer(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainPlayer(player), nil
}

// Upsert writes every mutable field and refreshes last_refreshed. The id is
// written back onto player.
func (r *PlayerRepository) Upsert(ctx context.Context, player *domain.Player) error {
	id, err := upsertPlayer(ctx, r.queries, player)
	if err != nil {
		return err
	}
	player.ID = id
	return nil
}

// DeleteAll wipes every match and then every profile in one transaction.
func (r *PlayerRepository) DeleteAll(ctx context.Context) (matches int64, players int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	matches, err = qtx.DeleteAllMatches(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete matches: %w", err)
	}
	players, err = qtx.DeleteAllPlayers(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete players: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit wipe: %w", err)
	}

	r.logger.Info().Int64("matches", matches).Int64("players", players).Msg("database wiped")
	return matches, players, nil
}

func upsertPlayer(ctx context.Context, q *db.Queries, player *domain.Player) (int64, error) {
	now := time.Now().UTC()
	if player.LastRefreshed.IsZero() {
		player.LastRefreshed = now
	}
	if player.CreatedAt.IsZero() {
		player.CreatedAt = now
	}
	player.UpdatedAt = now

	id, err := q.UpsertPlayer(ctx, db.UpsertPlayerParams{
		CanonicalID:   player.CanonicalID,
		DisplayName:   player.DisplayName,
		RatingPoints:  int64(player.RatingPoints),
		RankTier:      player.RankTier,
		RatingScore:   toNullInt(player.RatingScore),
		MainCharacter: player.MainCharacter,
		LastRefreshed: player.LastRefreshed.UTC(),
		CreatedAt:     player.CreatedAt.UTC(),
		UpdatedAt:     player.UpdatedAt,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert player %s: %w", player.CanonicalID, err)
	}
	return id, nil
}

func toDomainPlayer(p db.Player) *domain.Player {
	return &domain.Player{
		ID:            p.ID,
		CanonicalID:   p.CanonicalID,
		DisplayName:   p.DisplayName,
		RatingPoints:  int(p.RatingPoints),
		RankTier:      p.RankTier,
		RatingScore:   fromNullInt(p.RatingScore),
		MainCharacter: p.MainCharacter,
		LastRefreshed: p.LastRefreshed,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toNullInt(v *int) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

func fromNullInt(v *int64) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}
