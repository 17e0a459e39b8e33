package service

import (
	"context"
	"errors"
	"fmt"

	"buckler-tracker/internal/constants"
	"buckler-tracker/internal/domain"
	"buckler-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// StatsService answers read-only questions about the latest subject. With
// no stored subject every answer is empty rather than an error.
type StatsService struct {
	playerRepo *repository.PlayerRepository
	matchRepo  *repository.MatchRepository
	logger     zerolog.Logger
}

func NewStatsService(playerRepo *repository.PlayerRepository, matchRepo *repository.MatchRepository, logger zerolog.Logger) *StatsService {
	return &StatsService{playerRepo: playerRepo, matchRepo: matchRepo, logger: logger}
}

func (s *StatsService) subject(ctx context.Context) (*domain.Player, error) {
	player, err := s.playerRepo.Latest(ctx)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return nil, nil
	}
	return player, err
}

func (s *StatsService) Summary(ctx context.Context, recentLimit int) (*domain.StatsSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	summary := &domain.StatsSummary{SubjectCharacter: constants.NoCharacter}
	player, err := s.subject(ctx)
	if err != nil || player == nil {
		return summary, err
	}
	recentLimit = clampLimit(recentLimit, constants.DefaultSummaryLimit)

	var last *domain.Match
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary.Total, err = s.matchRepo.CountOutcomes(gctx, player.ID)
		return err
	})
	g.Go(func() error {
		var err error
		summary.Recent, err = s.matchRepo.CountRecentOutcomes(gctx, player.ID, recentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		last, err = s.matchRepo.Latest(gctx, player.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Int64("player_id", player.ID).Msg("failed to build summary")
		return nil, fmt.Errorf("failed to build summary: %w", err)
	}
	if last == nil {
		return summary, nil
	}

	summary.SubjectCharacter = last.SubjectCharacter
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, err := s.matchRepo.RecordVsOpponent(gctx, player.ID, last.OpponentName)
		summary.LastOpponent = &rec
		return err
	})
	g.Go(func() error {
		rec, err := s.matchRepo.RecordVsCharacter(gctx, player.ID, last.OpponentCharacter)
		summary.LastOpponentChar = &rec
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Int64("player_id", player.ID).Msg("failed to build last opponent records")
		return nil, fmt.Errorf("failed to build summary: %w", err)
	}
	return summary, nil
}

func (s *StatsService) OpponentRecord(ctx context.Context, opponent string) (domain.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	player, err := s.subject(ctx)
	if err != nil || player == nil {
		return domain.Record{Opponent: opponent}, err
	}
	return s.matchRepo.RecordVsOpponent(ctx, player.ID, opponent)
}

// RatingHistory returns the newest limit rating-score points, oldest first.
func (s *StatsService) RatingHistory(ctx context.Context, limit int) ([]domain.RatingPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	player, err := s.subject(ctx)
	if err != nil || player == nil {
		return []domain.RatingPoint{}, err
	}
	return s.matchRepo.RatingHistory(ctx, player.ID, clampLimit(limit, constants.DefaultHistoryLimit))
}

func (s *StatsService) Opponents(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	player, err := s.subject(ctx)
	if err != nil || player == nil {
		return []string{}, err
	}
	return s.matchRepo.OpponentNames(ctx, player.ID)
}

// Wipe deletes every match and then every profile.
func (s *StatsService) Wipe(ctx context.Context) (matches, players int64, err error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	s.logger.Warn().Msg("wiping all stored data")
	return s.playerRepo.DeleteAll(ctx)
}
