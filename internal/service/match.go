package service

import (
	"context"
	"errors"
	"fmt"

	"buckler-tracker/internal/config"
	"buckler-tracker/internal/constants"
	"buckler-tracker/internal/domain"
	"buckler-tracker/internal/repository"
	"buckler-tracker/internal/scraper"

	"github.com/rs/zerolog"
)

type MatchService struct {
	runner     Runner
	reconciler *Reconciler
	playerSvc  *PlayerService
	matchRepo  *repository.MatchRepository
	playerRepo *repository.PlayerRepository
	cfg        *config.Config
	logger     zerolog.Logger
}

func NewMatchService(runner Runner, reconciler *Reconciler, playerSvc *PlayerService, matchRepo *repository.MatchRepository, playerRepo *repository.PlayerRepository, cfg *config.Config, logger zerolog.Logger) *MatchService {
	return &MatchService{
		runner:     runner,
		reconciler: reconciler,
		playerSvc:  playerSvc,
		matchRepo:  matchRepo,
		playerRepo: playerRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// Collect runs the full pipeline: profile, battle log, reconcile. Both
// extractions run as one job so no other navigation can slip between them.
func (s *MatchService) Collect(ctx context.Context, limit int) (*domain.ReconcileResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.CollectTimeout)
	defer cancel()

	subjectID, err := s.playerSvc.SubjectID(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.MatchLimit
	}

	s.logger.Info().Str("subject_id", subjectID).Int("limit", limit).Msg("collecting matches")

	var (
		profile *domain.ProfileData
		scraped []domain.MatchData
	)
	err = s.runner.Do(ctx, "collect", func(ctx context.Context, src scraper.Source) error {
		var err error
		profile, err = src.ExtractProfile(ctx, subjectID)
		if err != nil {
			return err
		}
		scraped, err = src.ExtractMatchHistory(ctx, profile.CanonicalID, profile.DisplayName, limit)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnresolvedIdentity) {
			s.logger.Warn().Msg("profile identity unresolved, skipping battle log")
			return nil, err
		}
		s.logger.Error().Err(err).Msg("collection failed")
		return nil, fmt.Errorf("failed to collect matches: %w", err)
	}

	result, err := s.reconciler.Reconcile(ctx, profile, scraped)
	if err != nil {
		s.logger.Error().Err(err).Str("canonical_id", profile.CanonicalID).Msg("failed to reconcile")
		return nil, err
	}
	s.playerSvc.rememberSubject(ctx, subjectID, profile.CanonicalID)
	return result, nil
}

// List returns the latest subject's matches, newest first.
func (s *MatchService) List(ctx context.Context, limit int) ([]domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	player, err := s.playerRepo.Latest(ctx)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return []domain.Match{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.matchRepo.ListByPlayer(ctx, player.ID, clampLimit(limit, constants.DefaultMatchListLimit))
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return min(limit, constants.MaxListLimit)
}
