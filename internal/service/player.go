package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"buckler-tracker/internal/config"
	"buckler-tracker/internal/constants"
	"buckler-tracker/internal/domain"
	"buckler-tracker/internal/repository"
	"buckler-tracker/internal/scraper"

	"github.com/rs/zerolog"
)

// Runner serializes scrape jobs on the browser worker. *worker.Queue
// implements it.
type Runner interface {
	Do(ctx context.Context, name string, fn func(ctx context.Context, src scraper.Source) error) error
}

var ErrInvalidSubjectID = errors.New("subject id must be a numeric profile id")

type PlayerService struct {
	runner   Runner
	repo     *repository.PlayerRepository
	settings *repository.SettingsRepository
	cfg      *config.Config
	logger   zerolog.Logger
}

func NewPlayerService(runner Runner, repo *repository.PlayerRepository, settings *repository.SettingsRepository, cfg *config.Config, logger zerolog.Logger) *PlayerService {
	return &PlayerService{runner: runner, repo: repo, settings: settings, cfg: cfg, logger: logger}
}

// Refresh extracts the subject profile and upserts it. When the identity
// cannot be resolved it returns the unsaved placeholder player together
// with domain.ErrUnresolvedIdentity.
func (s *PlayerService) Refresh(ctx context.Context) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.CollectTimeout)
	defer cancel()

	subjectID, err := s.SubjectID(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("subject_id", subjectID).Msg("refreshing profile")

	var profile *domain.ProfileData
	err = s.runner.Do(ctx, "refresh", func(ctx context.Context, src scraper.Source) error {
		var err error
		profile, err = src.ExtractProfile(ctx, subjectID)
		return err
	})
	if errors.Is(err, domain.ErrUnresolvedIdentity) && profile != nil {
		s.logger.Warn().Msg("profile identity unresolved, not persisting")
		return PlayerFromProfile(profile), err
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to extract profile")
		return nil, fmt.Errorf("failed to extract profile: %w", err)
	}

	player := PlayerFromProfile(profile)
	if err := s.repo.Upsert(ctx, player); err != nil {
		s.logger.Error().Err(err).Str("canonical_id", player.CanonicalID).Msg("failed to upsert player")
		return nil, fmt.Errorf("failed to upsert player: %w", err)
	}
	s.rememberSubject(ctx, subjectID, player.CanonicalID)

	s.logger.Info().Str("canonical_id", player.CanonicalID).Str("name", player.DisplayName).Msg("profile refreshed")
	return player, nil
}

// Latest returns the most recently refreshed profile.
func (s *PlayerService) Latest(ctx context.Context) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.repo.Latest(ctx)
}

// SubjectID returns the configured subject id, falling back to the stored
// setting. Empty means the id is discovered from the landing page.
func (s *PlayerService) SubjectID(ctx context.Context) (string, error) {
	if !scraper.IsPlaceholderID(s.cfg.SubjectID) {
		return strings.TrimSpace(s.cfg.SubjectID), nil
	}
	id, _, err := s.settings.Get(ctx, constants.SettingSubjectID)
	if err != nil {
		return "", fmt.Errorf("failed to read subject id: %w", err)
	}
	return id, nil
}

func (s *PlayerService) SetSubjectID(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id != "" && !isCanonicalID(id) {
		return ErrInvalidSubjectID
	}
	if err := s.settings.Set(ctx, constants.SettingSubjectID, id); err != nil {
		return fmt.Errorf("failed to save subject id: %w", err)
	}
	s.logger.Info().Str("subject_id", id).Msg("subject id updated")
	return nil
}

// rememberSubject stores a discovered id so later runs skip the landing
// page scan.
func (s *PlayerService) rememberSubject(ctx context.Context, requested, resolved string) {
	if !scraper.IsPlaceholderID(requested) || scraper.IsPlaceholderID(resolved) {
		return
	}
	if err := s.settings.Set(ctx, constants.SettingSubjectID, resolved); err != nil {
		s.logger.Warn().Err(err).Str("canonical_id", resolved).Msg("failed to remember subject id")
	}
}

func isCanonicalID(id string) bool {
	if len(id) < constants.MinCanonicalIDLength {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
