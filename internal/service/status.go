package service

import (
	"context"
	"database/sql"
	"errors"

	"buckler-tracker/internal/constants"
	"buckler-tracker/internal/domain"
	"buckler-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// AuthChecker reports whether a stored login session exists.
type AuthChecker interface {
	AuthStateExists() bool
}

type Status struct {
	AuthReady bool
	DBReady   bool
	Player    *domain.Player
}

type StatusService struct {
	auth       AuthChecker
	db         *sql.DB
	playerRepo *repository.PlayerRepository
	logger     zerolog.Logger
}

func NewStatusService(auth AuthChecker, sqlDB *sql.DB, playerRepo *repository.PlayerRepository, logger zerolog.Logger) *StatusService {
	return &StatusService{auth: auth, db: sqlDB, playerRepo: playerRepo, logger: logger}
}

func (s *StatusService) Status(ctx context.Context) *Status {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	st := &Status{AuthReady: s.auth.AuthStateExists()}
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("database ping failed")
		return st
	}
	st.DBReady = true

	player, err := s.playerRepo.Latest(ctx)
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound):
	case err != nil:
		s.logger.Warn().Err(err).Msg("failed to read latest player")
		st.DBReady = false
	default:
		st.Player = player
	}
	return st
}
