// Package scheduler triggers periodic collection on REFRESH_SCHEDULE.
package scheduler

import (
	"context"
	"sync"
	"time"

	"buckler-tracker/internal/config"
	"buckler-tracker/internal/domain"
	logging "buckler-tracker/internal/logger"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Collector runs one full collection. *service.MatchService implements it.
type Collector interface {
	Collect(ctx context.Context, limit int) (*domain.ReconcileResult, error)
}

type Scheduler struct {
	cron      *cron.Cron
	spec      string
	collector Collector
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	active bool
}

func New(cfg *config.Config, collector Collector, logger zerolog.Logger) *Scheduler {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		spec:      cfg.RefreshSchedule,
		collector: collector,
		logger:    logging.Component(logger, "scheduler"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start registers the collection job. An empty schedule disables it.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		s.logger.Info().Msg("no refresh schedule configured")
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", s.spec).Msg("scheduler started")
	return nil
}

// tick skips a run while the previous one is still going.
func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		s.logger.Warn().Msg("previous collection still running, skipping tick")
		return
	}
	s.active = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.active = false
		s.mu.Unlock()
	}()

	result, err := s.collector.Collect(s.ctx, 0)
	if err != nil {
		s.logger.Error().Err(err).Bool("auth", domain.IsAuthError(err)).Msg("scheduled collection failed")
		return
	}
	s.logger.Info().
		Str("canonical_id", result.CanonicalID).
		Int("inserted", result.Inserted).
		Int("scraped", result.Scraped).
		Msg("scheduled collection finished")
}

// Stop cancels an in-flight run and waits for the cron goroutine to exit.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("scheduled job did not finish before shutdown")
	}
}
