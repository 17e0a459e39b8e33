// Package worker runs every browser job on one goroutine, which owns the
// browser session for the life of the process.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"buckler-tracker/internal/config"
	"buckler-tracker/internal/constants"
	"buckler-tracker/internal/scraper"
	logging "buckler-tracker/internal/logger"

	"github.com/rs/zerolog"
)

var (
	ErrQueueFull   = errors.New("scrape queue is full")
	ErrQueueClosed = errors.New("scrape queue is closed")
)

// Shutdowner releases the browser resources held by the worker.
type Shutdowner interface {
	Shutdown()
}

type JobFunc func(ctx context.Context, src scraper.Source) error

type job struct {
	ctx  context.Context
	name string
	fn   JobFunc
	done chan error
}

type Queue struct {
	jobs    chan job
	source  scraper.Source
	session Shutdowner
	logger  zerolog.Logger

	mu      sync.RWMutex
	closed  bool
	stopped chan struct{}
}

func NewQueue(session Shutdowner, source scraper.Source, cfg *config.Config, logger zerolog.Logger) *Queue {
	size := cfg.QueueSize
	if size <= 0 {
		size = constants.DefaultQueueSize
	}
	base := cfg.RetryBaseDelay
	if base <= 0 {
		base = constants.DefaultRetryBaseDelay
	}
	logger = logging.Component(logger, "worker")

	q := &Queue{
		jobs: make(chan job, size),
		source: &retryingSource{
			inner:    source,
			attempts: cfg.RetryAttempts,
			base:     base,
			logger:   logger,
		},
		session: session,
		logger:  logger,
		stopped: make(chan struct{}),
	}
	go q.run()
	return q
}

// Do queues fn and waits for it to finish. A caller that gives up early
// gets ctx.Err(); the job itself is skipped if it has not started yet.
func (q *Queue) Do(ctx context.Context, name string, fn func(ctx context.Context, src scraper.Source) error) error {
	j := job{ctx: ctx, name: name, fn: fn, done: make(chan error, 1)}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	select {
	case q.jobs <- j:
	default:
		q.mu.RUnlock()
		q.logger.Warn().Str("job", name).Msg("queue full, rejecting job")
		return ErrQueueFull
	}
	q.mu.RUnlock()

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) run() {
	defer close(q.stopped)
	for j := range q.jobs {
		if err := j.ctx.Err(); err != nil {
			q.logger.Debug().Str("job", j.name).Msg("job cancelled before start")
			j.done <- err
			continue
		}
		j.done <- q.exec(j)
	}
}

func (q *Queue) exec(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error().Interface("panic", r).Str("job", j.name).Msg("job panicked")
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
		}
	}()

	q.logger.Debug().Str("job", j.name).Msg("job started")
	err = j.fn(j.ctx, q.source)
	if err != nil {
		q.logger.Warn().Err(err).Str("job", j.name).Msg("job failed")
	} else {
		q.logger.Debug().Str("job", j.name).Msg("job finished")
	}
	return err
}

// Stop rejects new jobs, lets queued ones finish and then shuts the browser
// session down. When ctx ends first the session is still shut down and the
// context error is returned. Safe to call more than once.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	select {
	case <-q.stopped:
	case <-ctx.Done():
		q.logger.Warn().Err(ctx.Err()).Msg("worker did not drain, shutting browser down anyway")
		q.session.Shutdown()
		return fmt.Errorf("worker did not drain: %w", ctx.Err())
	}
	q.session.Shutdown()
	q.logger.Info().Msg("worker stopped")
	return nil
}
