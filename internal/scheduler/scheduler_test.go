package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"buckler-tracker/internal/config"
	"buckler-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type countingCollector struct {
	calls atomic.Int32
	block chan struct{}
	err   error
}

func (c *countingCollector) Collect(ctx context.Context, _ int) (*domain.ReconcileResult, error) {
	c.calls.Add(1)
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	return &domain.ReconcileResult{CanonicalID: "4285684297"}, nil
}

func TestEmptyScheduleIsDisabled(t *testing.T) {
	c := &countingCollector{}
	s := New(&config.Config{Location: time.UTC}, c, zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop(context.Background())
	if c.calls.Load() != 0 {
		t.Errorf("collector called %d times", c.calls.Load())
	}
}

func TestInvalidSchedule(t *testing.T) {
	s := New(&config.Config{Location: time.UTC, RefreshSchedule: "not a cron"}, &countingCollector{}, zerolog.Nop())
	if err := s.Start(); err == nil {
		t.Error("expected an error for an invalid schedule")
	}
}

func TestTickSkipsOverlappingRuns(t *testing.T) {
	c := &countingCollector{block: make(chan struct{})}
	s := New(&config.Config{Location: time.UTC}, c, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		s.tick()
		close(done)
	}()
	for c.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	s.tick()
	if c.calls.Load() != 1 {
		t.Errorf("overlapping tick should be skipped, calls=%d", c.calls.Load())
	}

	close(c.block)
	<-done
	s.tick()
	if c.calls.Load() != 2 {
		t.Errorf("calls after release: %d", c.calls.Load())
	}
}

func TestStopCancelsRun(t *testing.T) {
	c := &countingCollector{block: make(chan struct{}), err: errors.New("unused")}
	s := New(&config.Config{Location: time.UTC}, c, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		s.tick()
		close(done)
	}()
	for c.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	s.Stop(context.Background())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("in-flight run was not cancelled")
	}
}
