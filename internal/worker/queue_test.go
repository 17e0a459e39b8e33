package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"buckler-tracker/internal/config"
	"buckler-tracker/internal/domain"
	"buckler-tracker/internal/scraper"

	"github.com/rs/zerolog"
)

type fakeSession struct{ shutdowns atomic.Int32 }

func (s *fakeSession) Shutdown() { s.shutdowns.Add(1) }

type flakySource struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    int
}

func (f *flakySource) ExtractProfile(context.Context, string) (*domain.ProfileData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return &domain.ProfileData{CanonicalID: "4285684297"}, nil
}

func (f *flakySource) ExtractMatchHistory(context.Context, string, string, int) ([]domain.MatchData, error) {
	return nil, nil
}

func testConfig(size int) *config.Config {
	return &config.Config{QueueSize: size, RetryAttempts: 3, RetryBaseDelay: time.Millisecond}
}

func TestQueueRunsJobsOneAtATime(t *testing.T) {
	session := &fakeSession{}
	q := NewQueue(session, &flakySource{}, testConfig(8), zerolog.Nop())

	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := q.Do(context.Background(), "job", func(ctx context.Context, _ scraper.Source) error {
				n := running.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				running.Add(-1)
				return nil
			})
			if err != nil && !errors.Is(err, ErrQueueFull) {
				t.Errorf("do: %v", err)
			}
		}()
	}
	wg.Wait()

	if peak.Load() != 1 {
		t.Errorf("jobs overlapped: peak concurrency %d", peak.Load())
	}
	if err := q.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if session.shutdowns.Load() != 1 {
		t.Errorf("session shutdowns: got %d, want 1", session.shutdowns.Load())
	}
}

func TestQueueClosed(t *testing.T) {
	session := &fakeSession{}
	q := NewQueue(session, &flakySource{}, testConfig(1), zerolog.Nop())
	if err := q.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := q.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}

	err := q.Do(context.Background(), "late", func(context.Context, scraper.Source) error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Errorf("got %v, want ErrQueueClosed", err)
	}
}

func TestQueueStopTimeoutStillShutsSession(t *testing.T) {
	session := &fakeSession{}
	q := NewQueue(session, &flakySource{}, testConfig(1), zerolog.Nop())

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	go q.Do(context.Background(), "slow", func(context.Context, scraper.Source) error {
		close(started)
		<-release
		return nil
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := q.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want DeadlineExceeded", err)
	}
	if session.shutdowns.Load() != 1 {
		t.Errorf("session shutdowns: got %d, want 1", session.shutdowns.Load())
	}
}

func TestQueueFull(t *testing.T) {
	q := NewQueue(&fakeSession{}, &flakySource{}, testConfig(1), zerolog.Nop())
	defer q.Stop(context.Background())

	started := make(chan struct{})
	release := make(chan struct{})
	go q.Do(context.Background(), "blocker", func(context.Context, scraper.Source) error {
		close(started)
		<-release
		return nil
	})
	<-started

	// fills the single buffered slot
	go q.Do(context.Background(), "waiting", func(context.Context, scraper.Source) error { return nil })
	deadline := time.Now().Add(time.Second)
	for len(q.jobs) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	err := q.Do(context.Background(), "rejected", func(context.Context, scraper.Source) error { return nil })
	close(release)
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("got %v, want ErrQueueFull", err)
	}
}

func TestTransientErrorsAreRetried(t *testing.T) {
	src := &flakySource{failures: 2, err: domain.ErrNavigationTimeout}
	q := NewQueue(&fakeSession{}, src, testConfig(1), zerolog.Nop())
	defer q.Stop(context.Background())

	var profile *domain.ProfileData
	err := q.Do(context.Background(), "profile", func(ctx context.Context, s scraper.Source) error {
		var err error
		profile, err = s.ExtractProfile(ctx, "")
		return err
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if profile == nil || src.calls != 3 {
		t.Errorf("calls: got %d, want 3", src.calls)
	}
}

func TestRetriesGiveUp(t *testing.T) {
	src := &flakySource{failures: 10, err: domain.ErrNavigationTimeout}
	q := NewQueue(&fakeSession{}, src, testConfig(1), zerolog.Nop())
	defer q.Stop(context.Background())

	err := q.Do(context.Background(), "profile", func(ctx context.Context, s scraper.Source) error {
		_, err := s.ExtractProfile(ctx, "")
		return err
	})
	if !errors.Is(err, domain.ErrNavigationTimeout) {
		t.Errorf("got %v, want ErrNavigationTimeout", err)
	}
	if src.calls != 3 {
		t.Errorf("calls: got %d, want 3", src.calls)
	}
}

func TestAuthErrorsAreNotRetried(t *testing.T) {
	src := &flakySource{failures: 10, err: domain.ErrAuthExpired}
	q := NewQueue(&fakeSession{}, src, testConfig(1), zerolog.Nop())
	defer q.Stop(context.Background())

	err := q.Do(context.Background(), "profile", func(ctx context.Context, s scraper.Source) error {
		_, err := s.ExtractProfile(ctx, "")
		return err
	})
	if !errors.Is(err, domain.ErrAuthExpired) {
		t.Errorf("got %v, want ErrAuthExpired", err)
	}
	if src.calls != 1 {
		t.Errorf("calls: got %d, want 1", src.calls)
	}
}

func TestPanickingJob(t *testing.T) {
	q := NewQueue(&fakeSession{}, &flakySource{}, testConfig(1), zerolog.Nop())
	defer q.Stop(context.Background())

	err := q.Do(context.Background(), "boom", func(context.Context, scraper.Source) error { panic("boom") })
	if err == nil {
		t.Fatal("expected an error from a panicking job")
	}
	if err := q.Do(context.Background(), "after", func(context.Context, scraper.Source) error { return nil }); err != nil {
		t.Errorf("worker should survive a panic: %v", err)
	}
}
