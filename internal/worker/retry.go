package worker

import (
	"context"
	"time"

	"buckler-tracker/internal/domain"
	"buckler-tracker/internal/scraper"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// retryingSource retries transient extraction failures with exponential
// backoff. Auth and identity errors are returned on the first attempt.
type retryingSource struct {
	inner    scraper.Source
	attempts int
	base     time.Duration
	logger   zerolog.Logger
}

func (r *retryingSource) ExtractProfile(ctx context.Context, knownID string) (*domain.ProfileData, error) {
	var profile *domain.ProfileData
	err := r.do(ctx, "profile", func(ctx context.Context) error {
		var err error
		profile, err = r.inner.ExtractProfile(ctx, knownID)
		return err
	})
	return profile, err
}

func (r *retryingSource) ExtractMatchHistory(ctx context.Context, canonicalID, subjectName string, limit int) ([]domain.MatchData, error) {
	var matches []domain.MatchData
	err := r.do(ctx, "battlelog", func(ctx context.Context) error {
		var err error
		matches, err = r.inner.ExtractMatchHistory(ctx, canonicalID, subjectName, limit)
		return err
	})
	return matches, err
}

func (r *retryingSource) do(ctx context.Context, op string, fn func(context.Context) error) error {
	b := retry.WithMaxRetries(uint64(max(r.attempts-1, 0)), retry.NewExponential(r.base))
	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err != nil && domain.IsTransient(err) {
			r.logger.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("transient extraction failure, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
}
