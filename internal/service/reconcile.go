package service

import (
	"context"
	"fmt"
	"time"

	"buckler-tracker/internal/config"
	"buckler-tracker/internal/domain"
	"buckler-tracker/internal/repository"
	"buckler-tracker/internal/scraper"

	"github.com/rs/zerolog"
)

type Reconciler struct {
	matchRepo *repository.MatchRepository
	loc       *time.Location
	logger    zerolog.Logger
}

func NewReconciler(matchRepo *repository.MatchRepository, cfg *config.Config, logger zerolog.Logger) *Reconciler {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Reconciler{matchRepo: matchRepo, loc: loc, logger: logger}
}

// Reconcile upserts the profile and appends the scraped matches that are not
// stored yet. Unparseable dates fall back to now and are counted, never
// rejected.
func (r *Reconciler) Reconcile(ctx context.Context, profile *domain.ProfileData, scraped []domain.MatchData) (*domain.ReconcileResult, error) {
	if profile == nil || scraper.IsPlaceholderID(profile.CanonicalID) {
		return nil, domain.ErrUnresolvedIdentity
	}

	result := &domain.ReconcileResult{
		CanonicalID: profile.CanonicalID,
		Scraped:     len(scraped),
	}

	matches := make([]domain.Match, len(scraped))
	for i, md := range scraped {
		occurredAt, ok := ParseMatchTime(md.DateText, r.loc)
		if !ok {
			result.DateFallbacks++
			r.logger.Warn().
				Str("date_text", md.DateText).
				Str("opponent", md.OpponentName).
				Msg("unrecognized match date, using current time")
		}
		if !md.IdentityConfident {
			result.Ambiguous++
		}
		matches[i] = domain.Match{
			OpponentName:         md.OpponentName,
			OpponentCharacter:    md.OpponentCharacter,
			OpponentRatingScore:  md.OpponentRatingScore,
			OpponentRatingPoints: md.OpponentRatingPoints,
			SubjectCharacter:     md.SubjectCharacter,
			SubjectRatingScore:   md.SubjectRatingScore,
			SubjectRatingPoints:  md.SubjectRatingPoints,
			Outcome:              normalizeOutcome(md.Outcome),
			OccurredAt:           occurredAt,
		}
	}

	saved, err := r.matchRepo.SaveScrape(ctx, PlayerFromProfile(profile), matches)
	if err != nil {
		return nil, fmt.Errorf("failed to save scrape: %w", err)
	}
	result.PlayerID = saved.PlayerID
	result.Inserted = saved.Inserted

	r.logger.Info().
		Str("canonical_id", profile.CanonicalID).
		Int("scraped", result.Scraped).
		Int("inserted", result.Inserted).
		Int("ambiguous", result.Ambiguous).
		Int("date_fallbacks", result.DateFallbacks).
		Msg("scrape reconciled")
	return result, nil
}

// PlayerFromProfile maps extracted profile fields onto the stored record.
func PlayerFromProfile(p *domain.ProfileData) *domain.Player {
	return &domain.Player{
		CanonicalID:   p.CanonicalID,
		DisplayName:   p.DisplayName,
		RatingPoints:  max(p.RatingPoints, 0),
		RankTier:      p.RankTier,
		RatingScore:   p.RatingScore,
		MainCharacter: p.MainCharacter,
	}
}

func normalizeOutcome(o domain.Outcome) domain.Outcome {
	if o.Valid() {
		return o
	}
	return domain.OutcomeUnknown
}
