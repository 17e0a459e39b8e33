package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"buckler-tracker/internal/database"
	"buckler-tracker/internal/db"
	"buckler-tracker/internal/domain"

	"github.com/rs/zerolog"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return sqlDB
}

func newRepos(t *testing.T) (*PlayerRepository, *MatchRepository, *SettingsRepository) {
	sqlDB := openTestDB(t)
	q := db.New(sqlDB)
	return NewPlayerRepository(sqlDB, q, zerolog.Nop()),
		NewMatchRepository(sqlDB, q, zerolog.Nop()),
		NewSettingsRepository(q, zerolog.Nop())
}

func samplePlayer() *domain.Player {
	return &domain.Player{
		CanonicalID:   "4285684297",
		DisplayName:   "Tester",
		RatingPoints:  25000,
		RankTier:      "MASTER (1634 MR)",
		RatingScore:   domain.IntPtr(1634),
		MainCharacter: "RYU",
	}
}

func sampleMatches() []domain.Match {
	base := time.Date(2025, 11, 23, 14, 38, 0, 0, time.UTC)
	return []domain.Match{
		{
			OpponentName:        "Rival",
			OpponentCharacter:   "KEN",
			OpponentRatingScore: domain.IntPtr(1700),
			SubjectCharacter:    "RYU",
			SubjectRatingScore:  domain.IntPtr(1634),
			Outcome:             domain.OutcomeWin,
			OccurredAt:          base,
		},
		{
			OpponentName:         "Newbie",
			OpponentCharacter:    "JURI",
			OpponentRatingPoints: domain.IntPtr(9000),
			SubjectCharacter:     "RYU",
			SubjectRatingScore:   domain.IntPtr(1620),
			Outcome:              domain.OutcomeLose,
			OccurredAt:           base.Add(-10 * time.Minute),
		},
	}
}

func TestPlayerUpsertReplacesFields(t *testing.T) {
	players, _, _ := newRepos(t)
	ctx := context.Background()

	p := samplePlayer()
	if err := players.Upsert(ctx, p); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	firstID := p.ID

	updated := &domain.Player{
		CanonicalID:   p.CanonicalID,
		DisplayName:   "Renamed",
		RatingPoints:  100,
		RankTier:      "IRON",
		MainCharacter: "JP",
	}
	if err := players.Upsert(ctx, updated); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if updated.ID != firstID {
		t.Errorf("id changed on upsert: got %d, want %d", updated.ID, firstID)
	}

	got, err := players.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got.ID != firstID || got.CanonicalID != p.CanonicalID {
		t.Errorf("latest: got id %d %q, want %d %q", got.ID, got.CanonicalID, firstID, p.CanonicalID)
	}
	if got.DisplayName != "Renamed" || got.RankTier != "IRON" || got.MainCharacter != "JP" {
		t.Errorf("fields not replaced: %+v", got)
	}
	if got.RatingScore != nil {
		t.Errorf("rating score should be cleared, got %d", *got.RatingScore)
	}
}

func TestPlayerNotFound(t *testing.T) {
	players, _, _ := newRepos(t)
	_, err := players.Latest(context.Background())
	if !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Errorf("latest on empty db: got %v, want ErrPlayerNotFound", err)
	}
}

func TestSaveScrapeDedup(t *testing.T) {
	_, matches, _ := newRepos(t)
	ctx := context.Background()

	first, err := matches.SaveScrape(ctx, samplePlayer(), sampleMatches())
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	if first.Inserted != 2 {
		t.Errorf("first pass inserted: got %d, want 2", first.Inserted)
	}

	again := sampleMatches()
	// a later scrape of the same match carries a different timestamp
	again[0].OccurredAt = again[0].OccurredAt.Add(time.Hour)
	second, err := matches.SaveScrape(ctx, samplePlayer(), again)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.Inserted != 0 {
		t.Errorf("second pass inserted: got %d, want 0", second.Inserted)
	}
	if len(second.Skipped) != 2 {
		t.Errorf("second pass skipped: got %d, want 2", len(second.Skipped))
	}

	stored, err := matches.ListByPlayer(ctx, first.PlayerID, 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored matches: got %d, want 2", len(stored))
	}
	if stored[0].OpponentName != "Rival" {
		t.Errorf("newest first: got %q", stored[0].OpponentName)
	}
	if stored[1].OpponentRatingPoints == nil || *stored[1].OpponentRatingPoints != 9000 {
		t.Errorf("opponent points not round-tripped: %+v", stored[1])
	}
}

func TestSaveScrapeDedupWithinBatch(t *testing.T) {
	_, matches, _ := newRepos(t)
	batch := sampleMatches()
	batch = append(batch, batch[0])

	res, err := matches.SaveScrape(context.Background(), samplePlayer(), batch)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Inserted != 2 {
		t.Errorf("inserted: got %d, want 2", res.Inserted)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != 2 {
		t.Errorf("skipped: got %v, want [2]", res.Skipped)
	}
}

func TestDedupNullRatings(t *testing.T) {
	_, matches, _ := newRepos(t)
	ctx := context.Background()

	m := domain.Match{
		OpponentName:      "Ghost",
		OpponentCharacter: "Unknown",
		SubjectCharacter:  "Unknown",
		Outcome:           domain.OutcomeUnknown,
		OccurredAt:        time.Now(),
	}
	withPoints := m
	withPoints.SubjectRatingPoints = domain.IntPtr(0)

	// within one batch: the NULL-rated repeat collapses, the 0-point entry does not
	res, err := matches.SaveScrape(ctx, samplePlayer(), []domain.Match{m, m, withPoints})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Inserted != 2 || len(res.Skipped) != 1 || res.Skipped[0] != 1 {
		t.Errorf("batch: inserted %d skipped %v, want 2 and [1]", res.Inserted, res.Skipped)
	}

	// against stored rows
	again, err := matches.SaveScrape(ctx, samplePlayer(), []domain.Match{m, withPoints})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if again.Inserted != 0 || len(again.Skipped) != 2 {
		t.Errorf("stored: inserted %d skipped %v, want 0 and 2", again.Inserted, again.Skipped)
	}
}

func TestStatsQueries(t *testing.T) {
	_, matches, _ := newRepos(t)
	ctx := context.Background()

	res, err := matches.SaveScrape(ctx, samplePlayer(), sampleMatches())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	total, err := matches.CountOutcomes(ctx, res.PlayerID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total.Total != 2 || total.Wins != 1 || total.Losses != 1 {
		t.Errorf("total record: %+v", total)
	}

	recent, err := matches.CountRecentOutcomes(ctx, res.PlayerID, 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if recent.Total != 1 || recent.Wins != 1 {
		t.Errorf("recent record: %+v", recent)
	}

	vs, err := matches.RecordVsOpponent(ctx, res.PlayerID, "Newbie")
	if err != nil {
		t.Fatalf("vs opponent: %v", err)
	}
	if vs.Losses != 1 || vs.Total != 1 {
		t.Errorf("vs opponent: %+v", vs)
	}

	history, err := matches.RatingHistory(ctx, res.PlayerID, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].Score != 1620 || history[1].Score != 1634 {
		t.Errorf("history should be oldest first: %+v", history)
	}

	names, err := matches.OpponentNames(ctx, res.PlayerID)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 2 || names[0] != "Newbie" {
		t.Errorf("names: %v", names)
	}
}

func TestDeleteAll(t *testing.T) {
	players, matches, _ := newRepos(t)
	ctx := context.Background()

	if _, err := matches.SaveScrape(ctx, samplePlayer(), sampleMatches()); err != nil {
		t.Fatalf("save: %v", err)
	}
	m, p, err := players.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if m != 2 || p != 1 {
		t.Errorf("deleted: got %d matches %d players, want 2 and 1", m, p)
	}
	if _, err := players.Latest(ctx); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Errorf("players left after delete: %v", err)
	}
}

func TestSettings(t *testing.T) {
	_, _, settings := newRepos(t)
	ctx := context.Background()

	if _, ok, err := settings.Get(ctx, "subject_id"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if err := settings.Set(ctx, "subject_id", "123456789"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := settings.Set(ctx, "subject_id", "987654321"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := settings.Get(ctx, "subject_id")
	if err != nil || !ok || v != "987654321" {
		t.Errorf("get: v=%q ok=%v err=%v", v, ok, err)
	}
}
