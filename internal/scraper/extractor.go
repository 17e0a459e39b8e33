// Package scraper turns rendered profile and battle-log pages into domain
// records. Page access goes through a PageOpener so parsing can be exercised
// against canned markup.
package scraper

import (
	"context"
	"fmt"
	"strings"

	"buckler-tracker/internal/browser"
	"buckler-tracker/internal/config"
	"buckler-tracker/internal/constants"
	"buckler-tracker/internal/domain"
	logging "buckler-tracker/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// PageOpener is the part of browser.Session the extractors need.
type PageOpener interface {
	Open(ctx context.Context, url string) (*browser.Page, error)
	Invalidate()
	Capture(ctx context.Context, label string) error
}

// Source is what a scrape job can ask for. *Extractor implements it.
type Source interface {
	ExtractProfile(ctx context.Context, knownID string) (*domain.ProfileData, error)
	ExtractMatchHistory(ctx context.Context, canonicalID, subjectName string, limit int) ([]domain.MatchData, error)
}

type Extractor struct {
	opener       PageOpener
	baseURL      string
	localePath   string
	defaultLimit int
	logger       zerolog.Logger
}

func NewExtractor(opener PageOpener, cfg *config.Config, logger zerolog.Logger) *Extractor {
	limit := cfg.MatchLimit
	if limit <= 0 {
		limit = constants.DefaultMatchLimit
	}
	return &Extractor{
		opener:       opener,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		localePath:   strings.Trim(cfg.LocalePath, "/"),
		defaultLimit: limit,
		logger:       logging.Component(logger, "scraper"),
	}
}

func (e *Extractor) profileURL(id string) string {
	return fmt.Sprintf("%s/%s/profile/%s", e.baseURL, e.localePath, id)
}

func (e *Extractor) battleLogURL(id string) string {
	return e.profileURL(id) + "/battlelog/rank"
}

// load opens url, rejects the system-error route and parses the markup.
func (e *Extractor) load(ctx context.Context, url string) (*goquery.Document, error) {
	page, err := e.opener.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	if strings.Contains(page.URL, constants.SystemErrorPath) {
		e.logger.Warn().Str("url", page.URL).Msg("system error page detected, invalidating session")
		e.opener.Invalidate()
		return nil, domain.ErrAuthExpired
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return doc, nil
}

func (e *Extractor) capture(ctx context.Context, label string) {
	if err := e.opener.Capture(ctx, label); err != nil {
		e.logger.Warn().Err(err).Str("label", label).Msg("debug capture failed")
	}
}
