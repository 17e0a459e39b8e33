// Package browser owns the long-lived Chrome process and the authenticated
// browsing context that every extraction navigates with.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"buckler-tracker/internal/config"
	"buckler-tracker/internal/domain"
	logging "buckler-tracker/internal/logger"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

const (
	viewportWidth  = 1920
	viewportHeight = 1080
	probeTimeout   = 3 * time.Second
)

type Options struct {
	AuthStatePath string
	UserAgent     string
	Locale        string
	Timezone      string
	ChromePath    string
	Headless      bool
	NavTimeout    time.Duration
	DebugDir      string
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		AuthStatePath: cfg.AuthStatePath,
		UserAgent:     cfg.UserAgent,
		Locale:        cfg.BrowserLocale,
		Timezone:      cfg.Timezone,
		ChromePath:    cfg.ChromePath,
		Headless:      cfg.Headless,
		NavTimeout:    cfg.NavTimeout,
		DebugDir:      cfg.DebugDir,
	}
}

// Session holds at most one Chrome process and one authenticated browsing
// context. The scrape worker serializes navigation; mu only guards the held
// contexts so Shutdown can run while a job is still in flight.
type Session struct {
	opts   Options
	logger zerolog.Logger

	mu sync.Mutex

	allocCtx    context.Context
	allocCancel context.CancelFunc

	browserCtx    context.Context
	browserCancel context.CancelFunc

	tabCtx    context.Context
	tabCancel context.CancelFunc
}

func NewSession(opts Options, logger zerolog.Logger) *Session {
	return &Session{
		opts:   opts,
		logger: logging.Component(logger, "browser"),
	}
}

// Running reports whether a browser process is currently held.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running()
}

// HasContext reports whether an authenticated browsing context is held.
func (s *Session) HasContext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasContext()
}

func (s *Session) running() bool {
	return s.browserCtx != nil && s.browserCtx.Err() == nil
}

func (s *Session) hasContext() bool {
	return s.tabCtx != nil && s.tabCtx.Err() == nil
}

// heldContext returns the browsing context when one is held.
func (s *Session) heldContext() (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabCtx, s.hasContext()
}

// AuthStateExists reports whether the stored session blob is on disk.
func (s *Session) AuthStateExists() bool {
	_, err := os.Stat(s.opts.AuthStatePath)
	return err == nil
}

// Acquire returns the authenticated browsing context, creating the browser
// and the context as needed. Without a stored session blob it returns
// domain.ErrAuthRequired and starts nothing.
func (s *Session) Acquire(ctx context.Context) (context.Context, error) {
	if !s.AuthStateExists() {
		s.logger.Warn().Str("path", s.opts.AuthStatePath).Msg("auth state file missing")
		return nil, domain.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasContext() && s.running() {
		return s.tabCtx, nil
	}
	s.invalidate()

	if err := s.ensureBrowser(ctx); err != nil {
		return nil, err
	}

	state, err := LoadStorageState(s.opts.AuthStatePath)
	if err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx, chromedp.WithNewBrowserContext())
	if err := chromedp.Run(tabCtx, s.contextSetup(state)...); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to prepare browsing context: %w", err)
	}

	s.tabCtx = tabCtx
	s.tabCancel = tabCancel
	s.logger.Info().Int("cookies", len(state.Cookies)).Msg("authenticated browsing context created")
	return s.tabCtx, nil
}

func (s *Session) contextSetup(state *StorageState) chromedp.Tasks {
	tasks := chromedp.Tasks{
		network.Enable(),
		page.Enable(),
		page.SetLifecycleEventsEnabled(true),
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		network.SetCookies(state.CookieParams()),
	}
	if s.opts.UserAgent != "" {
		tasks = append(tasks, emulation.SetUserAgentOverride(s.opts.UserAgent).WithAcceptLanguage(s.opts.Locale))
	}
	if s.opts.Locale != "" {
		tasks = append(tasks, emulation.SetLocaleOverride().WithLocale(s.opts.Locale))
	}
	if s.opts.Timezone != "" {
		tasks = append(tasks, emulation.SetTimezoneOverride(s.opts.Timezone))
	}
	tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
		script, err := state.LocalStorageScript()
		if err != nil || script == "" {
			return err
		}
		_, err = page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
		return err
	}))
	return tasks
}

// ensureBrowser starts Chrome when no process is held or the held one no
// longer answers.
func (s *Session) ensureBrowser(ctx context.Context) error {
	if s.running() {
		probeCtx, cancel := context.WithTimeout(s.browserCtx, probeTimeout)
		_, _, _, _, _, err := cdpbrowser.GetVersion().Do(cdpContext(probeCtx))
		cancel()
		if err == nil {
			return nil
		}
		s.logger.Warn().Err(err).Msg("browser process not responding, restarting")
		s.closeBrowser()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)
	if s.opts.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.opts.ChromePath))
	}
	if s.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.opts.UserAgent))
	}

	s.logger.Info().Bool("headless", s.opts.Headless).Msg("starting browser")

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			s.logger.Debug().Msgf(format, args...)
		}),
		chromedp.WithErrorf(func(format string, args ...interface{}) {
			s.logger.Warn().Msgf(format, args...)
		}),
	)

	// the first Run on a fresh context launches the process
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("failed to start browser: %w", err)
	}
	if err := ctx.Err(); err != nil {
		browserCancel()
		allocCancel()
		return err
	}

	s.allocCtx, s.allocCancel = allocCtx, allocCancel
	s.browserCtx, s.browserCancel = browserCtx, browserCancel
	s.logger.Info().Msg("browser started")
	return nil
}

// Invalidate drops the browsing context but keeps the process, so the next
// Acquire rebuilds a context from the stored session blob.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidate()
}

func (s *Session) invalidate() {
	if s.tabCancel != nil {
		s.tabCancel()
		s.logger.Info().Msg("browsing context invalidated")
	}
	s.tabCtx, s.tabCancel = nil, nil
}

// Shutdown releases the context, then the browser, then the allocator. Each
// step tolerates the previous resource already being gone.
func (s *Session) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidate()
	s.closeBrowser()
	s.logger.Info().Msg("browser resources released")
}

func (s *Session) closeBrowser() {
	if s.browserCtx != nil && s.browserCtx.Err() == nil {
		// a hung process would otherwise block the graceful close forever
		closeCtx, cancel := context.WithTimeout(s.browserCtx, probeTimeout)
		if err := chromedp.Cancel(closeCtx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Debug().Err(err).Msg("browser close returned error")
		}
		cancel()
	}
	if s.browserCancel != nil {
		s.browserCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	s.browserCtx, s.browserCancel = nil, nil
	s.allocCtx, s.allocCancel = nil, nil
}

// cdpContext routes a raw CDP command to the browser rather than a target.
func cdpContext(ctx context.Context) context.Context {
	c := chromedp.FromContext(ctx)
	if c == nil || c.Browser == nil {
		return ctx
	}
	return cdp.WithExecutor(ctx, c.Browser)
}
