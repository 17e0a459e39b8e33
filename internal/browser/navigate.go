package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"buckler-tracker/internal/constants"
	"buckler-tracker/internal/domain"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Page is a rendered document after the network went idle.
type Page struct {
	URL  string
	HTML string
}

// Open navigates the authenticated context to url, waits for the network to
// go idle and returns the final URL with the rendered markup.
func (s *Session) Open(ctx context.Context, url string) (*Page, error) {
	tab, err := s.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	timeout := s.opts.NavTimeout
	if timeout <= 0 {
		timeout = constants.NavigationTimeout
	}
	navCtx, cancel := context.WithTimeout(tab, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := time.Now()
	var result Page
	err = chromedp.Run(navCtx,
		navigateAndWaitIdle(url),
		chromedp.Location(&result.URL),
		chromedp.OuterHTML("html", &result.HTML, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn().Str("url", url).Dur("timeout", timeout).Msg("navigation timed out")
			return nil, fmt.Errorf("%w: %s", domain.ErrNavigationTimeout, url)
		}
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}

	s.logger.Debug().
		Str("url", url).
		Str("final_url", result.URL).
		Int("html_bytes", len(result.HTML)).
		Dur("duration", time.Since(start)).
		Msg("page loaded")
	return &result, nil
}

// navigateAndWaitIdle navigates the main frame and blocks until Chrome
// reports networkIdle for the new document.
func navigateAndWaitIdle(url string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		mainFrame := tree.Frame.ID

		idle := make(chan struct{})
		var loaderID cdp.LoaderID
		closed := false

		lctx, cancel := context.WithCancel(ctx)
		defer cancel()
		chromedp.ListenTarget(lctx, func(ev interface{}) {
			e, ok := ev.(*page.EventLifecycleEvent)
			if !ok || e.FrameID != mainFrame || closed {
				return
			}
			switch e.Name {
			case "init":
				loaderID = e.LoaderID
			case "networkIdle":
				if loaderID != "" && e.LoaderID == loaderID {
					closed = true
					close(idle)
				}
			}
		})

		if _, _, errText, err := page.Navigate(url).Do(ctx); err != nil {
			return err
		} else if errText != "" {
			return fmt.Errorf("navigation failed: %s", errText)
		}

		select {
		case <-idle:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

var unsafeLabel = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Capture writes a screenshot and the current markup to the debug
// directory. It is a no-op when no context is held or no directory is set.
func (s *Session) Capture(ctx context.Context, label string) error {
	if s.opts.DebugDir == "" {
		return nil
	}
	tab, ok := s.heldContext()
	if !ok {
		return nil
	}
	if err := os.MkdirAll(s.opts.DebugDir, 0o755); err != nil {
		return fmt.Errorf("failed to create debug dir: %w", err)
	}

	capCtx, cancel := context.WithTimeout(tab, 10*time.Second)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var shot []byte
	var html string
	if err := chromedp.Run(capCtx,
		chromedp.FullScreenshot(&shot, 90),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to capture page: %w", err)
	}

	base := filepath.Join(s.opts.DebugDir,
		fmt.Sprintf("%s-%s", unsafeLabel.ReplaceAllString(label, "_"), time.Now().Format("20060102-150405")))
	if err := os.WriteFile(base+".png", shot, constants.DebugArtifactPermission); err != nil {
		return err
	}
	if err := os.WriteFile(base+".html", []byte(html), constants.DebugArtifactPermission); err != nil {
		return err
	}
	s.logger.Info().Str("path", base).Msg("debug capture written")
	return nil
}
