// Package browser launches a stealth-patched Chromium page that a
// playback.BrowserSink can type an action plan into.
//
// Grounded on the teacher's internal/browser.Instance: same go-rod +
// go-rod/stealth launch sequence, randomized viewport, and webdriver-hiding
// script injection. The human-mouse-movement, scroll, and text-scraping
// methods the teacher built for LinkedIn navigation have no home in a typing
// simulator and are dropped; session/cookie persistence is kept since a
// real editing session (e.g. a logged-in web app) benefits from it the same
// way the teacher's login flow did.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	rodstealth "github.com/go-rod/stealth"
	"go.uber.org/zap"
)

// ViewportRange bounds the randomized browser window size Initialize picks,
// the same knobs the teacher exposed as StealthConfig.ViewportWidth/HeightMin/Max.
type ViewportRange struct {
	WidthMin, WidthMax   int
	HeightMin, HeightMax int
}

// DefaultViewportRange matches the teacher's stealth defaults.
func DefaultViewportRange() ViewportRange {
	return ViewportRange{WidthMin: 1280, WidthMax: 1920, HeightMin: 720, HeightMax: 1080}
}

// Session wraps a launched, stealth-patched Rod browser and page.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	logger  *zap.Logger
}

// NewSession creates an unlaunched Session. Call Initialize before use.
func NewSession(logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{logger: logger}
}

// Initialize launches a headed, stealth-patched Chromium instance, opens one
// page at a randomized viewport size within viewport, and hides the
// navigator.webdriver flag the same way the teacher's Instance.Initialize does.
func (s *Session) Initialize(ctx context.Context, viewport ViewportRange) error {
	l := launcher.New().
		Headless(false).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-features", "IsolateOrigins,site-per-process").
		Set("disable-web-security").
		Set("disable-features", "VizDisplayCompositor")

	if browserPath, has := launcher.LookPath(); has {
		l = l.Bin(browserPath)
	}

	browserURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	s.browser = rod.New().Context(ctx).ControlURL(browserURL)
	if err := s.browser.Connect(); err != nil {
		return fmt.Errorf("connecting to browser: %w", err)
	}

	s.page, err = rodstealth.Page(s.browser)
	if err != nil {
		return fmt.Errorf("creating stealth page: %w", err)
	}

	width := randomInRange(viewport.WidthMin, viewport.WidthMax)
	height := randomInRange(viewport.HeightMin, viewport.HeightMax)
	s.page.MustSetViewport(width, height, 0, false)

	s.page.MustEval(`
		Object.defineProperty(navigator, 'webdriver', {
			get: () => undefined
		});
	`)

	s.logger.Info("browser session initialized", zap.Int("width", width), zap.Int("height", height))
	return nil
}

func randomInRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.Intn(max-min+1)
}

// Navigate opens url and waits for the page to finish loading.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.page == nil {
		return fmt.Errorf("browser session not initialized")
	}
	if err := s.page.Context(ctx).Navigate(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	s.page.Context(ctx).MustWaitLoad()
	return nil
}

// WaitForElement blocks until selector appears or timeout elapses.
func (s *Session) WaitForElement(ctx context.Context, selector string, timeout time.Duration) error {
	if s.page == nil {
		return fmt.Errorf("browser session not initialized")
	}
	_, err := s.page.Context(ctx).Timeout(timeout).Element(selector)
	return err
}

// SaveCookies writes the session's current cookies to path as JSON.
func (s *Session) SaveCookies(ctx context.Context, path string) error {
	if s.page == nil {
		return fmt.Errorf("browser session not initialized")
	}

	cookies, err := s.page.Context(ctx).Cookies([]string{})
	if err != nil {
		return fmt.Errorf("getting cookies: %w", err)
	}

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cookies: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating cookie directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing cookies file: %w", err)
	}

	s.logger.Info("cookies saved", zap.String("path", path))
	return nil
}

// LoadCookies restores cookies previously written by SaveCookies. A missing
// file is not an error: the session simply starts unauthenticated.
func (s *Session) LoadCookies(ctx context.Context, path string) error {
	if s.page == nil {
		return fmt.Errorf("browser session not initialized")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("cookies file not found, skipping load", zap.String("path", path))
			return nil
		}
		return fmt.Errorf("reading cookies file: %w", err)
	}

	var cookies []*proto.NetworkCookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("unmarshaling cookies: %w", err)
	}

	if err := s.page.Context(ctx).SetCookies(proto.CookiesToParams(cookies)); err != nil {
		return fmt.Errorf("setting cookies: %w", err)
	}

	s.logger.Info("cookies loaded", zap.String("path", path), zap.Int("count", len(cookies)))
	return nil
}

// Close shuts down the underlying browser process.
func (s *Session) Close() error {
	if s.browser == nil {
		return nil
	}
	if err := s.browser.Close(); err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}
	s.logger.Info("browser session closed")
	return nil
}

// Page returns the underlying Rod page for a playback.BrowserSink to drive.
func (s *Session) Page() *rod.Page {
	return s.page
}
