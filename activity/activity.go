// Package activity implements the side-effecting operations the
// pipelines sequence: text reversal, screenshot capture, content
// extraction, technical-specification capture, AI analysis and frontend
// code generation. Each operation is individually idempotent; operations
// that need a remote browser session create and tear down their own on
// every attempt.
package activity

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mocksi/webforge/analysis"
	"github.com/mocksi/webforge/browser"
	"github.com/mocksi/webforge/page"
	"github.com/mocksi/webforge/pipeline"
)

// DefaultSettleDelay is how long a session waits after navigation for
// dynamic content to render before harvesting the page.
const DefaultSettleDelay = 2 * time.Second

// Activities bundles the operations with their external collaborators.
type Activities struct {
	browser     *browser.Client
	analyzer    *analysis.Analyzer
	extractor   *page.Extractor
	logger      *slog.Logger
	settleDelay time.Duration
	navTimeout  time.Duration
}

// Option configures Activities.
type Option func(*Activities)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Activities) {
		a.logger = logger
	}
}

// WithSettleDelay overrides the post-navigation settle delay, used in
// tests.
func WithSettleDelay(d time.Duration) Option {
	return func(a *Activities) {
		a.settleDelay = d
	}
}

// WithNavigationTimeout overrides the per-navigation timeout.
func WithNavigationTimeout(d time.Duration) Option {
	return func(a *Activities) {
		a.navTimeout = d
	}
}

// New creates the activity set. The browser client may be nil or
// unconfigured; browser-backed operations then fail with a configuration
// error. The analyzer may wrap an unconfigured inference client; analysis
// then runs rule-based only.
func New(browserClient *browser.Client, analyzer *analysis.Analyzer, opts ...Option) *Activities {
	a := &Activities{
		browser:     browserClient,
		analyzer:    analyzer,
		extractor:   page.NewExtractor(),
		logger:      slog.Default(),
		settleDelay: DefaultSettleDelay,
		navTimeout:  browser.DefaultNavigationTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Log records a processing message for a task. Kept as its own operation
// so pipelines can sequence it with a short timeout.
func (a *Activities) Log(ctx context.Context, message, taskID string) (pipeline.Envelope[struct{}], error) {
	start := time.Now()
	a.logger.InfoContext(ctx, message, "task_id", taskID)
	return pipeline.NewEnvelope(struct{}{}, start), nil
}

// NormalizeURL validates a raw URL and prepends https:// when the scheme
// is missing.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", pipeline.Validationf("url must not be empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "", pipeline.Validationf("invalid url %q", raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", pipeline.Validationf("unsupported url scheme %q", parsed.Scheme)
	}
	return parsed.String(), nil
}

// openPage creates a session and navigates it to the normalized URL.
// The caller owns the returned session and must close it.
func (a *Activities) openPage(ctx context.Context, rawURL string) (*browser.Session, string, error) {
	if a.browser == nil || !a.browser.Configured() {
		return nil, "", pipeline.Configurationf("browser provider credentials not configured")
	}

	pageURL, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, "", err
	}

	session, err := a.browser.CreateSession(ctx)
	if err != nil {
		return nil, "", err
	}

	if err := session.Navigate(ctx, pageURL, a.navTimeout); err != nil {
		a.closeSession(session)
		return nil, "", err
	}

	return session, pageURL, nil
}

// closeSession releases a session regardless of the caller's context
// state. Sessions must never leak, even on cancellation paths.
func (a *Activities) closeSession(session *browser.Session) {
	if err := session.Close(context.Background()); err != nil {
		a.logger.Warn("Failed to close browser session",
			"session_id", session.ID, "error", err)
	}
}

// settle waits for dynamic content to render, aborting on cancellation.
func (a *Activities) settle(ctx context.Context) error {
	timer := time.NewTimer(a.settleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return pipeline.Transient(ctx.Err())
	case <-timer.C:
		return nil
	}
}
