// Package browser provides a client for the hosted browser-automation
// provider: remote headless sessions created per step attempt, page
// control over the session's connect URL, and session replay links.
package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mocksi/webforge/pipeline"
)

// maxBodySize caps provider response bodies (screenshots dominate).
const maxBodySize = 32 * 1024 * 1024 // 32MB

// DefaultBaseURL is the provider's session-management API root.
const DefaultBaseURL = "https://api.browserbase.com"

// DefaultReplayBaseURL is where session replays can be viewed.
const DefaultReplayBaseURL = "https://browserbase.com/sessions"

// Config holds provider credentials and endpoints.
type Config struct {
	// APIKey authenticates session-management calls. Empty means the
	// provider is not configured.
	APIKey string

	// ProjectID scopes created sessions.
	ProjectID string

	// BaseURL overrides the API root, used in tests.
	BaseURL string

	// ReplayBaseURL overrides the replay link root.
	ReplayBaseURL string
}

// Client creates and controls remote browser sessions.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	// rateLimitWait is the single bounded inline wait applied when the
	// provider returns 429, before deferring to the pipeline retry policy.
	rateLimitWait time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithRateLimitWait overrides the inline 429 wait.
func WithRateLimitWait(d time.Duration) Option {
	return func(client *Client) {
		client.rateLimitWait = d
	}
}

// NewClient creates a browser provider client.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ReplayBaseURL == "" {
		cfg.ReplayBaseURL = DefaultReplayBaseURL
	}

	c := &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		logger:        slog.Default(),
		rateLimitWait: 60 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Configured reports whether provider credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != "" && c.cfg.ProjectID != ""
}

// createSessionResponse is the provider's session-creation result.
type createSessionResponse struct {
	ID         string `json:"id"`
	ConnectURL string `json:"connectUrl"`
}

// CreateSession creates a fresh remote browser session. Each step attempt
// gets its own session; sessions are never shared across steps.
func (c *Client) CreateSession(ctx context.Context) (*Session, error) {
	if !c.Configured() {
		return nil, pipeline.Configurationf("browser provider credentials not configured")
	}

	body, err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/sessions",
		map[string]string{"projectId": c.cfg.ProjectID})
	if err != nil {
		return nil, err
	}

	var resp createSessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, pipeline.Transient(fmt.Errorf("parse session response: %w", err))
	}
	if resp.ID == "" || resp.ConnectURL == "" {
		return nil, pipeline.Transient(fmt.Errorf("provider returned incomplete session"))
	}

	c.logger.Debug("Browser session created", "session_id", resp.ID)

	return &Session{
		ID:         resp.ID,
		ConnectURL: strings.TrimSuffix(resp.ConnectURL, "/"),
		client:     c,
	}, nil
}

// ReplayURL returns the replay link for a session.
func (c *Client) ReplayURL(sessionID string) string {
	return strings.TrimSuffix(c.cfg.ReplayBaseURL, "/") + "/" + sessionID
}

// do executes one provider request with a single inline 429 wait.
func (c *Client) do(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, pipeline.Permanent(fmt.Errorf("build request body: %w", err))
		}
		reqBody = bytes.NewReader(data)
	}

	body, status, err := c.send(ctx, method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if status == http.StatusTooManyRequests {
		c.logger.Debug("Provider rate limited, waiting before single inline retry",
			"wait", c.rateLimitWait)
		select {
		case <-ctx.Done():
			return nil, pipeline.Transient(ctx.Err())
		case <-time.After(c.rateLimitWait):
		}

		if payload != nil {
			data, _ := json.Marshal(payload)
			reqBody = bytes.NewReader(data)
		}
		body, status, err = c.send(ctx, method, url, reqBody)
		if err != nil {
			return nil, err
		}
	}

	if status < 200 || status >= 300 {
		return nil, classifyStatus(status, body)
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, method, url string, body io.Reader) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, 0, pipeline.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-BB-API-Key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, pipeline.Transient(fmt.Errorf("provider request failed: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, 0, pipeline.Transient(fmt.Errorf("read response body: %w", err))
	}
	return data, resp.StatusCode, nil
}

// classifyStatus maps a provider HTTP status to an error kind.
func classifyStatus(status int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	err := fmt.Errorf("browser provider error (status %d): %s", status, bodyStr)

	switch {
	case status == http.StatusTooManyRequests, status >= 500:
		return pipeline.Transient(err)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return pipeline.Permanent(err)
	default:
		return pipeline.Permanent(err)
	}
}
