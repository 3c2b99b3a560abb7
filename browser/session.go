package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mocksi/webforge/pipeline"
)

// DefaultNavigationTimeout bounds page navigation.
const DefaultNavigationTimeout = 30 * time.Second

// Session is one remote browser session. Sessions are created per step
// attempt and must be closed on every exit path.
type Session struct {
	ID         string
	ConnectURL string

	client *Client
}

// Navigate loads the URL and waits for network idle, bounded by timeout.
// A zero timeout uses DefaultNavigationTimeout.
func (s *Session) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultNavigationTimeout
	}

	_, err := s.client.do(ctx, http.MethodPost, s.ConnectURL+"/page/navigate", map[string]any{
		"url":       url,
		"waitUntil": "networkidle",
		"timeoutMs": timeout.Milliseconds(),
	})
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// Title returns the loaded page's title.
func (s *Session) Title(ctx context.Context) (string, error) {
	body, err := s.client.do(ctx, http.MethodGet, s.ConnectURL+"/page/title", nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", pipeline.Transient(fmt.Errorf("parse title response: %w", err))
	}
	return resp.Title, nil
}

// Content returns the rendered page HTML after script execution.
func (s *Session) Content(ctx context.Context) (string, error) {
	body, err := s.client.do(ctx, http.MethodGet, s.ConnectURL+"/page/content", nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", pipeline.Transient(fmt.Errorf("parse content response: %w", err))
	}
	return resp.Content, nil
}

// Screenshot captures a full-page screenshot and returns the raw image
// bytes.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	body, err := s.client.do(ctx, http.MethodPost, s.ConnectURL+"/page/screenshot", map[string]any{
		"fullPage": true,
	})
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, pipeline.Transient(fmt.Errorf("provider returned empty screenshot"))
	}
	return body, nil
}

// Close releases the remote session. Safe to call from a deferred cleanup
// with an already-canceled request context: a short detached deadline is
// used so the remote browser is not leaked.
func (s *Session) Close(ctx context.Context) error {
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
	}

	_, err := s.client.do(ctx, http.MethodDelete, s.ConnectURL+"/page", nil)
	if err != nil {
		s.client.logger.Warn("Failed to close browser session", "session_id", s.ID, "error", err)
		return err
	}

	s.client.logger.Debug("Browser session closed", "session_id", s.ID)
	return nil
}

// ReplayURL returns the replay link for this session.
func (s *Session) ReplayURL() string {
	return s.client.ReplayURL(s.ID)
}
