package browser_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mocksi/webforge/browser"
	"github.com/mocksi/webforge/pipeline"
)

// newProvider stands up a fake provider that serves session creation and
// page control endpoints.
func newProvider(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var navigations atomic.Int32

	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("POST /v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-BB-API-Key"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "proj", req["projectId"])

		json.NewEncoder(w).Encode(map[string]string{
			"id":         "sess-1",
			"connectUrl": server.URL + "/sessions/sess-1",
		})
	})
	mux.HandleFunc("POST /sessions/sess-1/page/navigate", func(w http.ResponseWriter, r *http.Request) {
		navigations.Add(1)
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /sessions/sess-1/page/title", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"title": "Example Domain"})
	})
	mux.HandleFunc("GET /sessions/sess-1/page/content", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"content": "<html><body><h1>hi</h1></body></html>"})
	})
	mux.HandleFunc("POST /sessions/sess-1/page/screenshot", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("PNGDATA"))
	})
	mux.HandleFunc("DELETE /sessions/sess-1/page", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &navigations
}

func testClient(url string) *browser.Client {
	return browser.NewClient(browser.Config{
		APIKey:    "key",
		ProjectID: "proj",
		BaseURL:   url,
	}, browser.WithRateLimitWait(time.Millisecond))
}

func TestSessionLifecycle(t *testing.T) {
	server, navigations := newProvider(t)
	ctx := context.Background()

	client := testClient(server.URL)
	require.True(t, client.Configured())

	session, err := client.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", session.ID)

	require.NoError(t, session.Navigate(ctx, "https://example.com", 0))
	assert.Equal(t, int32(1), navigations.Load())

	title, err := session.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Example Domain", title)

	content, err := session.Content(ctx)
	require.NoError(t, err)
	assert.Contains(t, content, "<h1>hi</h1>")

	shot, err := session.Screenshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("PNGDATA"), shot)

	require.NoError(t, session.Close(ctx))
}

func TestCreateSession_Unconfigured(t *testing.T) {
	client := browser.NewClient(browser.Config{})

	_, err := client.CreateSession(context.Background())
	require.Error(t, err)
	assert.Equal(t, pipeline.KindConfiguration, pipeline.KindOf(err))
	assert.False(t, client.Configured())
}

func TestCreateSession_RateLimitInlineRetryOnce(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id":         "sess-2",
			"connectUrl": "http://example.invalid/sessions/sess-2",
		})
	}))
	defer server.Close()

	client := testClient(server.URL)

	session, err := client.CreateSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sess-2", session.ID)
	assert.Equal(t, int32(2), calls.Load(), "exactly one inline rate-limit retry")
}

func TestCreateSession_RepeatedRateLimitIsTransient(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.CreateSession(context.Background())
	require.Error(t, err)
	assert.Equal(t, pipeline.KindTransient, pipeline.KindOf(err),
		"a second 429 defers to the pipeline retry policy instead of waiting again")
	assert.Equal(t, int32(2), calls.Load())
}

func TestCreateSession_AuthFailureIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := testClient(server.URL)

	_, err := client.CreateSession(context.Background())
	require.Error(t, err)
	assert.Equal(t, pipeline.KindPermanent, pipeline.KindOf(err))
}

func TestReplayURL(t *testing.T) {
	client := browser.NewClient(browser.Config{APIKey: "k", ProjectID: "p"})
	assert.Equal(t, "https://browserbase.com/sessions/sess-9", client.ReplayURL("sess-9"))
}
