package workflow_test

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

	"github.com/mocksi/webforge/activity"
	"github.com/mocksi/webforge/analysis"
	"github.com/mocksi/webforge/browser"
	"github.com/mocksi/webforge/storage"
	"github.com/mocksi/webforge/workflow"
)

func newPipelines() *workflow.Pipelines {
	acts := activity.New(nil, analysis.New(nil))
	return workflow.New(acts, nil)
}

func TestParseKind(t *testing.T) {
	for _, kind := range []string{"reverse", "screenshot", "analyze", "tech-spec", "generate-website"} {
		parsed, err := workflow.ParseKind(kind)
		require.NoError(t, err)
		assert.Equal(t, workflow.Kind(kind), parsed)
	}

	_, err := workflow.ParseKind("transcode")
	assert.Error(t, err)
}

func TestReversePipeline(t *testing.T) {
	p := newPipelines()

	outcome := p.Run(context.Background(), workflow.KindReverse, "task-1", "Hello Mocksi Interview!")

	require.Equal(t, storage.TaskStatusCompleted, outcome.Status)
	assert.Empty(t, outcome.Error)

	var result workflow.ReverseOutput
	require.NoError(t, json.Unmarshal(outcome.Result, &result))
	assert.Equal(t, "!weivretnI iskcoM olleH", result.Reversed)
	assert.Equal(t, 23, result.OriginalLength)
	assert.Greater(t, result.ProcessingTimeSeconds, 0.0)
}

func TestReversePipeline_ValidationFailsWithoutRetry(t *testing.T) {
	p := newPipelines()
	start := time.Now()

	outcome := p.Run(context.Background(), workflow.KindReverse, "task-1", "   ")

	require.Equal(t, storage.TaskStatusFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "must not be empty")
	assert.Equal(t, "   ", outcome.Input, "failed outcomes echo the original input")
	assert.Less(t, time.Since(start), time.Second,
		"validation errors abort on the first attempt, no backoff")
}

func TestScreenshotPipeline_UnconfiguredProvider(t *testing.T) {
	p := newPipelines()

	outcome := p.Run(context.Background(), workflow.KindScreenshot, "task-1", "acme.example")

	require.Equal(t, storage.TaskStatusFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "not configured")
	assert.Equal(t, "acme.example", outcome.Input)
}

func TestRun_UnknownKind(t *testing.T) {
	p := newPipelines()

	outcome := p.Run(context.Background(), workflow.Kind("transcode"), "task-1", "x")

	require.Equal(t, storage.TaskStatusFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "unknown pipeline kind")
}

const providerPage = `<!DOCTYPE html>
<html lang="en">
<head><title>Acme Widgets</title><style>main { display: grid; }</style></head>
<body>
<main>
<h1>Acme Widgets</h1>
<p>The finest industrial widgets, shipped worldwide with support included.</p>
</main>
</body>
</html>`

// browserPipelines wires pipelines to a fake provider and reports
// session create/close counts.
func browserPipelines(t *testing.T) (*workflow.Pipelines, *atomic.Int32, *atomic.Int32) {
	t.Helper()
	var creates, closes atomic.Int32

	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("POST /v1/sessions", func(w http.ResponseWriter, r *http.Request) {
		creates.Add(1)
		json.NewEncoder(w).Encode(map[string]string{
			"id":         "sess-1",
			"connectUrl": server.URL + "/sessions/sess-1",
		})
	})
	mux.HandleFunc("POST /sessions/sess-1/page/navigate", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /sessions/sess-1/page/title", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"title": "Acme Widgets"})
	})
	mux.HandleFunc("GET /sessions/sess-1/page/content", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"content": providerPage})
	})
	mux.HandleFunc("POST /sessions/sess-1/page/screenshot", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("PNGDATA"))
	})
	mux.HandleFunc("DELETE /sessions/sess-1/page", func(w http.ResponseWriter, r *http.Request) {
		closes.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := browser.NewClient(browser.Config{
		APIKey:    "key",
		ProjectID: "proj",
		BaseURL:   server.URL,
	}, browser.WithRateLimitWait(time.Millisecond))

	acts := activity.New(client, analysis.New(nil),
		activity.WithSettleDelay(time.Millisecond))
	return workflow.New(acts, nil), &creates, &closes
}

func TestAnalyzePipeline(t *testing.T) {
	p, _, closes := browserPipelines(t)

	outcome := p.Run(context.Background(), workflow.KindAnalyze, "task-1", "acme.example")

	require.Equal(t, storage.TaskStatusCompleted, outcome.Status)

	var result workflow.AnalyzeOutput
	require.NoError(t, json.Unmarshal(outcome.Result, &result))
	assert.Equal(t, "https://acme.example", result.URL)
	assert.Equal(t, "Acme Widgets", result.Content.Title)
	assert.NotEmpty(t, result.Analysis.Summary)
	assert.NotEmpty(t, result.Analysis.Topics)
	assert.Equal(t, int32(1), closes.Load())
}

func TestTechSpecPipeline(t *testing.T) {
	p, _, _ := browserPipelines(t)

	outcome := p.Run(context.Background(), workflow.KindTechSpec, "task-1", "acme.example")

	require.Equal(t, storage.TaskStatusCompleted, outcome.Status)

	var result workflow.TechSpecOutput
	require.NoError(t, json.Unmarshal(outcome.Result, &result))
	assert.Equal(t, "grid", result.Spec.Layout.Model)
	assert.Equal(t, "Low", result.Complexity)
}

func TestWebsitePipeline_AggregatesAllSteps(t *testing.T) {
	p, creates, closes := browserPipelines(t)

	outcome := p.Run(context.Background(), workflow.KindWebsite, "task-1", "acme.example")

	require.Equal(t, storage.TaskStatusCompleted, outcome.Status)

	var result workflow.WebsiteOutput
	require.NoError(t, json.Unmarshal(outcome.Result, &result))
	assert.Equal(t, "https://acme.example", result.URL)
	assert.NotEmpty(t, result.Screenshot.ScreenshotB64)
	assert.Equal(t, "Acme Widgets", result.Content.Title)
	assert.NotNil(t, result.Spec)
	assert.Contains(t, result.Frontend.HTML, "<title>Acme Widgets</title>")
	assert.GreaterOrEqual(t, result.TotalProcessingTimeSeconds,
		result.Screenshot.ProcessingTimeSeconds)

	assert.Equal(t, int32(3), creates.Load(), "each browser step opens its own session")
	assert.Equal(t, creates.Load(), closes.Load(), "every session is closed")
}
