package inference_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mocksi/webforge/inference"
	"github.com/mocksi/webforge/model"
	"github.com/mocksi/webforge/pipeline"
)

// testRegistry wires a single summarization model and a single classifier
// against the given base URL.
func testRegistry() *model.Registry {
	return model.NewRegistry(
		map[model.Capability]*model.CapabilityConfig{
			model.CapabilitySummarize: {
				Preferred: []string{"primary"},
				Fallback:  []string{"secondary"},
			},
			model.CapabilityClassify: {
				Preferred: []string{"classifier"},
			},
		},
		map[string]*model.EndpointConfig{
			"primary":    {Model: "facebook/bart-large-cnn", Task: "summarization"},
			"secondary":  {Model: "sshleifer/distilbart-cnn-12-6", Task: "summarization", MaxInputChars: 100},
			"classifier": {Model: "facebook/bart-large-mnli", Task: "zero-shot-classification"},
		},
	)
}

func fastClient(registry *model.Registry, url string) *inference.Client {
	return inference.NewClient(registry, "hf_test_token",
		inference.WithBaseURL(url),
		inference.WithRetryPolicy(pipeline.RetryPolicy{
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			Multiplier:      2.0,
			MaxAttempts:     2,
			NonRetryable:    []pipeline.Kind{pipeline.KindValidation, pipeline.KindConfiguration, pipeline.KindPermanent},
		}),
		inference.WithInlineWaits(time.Millisecond, time.Millisecond),
	)
}

func TestSummarize_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer hf_test_token", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Path, "facebook/bart-large-cnn")

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "some long text to summarize", req["inputs"])

		json.NewEncoder(w).Encode([]map[string]string{{"summary_text": "a short summary"}})
	}))
	defer server.Close()

	client := fastClient(testRegistry(), server.URL)

	summary, err := client.Summarize(context.Background(), model.CapabilitySummarize,
		"some long text to summarize", inference.SummarizeParams{MaxLength: 150, MinLength: 30})

	require.NoError(t, err)
	assert.Equal(t, "a short summary", summary)
}

func TestSummarize_FallsBackToSecondaryModel(t *testing.T) {
	var primaryCalls, secondaryCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models/facebook/bart-large-cnn" {
			primaryCalls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		secondaryCalls.Add(1)
		json.NewEncoder(w).Encode([]map[string]string{{"summary_text": "fallback summary"}})
	}))
	defer server.Close()

	client := fastClient(testRegistry(), server.URL)

	summary, err := client.Summarize(context.Background(), model.CapabilitySummarize,
		"text", inference.SummarizeParams{MaxLength: 100, MinLength: 20})

	require.NoError(t, err)
	assert.Equal(t, "fallback summary", summary)
	assert.Equal(t, int32(2), primaryCalls.Load(), "primary exhausts its retry budget first")
	assert.Equal(t, int32(1), secondaryCalls.Load())
}

func TestSummarize_AuthFailureIsNotRetried(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := fastClient(testRegistry(), server.URL)

	_, err := client.Summarize(context.Background(), model.CapabilitySummarize,
		"text", inference.SummarizeParams{})

	require.Error(t, err)
	assert.Equal(t, pipeline.KindPermanent, pipeline.KindOf(err))
	assert.Equal(t, int32(1), calls.Load(), "401 must not be retried or failed over")
}

func TestSummarize_ColdStartInlineRetryOnce(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]any{"error": "model is loading", "estimated_time": 20})
			return
		}
		json.NewEncoder(w).Encode([]map[string]string{{"summary_text": "warmed up"}})
	}))
	defer server.Close()

	client := fastClient(testRegistry(), server.URL)

	summary, err := client.Summarize(context.Background(), model.CapabilitySummarize,
		"text", inference.SummarizeParams{})

	require.NoError(t, err)
	assert.Equal(t, "warmed up", summary)
	assert.Equal(t, int32(2), calls.Load(), "exactly one inline cold-start retry")
}

func TestSummarize_Unconfigured(t *testing.T) {
	client := inference.NewClient(testRegistry(), "")

	_, err := client.Summarize(context.Background(), model.CapabilitySummarize,
		"text", inference.SummarizeParams{})

	require.Error(t, err)
	assert.Equal(t, pipeline.KindConfiguration, pipeline.KindOf(err))
	assert.False(t, client.Configured())
}

func TestSummarize_InputTruncatedPerEndpointBudget(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req["inputs"], 100, "secondary model caps input at 100 chars")
		json.NewEncoder(w).Encode([]map[string]string{{"summary_text": "ok"}})
	}))
	defer server.Close()

	registry := testRegistry()
	registry.SetCapability(model.CapabilitySummarizeFast, &model.CapabilityConfig{Preferred: []string{"secondary"}})
	client := fastClient(registry, server.URL)

	_, err := client.Summarize(context.Background(), model.CapabilitySummarizeFast, string(long), inference.SummarizeParams{})
	require.NoError(t, err)
}

func TestSummarize_TruncationKeepsRuneBoundary(t *testing.T) {
	// 100 is not a multiple of the 3-byte CJK rune width, so a byte-exact
	// cut at the endpoint cap would split a character.
	long := strings.Repeat("世", 200)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		input, ok := req["inputs"].(string)
		require.True(t, ok)
		assert.True(t, utf8.ValidString(input))
		assert.NotContains(t, input, string(utf8.RuneError))
		assert.LessOrEqual(t, len(input), 100)

		json.NewEncoder(w).Encode([]map[string]string{{"summary_text": "ok"}})
	}))
	defer server.Close()

	registry := testRegistry()
	registry.SetCapability(model.CapabilitySummarizeFast, &model.CapabilityConfig{Preferred: []string{"secondary"}})
	client := fastClient(registry, server.URL)

	_, err := client.Summarize(context.Background(), model.CapabilitySummarizeFast, long, inference.SummarizeParams{})
	require.NoError(t, err)
}

func TestClassify_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "bart-large-mnli")

		var req struct {
			Inputs     string `json:"inputs"`
			Parameters struct {
				CandidateLabels []string `json:"candidate_labels"`
			} `json:"parameters"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"technology", "business"}, req.Parameters.CandidateLabels)

		json.NewEncoder(w).Encode(map[string]any{
			"labels": []string{"technology", "business"},
			"scores": []float64{0.91, 0.07},
		})
	}))
	defer server.Close()

	client := fastClient(testRegistry(), server.URL)

	scores, err := client.Classify(context.Background(), "some article", []string{"technology", "business"})

	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "technology", scores[0].Label)
	assert.InDelta(t, 0.91, scores[0].Score, 0.001)
}

func TestClassify_ValidationErrors(t *testing.T) {
	client := fastClient(testRegistry(), "http://unused")

	_, err := client.Classify(context.Background(), "", []string{"a"})
	assert.Equal(t, pipeline.KindValidation, pipeline.KindOf(err))

	_, err = client.Classify(context.Background(), "text", nil)
	assert.Equal(t, pipeline.KindValidation, pipeline.KindOf(err))
}
