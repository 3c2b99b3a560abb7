package analysis_test

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

	"github.com/mocksi/webforge/analysis"
	"github.com/mocksi/webforge/inference"
	"github.com/mocksi/webforge/model"
	"github.com/mocksi/webforge/page"
	"github.com/mocksi/webforge/pipeline"
)

func sampleContent() *page.Content {
	return &page.Content{
		URL:         "https://acme.example",
		Title:       "Acme Widgets Store",
		Description: "Buy the best widgets.",
		MainContent: "Acme builds the main line of industrial widgets for factories. " +
			"Our key products ship worldwide with support included. " +
			"Contact sales@acme.example or call +1 555-123-4567 for pricing today.",
		Headings: []page.Heading{
			{Level: 1, Text: "Welcome to the Acme Store", Index: 0},
			{Level: 2, Text: "Pricing", Index: 1},
		},
		Links: []page.Link{
			{Text: "Contact us", Href: "/contact"},
			{Text: "Random article", Href: "/blog/1"},
			{Text: "See pricing", Href: "/pricing"},
		},
		WordCount:      320,
		HeadingCount:   2,
		ParagraphCount: 3,
		LinkCount:      3,
		ImageCount:     1,
	}
}

func fastInference(t *testing.T, url string) *inference.Client {
	t.Helper()
	return inference.NewClient(model.NewDefaultRegistry(), "token",
		inference.WithBaseURL(url),
		inference.WithRetryPolicy(pipeline.RetryPolicy{
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
			Multiplier:      1,
			MaxAttempts:     1,
			NonRetryable:    []pipeline.Kind{pipeline.KindValidation, pipeline.KindConfiguration, pipeline.KindPermanent},
		}),
		inference.WithInlineWaits(time.Millisecond, time.Millisecond),
	)
}

func TestAnalyze_UnconfiguredClientUsesFallback(t *testing.T) {
	a := analysis.New(nil)

	result := a.Analyze(context.Background(), sampleContent())

	require.NotNil(t, result)
	assert.True(t, result.FallbackUsed)
	assert.NotEmpty(t, result.Summary)
	assert.NotEmpty(t, result.Topics)
	assert.Equal(t, analysis.PurposeEcommerce, result.PagePurpose)
}

func TestAnalyze_EmptyContentNeverFails(t *testing.T) {
	a := analysis.New(nil)

	result := a.Analyze(context.Background(), &page.Content{})

	require.NotNil(t, result)
	assert.Equal(t, "Content analysis completed - unable to generate summary.", result.Summary)
	assert.Equal(t, []string{"general"}, result.Topics)
	assert.Equal(t, analysis.PurposeInformational, result.PagePurpose)
	assert.NotEmpty(t, result.Readability)
}

func TestAnalyze_ModelSummaryAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models/facebook/bart-large-mnli" {
			json.NewEncoder(w).Encode(map[string]any{
				"labels": []string{"business", "technology", "travel"},
				"scores": []float64{0.8, 0.4, 0.05},
			})
			return
		}
		json.NewEncoder(w).Encode([]map[string]string{
			{"summary_text": "Acme builds industrial widgets with worldwide shipping."},
		})
	}))
	defer server.Close()

	a := analysis.New(fastInference(t, server.URL))

	result := a.Analyze(context.Background(), sampleContent())

	assert.False(t, result.FallbackUsed)
	assert.Equal(t, "Acme builds industrial widgets with worldwide shipping.", result.Summary)
	assert.Equal(t, []string{"business", "technology"}, result.Topics,
		"labels under the 0.1 threshold are dropped")
}

func TestAnalyze_ShortModelOutputAdvancesCascade(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models/facebook/bart-large-mnli" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		// Too short for both the primary (>20) and secondary (>15) gates.
		json.NewEncoder(w).Encode([]map[string]string{{"summary_text": "tiny"}})
	}))
	defer server.Close()

	a := analysis.New(fastInference(t, server.URL))

	result := a.Analyze(context.Background(), sampleContent())

	assert.True(t, result.FallbackUsed, "trivial model output is not an error, it advances the cascade")
	assert.NotEmpty(t, result.Summary)
	assert.NotEqual(t, "tiny", result.Summary)
	assert.NotEmpty(t, result.Topics, "keyword topics back up classification failure")
}

func TestAnalyze_SecondaryInputTruncationKeepsRuneBoundary(t *testing.T) {
	// One ASCII byte then 3-byte runes: the 1500-byte cut for the
	// secondary model lands mid-rune unless backed off.
	c := sampleContent()
	c.MainContent = "a" + strings.Repeat("世", 600)

	// The whole primary capability chain fails so only the secondary
	// model, fed the shortened input, ever answers.
	var fastModelCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/sshleifer/distilbart-cnn-12-6" || fastModelCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		input, ok := req["inputs"].(string)
		require.True(t, ok)
		assert.NotContains(t, input, string(utf8.RuneError),
			"shortened model input must not split a multi-byte character")
		assert.LessOrEqual(t, len(input), 1500)

		json.NewEncoder(w).Encode([]map[string]string{
			{"summary_text": "A page written entirely in CJK characters."},
		})
	}))
	defer server.Close()

	a := analysis.New(fastInference(t, server.URL))

	result := a.Analyze(context.Background(), c)

	assert.False(t, result.FallbackUsed)
	assert.Equal(t, "A page written entirely in CJK characters.", result.Summary)
}

func TestExtractiveSummary(t *testing.T) {
	text := "Acme is the main supplier of widgets in the region and a trusted partner. " +
		"Founded long ago. " +
		"The key advantage of our product line is its unmatched durability over decades of use. " +
		"We also sell gadgets."

	summary := analysis.ExtractiveSummary(text)

	assert.Contains(t, summary, "main supplier")
	assert.Contains(t, summary, "key advantage")
	assert.NotContains(t, summary, "gadgets")
}

func TestExtractiveSummary_Degenerate(t *testing.T) {
	assert.Equal(t, "Content analysis completed - unable to generate summary.",
		analysis.ExtractiveSummary(""))
	assert.Equal(t, "Content analysis completed - unable to generate summary.",
		analysis.ExtractiveSummary("   "))
}

func TestKeywordTopics(t *testing.T) {
	c := &page.Content{
		Title:       "Cloud software and data platforms",
		MainContent: "Our software runs in the cloud. The app processes data with a public api.",
	}
	topics := analysis.KeywordTopics(c)
	require.NotEmpty(t, topics)
	assert.Equal(t, "technology", topics[0])

	assert.Equal(t, []string{"general"}, analysis.KeywordTopics(&page.Content{}))
}

func TestScoreReadability(t *testing.T) {
	tests := []struct {
		name       string
		words      int
		paragraphs int
		want       string
	}{
		{"short and sparse", 200, 8, analysis.ReadabilityEasy},
		{"long", 2000, 10, analysis.ReadabilityComplex},
		{"dense", 800, 5, analysis.ReadabilityComplex},
		{"middling", 800, 12, analysis.ReadabilityModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &page.Content{WordCount: tt.words, ParagraphCount: tt.paragraphs}
			assert.Equal(t, tt.want, analysis.ScoreReadability(c))
		})
	}
}

func TestExtractKeyInfo(t *testing.T) {
	info := analysis.ExtractKeyInfo(sampleContent())

	assert.Equal(t, []string{"Welcome to the Acme Store", "Pricing"}, info.KeyPoints)

	require.Len(t, info.ImportantLinks, 2)
	assert.Equal(t, "/contact", info.ImportantLinks[0].Href)
	assert.Equal(t, "/pricing", info.ImportantLinks[1].Href)

	assert.Equal(t, []string{"sales@acme.example"}, info.Emails)
	require.Len(t, info.Phones, 1)
	assert.Contains(t, info.Phones[0], "555-123-4567")
}
