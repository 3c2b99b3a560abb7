package analysis

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mocksi/webforge/inference"
	"github.com/mocksi/webforge/model"
	"github.com/mocksi/webforge/page"
)

// Minimum acceptable summary lengths per cascade strategy. Shorter model
// output is treated as low-quality and advances the cascade.
const (
	primaryMinSummaryLen   = 20
	secondaryMinSummaryLen = 15

	// secondaryInputBudget shortens the input for the faster model.
	secondaryInputBudget = 1500
)

// degenerateSummary is returned when there is no usable source text.
const degenerateSummary = "Content analysis completed - unable to generate summary."

// Analyzer runs the AI-analysis cascade over extracted page content.
type Analyzer struct {
	client *inference.Client
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New creates an analyzer. A nil or unconfigured client skips the hosted
// models and goes straight to the rule-based strategies.
func New(client *inference.Client, opts ...Option) *Analyzer {
	a := &Analyzer{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze produces the full analysis result. It never fails: every field
// terminates in a deterministic rule-based strategy.
func (a *Analyzer) Analyze(ctx context.Context, c *page.Content) *Result {
	summary, fallbackUsed := a.summarize(ctx, c)

	return &Result{
		Summary:      summary,
		Topics:       a.topics(ctx, c),
		PagePurpose:  ClassifyPurpose(c),
		KeyInfo:      ExtractKeyInfo(c),
		Metrics:      Metrics(c),
		Readability:  ScoreReadability(c),
		FallbackUsed: fallbackUsed,
	}
}

// summarize runs the summary cascade: primary model, then the faster
// secondary model with a shorter input budget, then the extractive
// rule-based summary. Returns the summary and whether the rule-based
// fallback produced it.
func (a *Analyzer) summarize(ctx context.Context, c *page.Content) (string, bool) {
	text := strings.TrimSpace(c.MainContent)

	if a.client == nil || !a.client.Configured() {
		return ExtractiveSummary(text), true
	}

	summary, err := a.client.Summarize(ctx, model.CapabilitySummarize, text,
		inference.SummarizeParams{MaxLength: 150, MinLength: 30})
	if err == nil && len(summary) > primaryMinSummaryLen {
		return summary, false
	}
	if err != nil {
		a.logger.Warn("Primary summarization failed, trying secondary model", "error", err)
	}

	input := text
	if len(input) > secondaryInputBudget {
		cut := secondaryInputBudget
		for cut > 0 && !utf8.RuneStart(input[cut]) {
			cut--
		}
		input = input[:cut]
	}
	summary, err = a.client.Summarize(ctx, model.CapabilitySummarizeFast, input,
		inference.SummarizeParams{MaxLength: 100, MinLength: 20})
	if err == nil && len(summary) > secondaryMinSummaryLen {
		return summary, false
	}
	if err != nil {
		a.logger.Warn("Secondary summarization failed, using extractive summary", "error", err)
	}

	return ExtractiveSummary(text), true
}

// topics runs zero-shot classification and falls back to keyword scoring.
// The result always has at least one topic.
func (a *Analyzer) topics(ctx context.Context, c *page.Content) []string {
	if a.client != nil && a.client.Configured() {
		input := classificationInput(c)
		if input != "" {
			scores, err := a.client.Classify(ctx, input, TopicLabels)
			if err == nil {
				if topics := topScoringLabels(scores); len(topics) > 0 {
					return topics
				}
			} else {
				a.logger.Warn("Zero-shot classification failed, using keyword topics", "error", err)
			}
		}
	}

	return KeywordTopics(c)
}
