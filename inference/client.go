// Package inference provides a client for the hosted NLP inference API
// used for summarization and zero-shot classification, with retry,
// model fallback chains and circuit-breaker-aware endpoint selection.
package inference

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/mocksi/webforge/model"
	"github.com/mocksi/webforge/pipeline"
)

// maxResponseSize limits the inference response body to prevent memory
// exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// DefaultBaseURL is the hosted inference API root.
const DefaultBaseURL = "https://api-inference.huggingface.co"

// Client is an inference API client with retry and fallback support.
type Client struct {
	registry   *model.Registry
	httpClient *http.Client
	baseURL    string
	token      string
	retry      pipeline.RetryPolicy
	logger     *slog.Logger

	// coldStartWait and rateLimitWait are the bounded inline waits applied
	// at most once per call before the retry policy takes over.
	coldStartWait time.Duration
	rateLimitWait time.Duration
}

// SummarizeParams bound the generated summary length.
type SummarizeParams struct {
	MaxLength int `json:"max_length"`
	MinLength int `json:"min_length"`
}

// LabelScore pairs a classification label with its confidence.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithBaseURL overrides the inference API root, used in tests.
func WithBaseURL(url string) ClientOption {
	return func(client *Client) {
		client.baseURL = url
	}
}

// WithRetryPolicy sets the per-endpoint retry policy.
func WithRetryPolicy(p pipeline.RetryPolicy) ClientOption {
	return func(client *Client) {
		client.retry = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithInlineWaits overrides the bounded cold-start and rate-limit waits.
func WithInlineWaits(coldStart, rateLimit time.Duration) ClientOption {
	return func(client *Client) {
		client.coldStartWait = coldStart
		client.rateLimitWait = rateLimit
	}
}

// NewClient creates an inference client. An empty token leaves the client
// unconfigured; callers must check Configured before use.
func NewClient(registry *model.Registry, token string, opts ...ClientOption) *Client {
	c := &Client{
		registry: registry,
		token:    token,
		baseURL:  DefaultBaseURL,
		retry: pipeline.DefaultRetryPolicy().
			WithAttempts(2).
			WithIntervals(2*time.Second, 10*time.Second),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger:        slog.Default(),
		coldStartWait: 20 * time.Second,
		rateLimitWait: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Configured reports whether an API token is present.
func (c *Client) Configured() bool {
	return c.token != ""
}

// Summarize generates a summary for text using the capability's model
// chain. It fails over to the next model on transient errors and stops
// immediately on permanent ones.
func (c *Client) Summarize(ctx context.Context, cap model.Capability, text string, params SummarizeParams) (string, error) {
	if !c.Configured() {
		return "", pipeline.Configurationf("inference API token not configured")
	}
	if text == "" {
		return "", pipeline.Validationf("text to summarize is empty")
	}

	var lastErr error
	for _, name := range c.registry.GetAvailableFallbackChain(cap) {
		ep := c.registry.GetEndpoint(name)
		if ep == nil {
			continue
		}

		input := text
		if ep.MaxInputChars > 0 && len(input) > ep.MaxInputChars {
			cut := ep.MaxInputChars
			for cut > 0 && !utf8.RuneStart(input[cut]) {
				cut--
			}
			input = input[:cut]
		}

		summary, err := c.trySummarize(ctx, name, ep, input, params)
		if err == nil {
			return summary, nil
		}
		lastErr = err

		if kind := pipeline.KindOf(err); kind == pipeline.KindPermanent || kind == pipeline.KindConfiguration {
			c.logger.Warn("Inference endpoint failed permanently, not trying fallbacks",
				"model", name, "error", err)
			return "", err
		}

		c.logger.Warn("Inference endpoint failed, trying fallback",
			"model", name, "error", err)
	}

	if lastErr == nil {
		return "", pipeline.Configurationf("no models configured for capability %s", cap)
	}
	return "", fmt.Errorf("all models failed for capability %s: %w", cap, lastErr)
}

// Classify runs zero-shot classification of text against candidate labels.
func (c *Client) Classify(ctx context.Context, text string, labels []string) ([]LabelScore, error) {
	if !c.Configured() {
		return nil, pipeline.Configurationf("inference API token not configured")
	}
	if text == "" {
		return nil, pipeline.Validationf("text to classify is empty")
	}
	if len(labels) == 0 {
		return nil, pipeline.Validationf("at least one candidate label is required")
	}

	var lastErr error
	for _, name := range c.registry.GetAvailableFallbackChain(model.CapabilityClassify) {
		ep := c.registry.GetEndpoint(name)
		if ep == nil {
			continue
		}

		scores, err := c.tryClassify(ctx, name, ep, text, labels)
		if err == nil {
			return scores, nil
		}
		lastErr = err

		if kind := pipeline.KindOf(err); kind == pipeline.KindPermanent || kind == pipeline.KindConfiguration {
			return nil, err
		}

		c.logger.Warn("Classification endpoint failed, trying fallback",
			"model", name, "error", err)
	}

	if lastErr == nil {
		return nil, pipeline.Configurationf("no models configured for classification")
	}
	return nil, fmt.Errorf("all classification models failed: %w", lastErr)
}

// trySummarize attempts one endpoint with the retry policy applied.
func (c *Client) trySummarize(ctx context.Context, name string, ep *model.EndpointConfig, text string, params SummarizeParams) (string, error) {
	env, err := pipeline.RunStep(ctx, c.logger, "inference."+name, c.retry, 0,
		func(ctx context.Context) (pipeline.Envelope[string], error) {
			start := time.Now()
			summary, err := c.doSummarize(ctx, ep, text, params)
			if err != nil {
				return pipeline.Envelope[string]{}, err
			}
			return pipeline.NewEnvelope(summary, start), nil
		})
	if err != nil {
		c.registry.MarkEndpointFailure(name)
		return "", err
	}

	c.registry.MarkEndpointSuccess(name)
	return env.Payload, nil
}

func (c *Client) tryClassify(ctx context.Context, name string, ep *model.EndpointConfig, text string, labels []string) ([]LabelScore, error) {
	env, err := pipeline.RunStep(ctx, c.logger, "inference."+name, c.retry, 0,
		func(ctx context.Context) (pipeline.Envelope[[]LabelScore], error) {
			start := time.Now()
			scores, err := c.doClassify(ctx, ep, text, labels)
			if err != nil {
				return pipeline.Envelope[[]LabelScore]{}, err
			}
			return pipeline.NewEnvelope(scores, start), nil
		})
	if err != nil {
		c.registry.MarkEndpointFailure(name)
		return nil, err
	}

	c.registry.MarkEndpointSuccess(name)
	return env.Payload, nil
}
