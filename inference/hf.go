package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mocksi/webforge/model"
	"github.com/mocksi/webforge/pipeline"
)

// summarizeRequest is the hosted inference API request for summarization.
type summarizeRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		MaxLength int  `json:"max_length"`
		MinLength int  `json:"min_length"`
		DoSample  bool `json:"do_sample"`
	} `json:"parameters"`
}

// classifyRequest is the request for zero-shot classification.
type classifyRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		CandidateLabels []string `json:"candidate_labels"`
		MultiLabel      bool     `json:"multi_label"`
	} `json:"parameters"`
}

// classifyResponse is the zero-shot classification response: labels and
// scores are parallel slices sorted by descending score.
type classifyResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

func (c *Client) doSummarize(ctx context.Context, ep *model.EndpointConfig, text string, params SummarizeParams) (string, error) {
	req := summarizeRequest{Inputs: text}
	req.Parameters.MaxLength = params.MaxLength
	req.Parameters.MinLength = params.MinLength
	req.Parameters.DoSample = false

	body, err := c.post(ctx, ep, req)
	if err != nil {
		return "", err
	}

	// The API returns a one-element array with either summary_text or
	// generated_text depending on the model head.
	var results []struct {
		SummaryText   string `json:"summary_text"`
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return "", pipeline.Transient(fmt.Errorf("parse summarize response: %w", err))
	}
	if len(results) == 0 {
		return "", pipeline.Transient(fmt.Errorf("empty summarize response"))
	}

	summary := results[0].SummaryText
	if summary == "" {
		summary = results[0].GeneratedText
	}
	return strings.TrimSpace(summary), nil
}

func (c *Client) doClassify(ctx context.Context, ep *model.EndpointConfig, text string, labels []string) ([]LabelScore, error) {
	req := classifyRequest{Inputs: text}
	req.Parameters.CandidateLabels = labels
	req.Parameters.MultiLabel = true

	body, err := c.post(ctx, ep, req)
	if err != nil {
		return nil, err
	}

	var resp classifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, pipeline.Transient(fmt.Errorf("parse classify response: %w", err))
	}
	if len(resp.Labels) != len(resp.Scores) {
		return nil, pipeline.Transient(fmt.Errorf("mismatched labels and scores"))
	}

	scores := make([]LabelScore, len(resp.Labels))
	for i, label := range resp.Labels {
		scores[i] = LabelScore{Label: label, Score: resp.Scores[i]}
	}
	return scores, nil
}

// post executes one inference request. A 503 model cold-start and a 429
// rate limit each trigger a single bounded inline wait before the request
// is re-sent once; any further failure is surfaced to the retry policy.
func (c *Client) post(ctx context.Context, ep *model.EndpointConfig, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, pipeline.Permanent(fmt.Errorf("build request body: %w", err))
	}

	url := c.modelURL(ep)

	body, status, err := c.send(ctx, url, data)
	if err != nil {
		return nil, err
	}

	// One inline wait each for cold start and rate limiting.
	if status == http.StatusServiceUnavailable {
		c.logger.Debug("Model cold start, waiting before single inline retry",
			"model", ep.Model, "wait", c.coldStartWait)
		if err := sleepCtx(ctx, c.coldStartWait); err != nil {
			return nil, pipeline.Transient(err)
		}
		body, status, err = c.send(ctx, url, data)
		if err != nil {
			return nil, err
		}
	}
	if status == http.StatusTooManyRequests {
		c.logger.Debug("Rate limited, waiting before single inline retry",
			"model", ep.Model, "wait", c.rateLimitWait)
		if err := sleepCtx(ctx, c.rateLimitWait); err != nil {
			return nil, pipeline.Transient(err)
		}
		body, status, err = c.send(ctx, url, data)
		if err != nil {
			return nil, err
		}
	}

	if status != http.StatusOK {
		return nil, classifyHTTPError(status, body)
	}
	return body, nil
}

// send executes a single HTTP POST and returns the raw body and status.
func (c *Client) send(ctx context.Context, url string, data []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, 0, pipeline.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, pipeline.Transient(fmt.Errorf("inference request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, pipeline.Transient(fmt.Errorf("read response body: %w", err))
	}
	return body, resp.StatusCode, nil
}

func (c *Client) modelURL(ep *model.EndpointConfig) string {
	base := ep.URL
	if base == "" {
		base = c.baseURL
	}
	return strings.TrimSuffix(base, "/") + "/models/" + ep.Model
}

// classifyHTTPError maps an HTTP status to an error kind. Auth failures
// are permanent: retrying 401/403 can never succeed.
func classifyHTTPError(status int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	err := fmt.Errorf("inference API error (status %d): %s", status, bodyStr)

	switch {
	case status == http.StatusTooManyRequests,
		status == http.StatusServiceUnavailable,
		status == http.StatusBadGateway,
		status == http.StatusGatewayTimeout:
		return pipeline.Transient(err)
	case status >= 500:
		return pipeline.Transient(err)
	case status == http.StatusUnauthorized,
		status == http.StatusForbidden:
		return pipeline.Permanent(err)
	case status == http.StatusBadRequest:
		return pipeline.Permanent(err)
	default:
		return pipeline.Permanent(err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
