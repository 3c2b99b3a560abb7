package activity

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mocksi/webforge/pipeline"
)

// MaxReverseInput caps the input at 1 MiB of UTF-8 bytes.
const MaxReverseInput = 1 << 20

// reverseFloor pads the operation to a minimum duration so the demo
// pipelines show non-trivial step timing.
const reverseFloor = 100 * time.Millisecond

// ReverseResult is the reversal payload. The original_text/reversed_text
// keys are the client-visible contract for polled reverse records.
// Lengths count codepoints, not bytes.
type ReverseResult struct {
	Original       string `json:"original_text"`
	Reversed       string `json:"reversed_text"`
	OriginalLength int    `json:"original_length"`
	ReversedLength int    `json:"reversed_length"`
}

// Reverse returns text with its Unicode codepoints in reverse order.
// Reversal operates on codepoints so multi-byte characters survive
// intact, and the codepoint count is always preserved.
func (a *Activities) Reverse(ctx context.Context, text string) (pipeline.Envelope[ReverseResult], error) {
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		return pipeline.Envelope[ReverseResult]{}, pipeline.Validationf("input text must not be empty")
	}
	if len(text) > MaxReverseInput {
		return pipeline.Envelope[ReverseResult]{}, pipeline.Validationf(
			"input text exceeds %d bytes (got %d)", MaxReverseInput, len(text))
	}

	runes := []rune(text)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	reversed := string(runes)

	if elapsed := time.Since(start); elapsed < reverseFloor {
		timer := time.NewTimer(reverseFloor - elapsed)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return pipeline.Envelope[ReverseResult]{}, pipeline.Transient(ctx.Err())
		case <-timer.C:
		}
	}

	return pipeline.NewEnvelope(ReverseResult{
		Original:       text,
		Reversed:       reversed,
		OriginalLength: utf8.RuneCountInString(text),
		ReversedLength: utf8.RuneCountInString(reversed),
	}, start), nil
}
