package analysis

import (
	"sort"
	"strings"
)

// salienceKeywords boost sentences that announce important content.
var salienceKeywords = []string{"main", "key", "primary", "important", "essential"}

// maxScoredSentences bounds the extractive scan to the document opening.
const maxScoredSentences = 10

// ExtractiveSummary synthesizes a summary from the source text without any
// external call. It scores the first sentences by position, salience
// keywords and a length sweet spot, then returns the top two by score.
// It always returns a non-empty string.
func ExtractiveSummary(text string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return degenerateSummary
	}
	if len(sentences) == 1 {
		return ensurePeriod(sentences[0])
	}

	if len(sentences) > maxScoredSentences {
		sentences = sentences[:maxScoredSentences]
	}

	type scored struct {
		text  string
		score float64
	}

	ranked := make([]scored, 0, len(sentences))
	for i, s := range sentences {
		score := 0.0

		// Positional bonus, largest for the opening sentence.
		score += float64(maxScoredSentences-i) / float64(maxScoredSentences)

		lower := strings.ToLower(s)
		for _, kw := range salienceKeywords {
			if strings.Contains(lower, kw) {
				score += 0.5
			}
		}

		// Length sweet spot: 10-25 word sentences summarize well.
		words := len(strings.Fields(s))
		if words >= 10 && words <= 25 {
			score += 0.4
		}

		ranked = append(ranked, scored{text: s, score: score})
	}

	// Output order is by score descending, not source order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	parts := []string{ensurePeriod(ranked[0].text)}
	if len(ranked) > 1 {
		parts = append(parts, ensurePeriod(ranked[1].text))
	}
	return strings.Join(parts, " ")
}

// splitSentences splits on periods and drops empty fragments.
func splitSentences(text string) []string {
	raw := strings.Split(text, ".")
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func ensurePeriod(s string) string {
	if strings.HasSuffix(s, ".") {
		return s
	}
	return s + "."
}
