// Package analysis converts extracted page content into a summary, topic
// set, purpose classification, key info and readability score, degrading
// gracefully when the inference provider is unavailable or low-quality.
// The cascade never fails: it always terminates in a deterministic
// rule-based result.
package analysis

import "github.com/mocksi/webforge/page"

// PagePurpose is the closed set of purpose classifications.
const (
	PurposeEcommerce     = "e-commerce"
	PurposeBlog          = "blog"
	PurposeNews          = "news"
	PurposePortfolio     = "portfolio"
	PurposeDocumentation = "documentation"
	PurposeCorporate     = "corporate"
	PurposeInformational = "informational"
)

// Readability buckets form a closed set.
const (
	ReadabilityEasy     = "easy"
	ReadabilityModerate = "moderate"
	ReadabilityComplex  = "complex"
)

// KeyInfo is the rule-based key-information block.
type KeyInfo struct {
	// KeyPoints are the top headings, capped at 10.
	KeyPoints []string `json:"key_points"`

	// ImportantLinks are links whose text matches an action keyword,
	// capped at 5.
	ImportantLinks []page.Link `json:"important_links"`

	// Emails and Phones are regex-extracted contacts, capped at 3 each.
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
}

// ContentMetrics are simple counts over the extracted content.
type ContentMetrics struct {
	WordCount      int `json:"word_count"`
	HeadingCount   int `json:"heading_count"`
	ParagraphCount int `json:"paragraph_count"`
	LinkCount      int `json:"link_count"`
	ImageCount     int `json:"image_count"`
}

// Result is the complete AI-analysis output.
type Result struct {
	Summary     string         `json:"summary"`
	Topics      []string       `json:"topics"`
	PagePurpose string         `json:"page_purpose"`
	KeyInfo     KeyInfo        `json:"key_info"`
	Metrics     ContentMetrics `json:"content_metrics"`
	Readability string         `json:"readability"`

	// FallbackUsed indicates the rule-based fallback produced the summary.
	FallbackUsed bool `json:"fallback_used"`
}
