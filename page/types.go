// Package page extracts structured content from rendered page HTML:
// headings, paragraphs, links, images, main text and a markdown rendition.
package page

// Caps bound the extracted payload so downstream steps stay small.
const (
	// MaxMainContent caps the concatenated main text.
	MaxMainContent = 15000

	// MaxParagraphs caps collected paragraphs.
	MaxParagraphs = 10

	// MaxLinks caps collected links.
	MaxLinks = 20

	// MaxImages caps collected images.
	MaxImages = 10

	// minParagraphLen filters trivial paragraphs.
	minParagraphLen = 20
)

// Heading is one h1-h6 element in document order.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// Link is one anchor with non-trivial text.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Image is one image carrying alt text.
type Image struct {
	Alt string `json:"alt"`
	Src string `json:"src"`
}

// StructuralFlags record which landmark elements the page uses.
type StructuralFlags struct {
	HasNav     bool `json:"has_nav"`
	HasMain    bool `json:"has_main"`
	HasHeader  bool `json:"has_header"`
	HasFooter  bool `json:"has_footer"`
	HasArticle bool `json:"has_article"`
	HasAside   bool `json:"has_aside"`
}

// Content is the structured output of the content-extraction step.
type Content struct {
	URL         string          `json:"url"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Keywords    string          `json:"keywords"`
	Headings    []Heading       `json:"headings"`
	Paragraphs  []string        `json:"paragraphs"`
	MainContent string          `json:"main_content"`
	Markdown    string          `json:"markdown,omitempty"`
	Links       []Link          `json:"links"`
	Images      []Image         `json:"images"`
	Structure   StructuralFlags `json:"structure"`

	// WordCount is computed from the same cleaned text that produced
	// MainContent, not from the raw DOM.
	WordCount int `json:"word_count"`

	HeadingCount   int `json:"heading_count"`
	ParagraphCount int `json:"paragraph_count"`
	LinkCount      int `json:"link_count"`
	ImageCount     int `json:"image_count"`
}
