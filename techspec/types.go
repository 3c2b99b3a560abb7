// Package techspec captures a technical specification from a rendered
// page: a depth-limited structural tree of the DOM, CSS/JS/form/color
// inventories, a layout classification, and a deterministic complexity
// rating with templated requirement documents derived from the capture.
package techspec

// MaxTreeDepth hard-caps the structural tree walk so pathological DOM
// depth always terminates.
const MaxTreeDepth = 10

// Capture limits.
const (
	maxColorSamples  = 20
	maxNodeText      = 100
	maxInventoryURLs = 30
)

// PageMeta is the page-level metadata block.
type PageMeta struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Lang        string `json:"lang,omitempty"`
	Charset     string `json:"charset,omitempty"`
}

// CSSInventory counts the page's styling surfaces.
type CSSInventory struct {
	StylesheetCount  int      `json:"stylesheet_count"`
	StyleBlockCount  int      `json:"style_block_count"`
	InlineStyleCount int      `json:"inline_style_count"`
	CustomProperties []string `json:"custom_properties"`
}

// JSInventory counts the page's scripting surfaces.
type JSInventory struct {
	ExternalScripts   []string `json:"external_scripts"`
	InlineScriptCount int      `json:"inline_script_count"`
	Frameworks        []string `json:"frameworks"`
}

// Layout models form a closed set.
const (
	LayoutGrid        = "grid"
	LayoutFlex        = "flex"
	LayoutTraditional = "traditional"
)

// LayoutInfo records the detected layout model and the flags it was
// derived from.
type LayoutInfo struct {
	UsesGrid bool   `json:"uses_grid"`
	UsesFlex bool   `json:"uses_flex"`
	Model    string `json:"model"`
}

// FormField describes one input-like element inside a form.
type FormField struct {
	Tag         string `json:"tag"`
	Type        string `json:"type,omitempty"`
	Name        string `json:"name,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required"`
}

// Form describes one form element and its fields.
type Form struct {
	Method string      `json:"method"`
	Action string      `json:"action"`
	Fields []FormField `json:"fields"`
}

// ColorPalette holds the sampled background and text colors.
type ColorPalette struct {
	Backgrounds []string `json:"backgrounds"`
	Texts       []string `json:"texts"`
}

// DOMNode is one node of the depth-limited structural tree.
type DOMNode struct {
	Tag         string            `json:"tag"`
	Attrs       map[string]string `json:"attrs,omitempty"`
	Style       map[string]string `json:"style,omitempty"`
	Text        string            `json:"text,omitempty"`
	Interactive bool              `json:"interactive"`
	Children    []*DOMNode        `json:"children,omitempty"`
}

// Spec is the complete captured technical specification.
type Spec struct {
	Meta         PageMeta     `json:"meta"`
	CSS          CSSInventory `json:"css"`
	JS           JSInventory  `json:"js"`
	Layout       LayoutInfo   `json:"layout"`
	Forms        []Form       `json:"forms"`
	Colors       ColorPalette `json:"colors"`
	Structure    *DOMNode     `json:"structure"`
	ElementCount int          `json:"element_count"`

	Complexity   Complexity   `json:"complexity"`
	Requirements Requirements `json:"requirements"`
}

// Requirements are the templated requirement documents derived from the
// capture. Pure text generation, deterministic for identical input.
type Requirements struct {
	HTML  []string `json:"html"`
	CSS   []string `json:"css"`
	JS    []string `json:"js"`
	Steps []string `json:"implementation_steps"`
}
