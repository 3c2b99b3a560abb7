package techspec

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// customPropRe matches CSS custom property declarations.
var customPropRe = regexp.MustCompile(`--[a-zA-Z0-9_-]+\s*:`)

// Attributes and style properties carried into the structural tree. The
// full attribute and declaration sets are unbounded on real pages.
var (
	curatedAttrs = []string{"id", "class", "href", "src", "alt", "type", "name", "role"}

	curatedStyleProps = map[string]bool{
		"display":          true,
		"position":         true,
		"color":            true,
		"background":       true,
		"background-color": true,
		"font-size":        true,
		"font-family":      true,
		"width":            true,
		"height":           true,
		"margin":           true,
		"padding":          true,
	}

	interactiveTags = map[string]bool{
		"a":        true,
		"button":   true,
		"input":    true,
		"select":   true,
		"textarea": true,
		"form":     true,
		"label":    true,
	}
)

// Capture parses rendered page HTML into a technical specification,
// including the derived complexity rating and requirement documents.
func Capture(pageHTML, pageURL string) (*Spec, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing page HTML: %w", err)
	}

	spec := &Spec{
		Meta:         captureMeta(doc, pageURL),
		CSS:          captureCSS(doc),
		JS:           captureJS(doc),
		Forms:        captureForms(doc),
		Colors:       captureColors(doc),
		ElementCount: doc.Find("*").Length(),
	}
	spec.Layout = classifyLayout(doc)
	spec.Structure = captureStructure(doc)

	spec.Complexity = ScoreComplexity(spec.ElementCount, len(spec.JS.ExternalScripts), len(spec.Forms))
	spec.Requirements = BuildRequirements(spec)

	return spec, nil
}

func captureMeta(doc *goquery.Document, pageURL string) PageMeta {
	meta := PageMeta{
		URL:   pageURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		meta.Description = strings.TrimSpace(desc)
	}
	if lang, ok := doc.Find("html").Attr("lang"); ok {
		meta.Lang = lang
	}
	if charset, ok := doc.Find("meta[charset]").Attr("charset"); ok {
		meta.Charset = charset
	}
	return meta
}

func captureCSS(doc *goquery.Document) CSSInventory {
	inv := CSSInventory{
		StylesheetCount:  doc.Find(`link[rel="stylesheet"]`).Length(),
		StyleBlockCount:  doc.Find("style").Length(),
		InlineStyleCount: doc.Find("[style]").Length(),
		CustomProperties: []string{},
	}

	seen := map[string]bool{}
	collect := func(text string) {
		for _, m := range customPropRe.FindAllString(text, -1) {
			name := strings.TrimSpace(strings.TrimSuffix(m, ":"))
			if !seen[name] {
				seen[name] = true
				inv.CustomProperties = append(inv.CustomProperties, name)
			}
		}
	}

	doc.Find("style").Each(func(_ int, sel *goquery.Selection) {
		collect(sel.Text())
	})
	for _, root := range []string{"html", "body"} {
		if style, ok := doc.Find(root).Attr("style"); ok {
			collect(style)
		}
	}
	sort.Strings(inv.CustomProperties)

	return inv
}

func captureJS(doc *goquery.Document) JSInventory {
	inv := JSInventory{
		ExternalScripts: []string{},
		Frameworks:      []string{},
	}

	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok && src != "" {
			if len(inv.ExternalScripts) < maxInventoryURLs {
				inv.ExternalScripts = append(inv.ExternalScripts, src)
			}
			return
		}
		inv.InlineScriptCount++
	})
	inv.Frameworks = detectFrameworks(doc, inv.ExternalScripts)

	return inv
}

// detectFrameworks looks for framework fingerprints in script URLs and
// well-known DOM markers left by client-side frameworks.
func detectFrameworks(doc *goquery.Document, scripts []string) []string {
	found := map[string]bool{}

	for _, src := range scripts {
		lower := strings.ToLower(src)
		switch {
		case strings.Contains(lower, "react"):
			found["react"] = true
		case strings.Contains(lower, "vue"):
			found["vue"] = true
		case strings.Contains(lower, "angular"):
			found["angular"] = true
		case strings.Contains(lower, "jquery"):
			found["jquery"] = true
		case strings.Contains(lower, "svelte"):
			found["svelte"] = true
		}
	}

	if doc.Find("[data-reactroot]").Length() > 0 {
		found["react"] = true
	}
	if doc.Find("[data-v-app], #__nuxt").Length() > 0 {
		found["vue"] = true
	}
	if doc.Find("[ng-version]").Length() > 0 {
		found["angular"] = true
	}
	if doc.Find("script#__NEXT_DATA__").Length() > 0 {
		found["next.js"] = true
	}

	frameworks := make([]string, 0, len(found))
	for name := range found {
		frameworks = append(frameworks, name)
	}
	sort.Strings(frameworks)
	return frameworks
}

// classifyLayout infers the layout model from inline styles and style
// blocks. Grid wins over flex when both appear.
func classifyLayout(doc *goquery.Document) LayoutInfo {
	var css strings.Builder
	doc.Find("style").Each(func(_ int, sel *goquery.Selection) {
		css.WriteString(sel.Text())
	})
	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		css.WriteString(style)
		css.WriteString(";")
	})

	text := strings.ToLower(css.String())
	info := LayoutInfo{
		UsesGrid: strings.Contains(text, "display:grid") || strings.Contains(text, "display: grid"),
		UsesFlex: strings.Contains(text, "display:flex") || strings.Contains(text, "display: flex"),
	}

	switch {
	case info.UsesGrid:
		info.Model = LayoutGrid
	case info.UsesFlex:
		info.Model = LayoutFlex
	default:
		info.Model = LayoutTraditional
	}
	return info
}

func captureForms(doc *goquery.Document) []Form {
	forms := []Form{}

	doc.Find("form").Each(func(_ int, sel *goquery.Selection) {
		form := Form{
			Method: strings.ToUpper(sel.AttrOr("method", "get")),
			Action: sel.AttrOr("action", ""),
			Fields: []FormField{},
		}

		sel.Find("input, select, textarea, button").Each(func(_ int, field *goquery.Selection) {
			_, required := field.Attr("required")
			form.Fields = append(form.Fields, FormField{
				Tag:         goquery.NodeName(field),
				Type:        field.AttrOr("type", ""),
				Name:        field.AttrOr("name", ""),
				Placeholder: field.AttrOr("placeholder", ""),
				Required:    required,
			})
		})

		forms = append(forms, form)
	})

	return forms
}

// captureColors samples background and text colors from inline styles on
// the body plus the first 20 heading, paragraph, link and button
// elements.
func captureColors(doc *goquery.Document) ColorPalette {
	palette := ColorPalette{
		Backgrounds: []string{},
		Texts:       []string{},
	}
	seenBG := map[string]bool{}
	seenText := map[string]bool{}

	sample := func(sel *goquery.Selection) {
		style, ok := sel.Attr("style")
		if !ok {
			return
		}
		decls := parseStyleDecls(style)
		if bg := firstNonEmpty(decls["background-color"], decls["background"]); bg != "" && !seenBG[bg] {
			seenBG[bg] = true
			palette.Backgrounds = append(palette.Backgrounds, bg)
		}
		if c := decls["color"]; c != "" && !seenText[c] {
			seenText[c] = true
			palette.Texts = append(palette.Texts, c)
		}
	}

	sample(doc.Find("body").First())

	sampled := 0
	doc.Find("h1, h2, h3, h4, h5, h6, p, a, button").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		sample(sel)
		sampled++
		return sampled < maxColorSamples
	})

	return palette
}

// captureStructure walks the DOM from the body (or the document root when
// there is no body) into the depth-limited structural tree.
func captureStructure(doc *goquery.Document) *DOMNode {
	root := doc.Find("body").First()
	if root.Length() == 0 {
		root = doc.Selection.Children().First()
	}
	if root.Length() == 0 {
		return nil
	}
	return buildTree(root.Get(0), 1)
}

func buildTree(n *html.Node, depth int) *DOMNode {
	if n == nil || n.Type != html.ElementNode || depth > MaxTreeDepth {
		return nil
	}
	tag := strings.ToLower(n.Data)
	if tag == "script" || tag == "style" || tag == "noscript" {
		return nil
	}

	node := &DOMNode{
		Tag:         tag,
		Interactive: isInteractive(n),
	}

	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key == "style" {
			node.Style = curatedStyles(attr.Val)
			continue
		}
		for _, want := range curatedAttrs {
			if key == want {
				if node.Attrs == nil {
					node.Attrs = map[string]string{}
				}
				node.Attrs[key] = attr.Val
				break
			}
		}
	}

	var text strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			text.WriteString(child.Data)
		case html.ElementNode:
			if sub := buildTree(child, depth+1); sub != nil {
				node.Children = append(node.Children, sub)
			}
		}
	}
	node.Text = truncate(strings.Join(strings.Fields(text.String()), " "), maxNodeText)

	return node
}

func isInteractive(n *html.Node) bool {
	if interactiveTags[strings.ToLower(n.Data)] {
		return true
	}
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == "onclick" {
			return true
		}
	}
	return false
}

// parseStyleDecls splits an inline style attribute into declarations.
func parseStyleDecls(style string) map[string]string {
	decls := map[string]string{}
	for _, decl := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		decls[strings.ToLower(strings.TrimSpace(prop))] = strings.TrimSpace(value)
	}
	return decls
}

func curatedStyles(style string) map[string]string {
	var kept map[string]string
	for prop, value := range parseStyleDecls(style) {
		if !curatedStyleProps[prop] {
			continue
		}
		if kept == nil {
			kept = map[string]string{}
		}
		kept[prop] = value
	}
	return kept
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// truncate cuts s at a rune boundary at or below limit so node text
// never carries a split multi-byte character.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
