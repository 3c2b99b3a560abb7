// Package codegen renders a static starter site from extracted page
// content and a captured technical specification. Templated string
// generation: identical input yields identical files.
package codegen

import (
	"fmt"
	"html"
	"strings"

	"github.com/mocksi/webforge/page"
	"github.com/mocksi/webforge/techspec"
)

// File names in the generated bundle.
const (
	FileHTML = "index.html"
	FileCSS  = "styles.css"
	FileJS   = "script.js"
)

// Rendering caps keep generated files bounded on content-heavy pages.
const (
	maxSections   = 6
	maxParagraphs = 8
	maxNavLinks   = 6
)

// Bundle is one generated site.
type Bundle struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

// Files returns the bundle as a named file map for download.
func (b *Bundle) Files() map[string]string {
	return map[string]string{
		FileHTML: b.HTML,
		FileCSS:  b.CSS,
		FileJS:   b.JS,
	}
}

// Generate renders the bundle. A nil spec falls back to a traditional
// layout with default colors.
func Generate(content *page.Content, spec *techspec.Spec) *Bundle {
	return &Bundle{
		HTML: generateHTML(content, spec),
		CSS:  generateCSS(spec),
		JS:   generateJS(content),
	}
}

func generateHTML(content *page.Content, spec *techspec.Spec) string {
	title := content.Title
	if title == "" {
		title = "Generated Site"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	if content.Description != "" {
		fmt.Fprintf(&b, "<meta name=\"description\" content=\"%s\">\n", html.EscapeString(content.Description))
	}
	b.WriteString("<link rel=\"stylesheet\" href=\"styles.css\">\n")
	b.WriteString("</head>\n<body>\n")

	b.WriteString("<header>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title))
	if nav := navLinks(content); len(nav) > 0 {
		b.WriteString("<nav>\n")
		for _, link := range nav {
			fmt.Fprintf(&b, "<a href=\"%s\">%s</a>\n",
				html.EscapeString(link.Href), html.EscapeString(link.Text))
		}
		b.WriteString("</nav>\n")
	}
	b.WriteString("</header>\n<main>\n")

	writeSections(&b, content)

	b.WriteString("</main>\n<footer>\n")
	fmt.Fprintf(&b, "<p>Generated from %s</p>\n", html.EscapeString(content.URL))
	b.WriteString("</footer>\n")
	if hasForms(spec) {
		b.WriteString("<script src=\"script.js\"></script>\n")
	} else {
		b.WriteString("<script src=\"script.js\" defer></script>\n")
	}
	b.WriteString("</body>\n</html>\n")

	return b.String()
}

// writeSections renders the captured headings as sections, interleaving
// the captured paragraphs across them in order.
func writeSections(b *strings.Builder, content *page.Content) {
	headings := content.Headings
	if len(headings) > maxSections {
		headings = headings[:maxSections]
	}
	paragraphs := content.Paragraphs
	if len(paragraphs) > maxParagraphs {
		paragraphs = paragraphs[:maxParagraphs]
	}

	if len(headings) == 0 {
		for _, p := range paragraphs {
			fmt.Fprintf(b, "<p>%s</p>\n", html.EscapeString(p))
		}
		return
	}

	perSection := (len(paragraphs) + len(headings) - 1) / len(headings)
	next := 0
	for _, h := range headings {
		level := h.Level
		if level < 2 {
			level = 2
		}
		b.WriteString("<section>\n")
		fmt.Fprintf(b, "<h%d>%s</h%d>\n", level, html.EscapeString(h.Text), level)
		for i := 0; i < perSection && next < len(paragraphs); i++ {
			fmt.Fprintf(b, "<p>%s</p>\n", html.EscapeString(paragraphs[next]))
			next++
		}
		b.WriteString("</section>\n")
	}
}

func generateCSS(spec *techspec.Spec) string {
	background := "#ffffff"
	text := "#1a1a1a"
	layout := techspec.LayoutTraditional
	if spec != nil {
		if len(spec.Colors.Backgrounds) > 0 {
			background = spec.Colors.Backgrounds[0]
		}
		if len(spec.Colors.Texts) > 0 {
			text = spec.Colors.Texts[0]
		}
		layout = spec.Layout.Model
	}

	var b strings.Builder
	fmt.Fprintf(&b, ":root {\n  --background: %s;\n  --text: %s;\n}\n\n", background, text)
	b.WriteString("* { box-sizing: border-box; margin: 0; padding: 0; }\n\n")
	b.WriteString("body {\n  background: var(--background);\n  color: var(--text);\n")
	b.WriteString("  font-family: system-ui, sans-serif;\n  line-height: 1.6;\n}\n\n")
	b.WriteString("header, footer { padding: 2rem; }\n\n")

	switch layout {
	case techspec.LayoutGrid:
		b.WriteString("main {\n  display: grid;\n  grid-template-columns: repeat(auto-fit, minmax(320px, 1fr));\n  gap: 2rem;\n  padding: 2rem;\n}\n")
	case techspec.LayoutFlex:
		b.WriteString("main {\n  display: flex;\n  flex-wrap: wrap;\n  gap: 2rem;\n  padding: 2rem;\n}\n\nmain section { flex: 1 1 320px; }\n")
	default:
		b.WriteString("main {\n  max-width: 48rem;\n  margin: 0 auto;\n  padding: 2rem;\n}\n\nmain section { margin-bottom: 2rem; }\n")
	}

	b.WriteString("\nnav a { margin-right: 1rem; }\n")
	return b.String()
}

func generateJS(content *page.Content) string {
	var b strings.Builder
	b.WriteString("'use strict';\n\n")
	fmt.Fprintf(&b, "// Generated from %s\n", content.URL)
	b.WriteString("document.addEventListener('DOMContentLoaded', () => {\n")
	b.WriteString("  document.querySelectorAll('nav a').forEach((link) => {\n")
	b.WriteString("    link.addEventListener('click', (event) => {\n")
	b.WriteString("      if (link.getAttribute('href').startsWith('#')) {\n")
	b.WriteString("        event.preventDefault();\n")
	b.WriteString("        document.querySelector(link.getAttribute('href'))?.scrollIntoView({ behavior: 'smooth' });\n")
	b.WriteString("      }\n")
	b.WriteString("    });\n")
	b.WriteString("  });\n")
	b.WriteString("});\n")
	return b.String()
}

func navLinks(content *page.Content) []page.Link {
	links := content.Links
	if len(links) > maxNavLinks {
		links = links[:maxNavLinks]
	}
	return links
}

func hasForms(spec *techspec.Spec) bool {
	return spec != nil && len(spec.Forms) > 0
}
