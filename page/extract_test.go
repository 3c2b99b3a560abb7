package page

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Acme Widgets</title>
  <meta name="description" content="The best widgets on the market.">
  <meta name="keywords" content="widgets, acme, tools">
</head>
<body>
  <header><nav><a href="/home">Home page</a></nav></header>
  <main>
    <h1>Welcome to Acme</h1>
    <h2>Our Products</h2>
    <p>We build the finest widgets available anywhere in the world today.</p>
    <p>short</p>
    <p>Our catalog spans industrial, commercial and hobbyist widget lines.</p>
    <a href="/pricing">See our pricing</a>
    <a href="#">x</a>
    <img src="/w.png" alt="A widget">
    <img src="/plain.png">
  </main>
  <footer><p>Copyright Acme, all rights reserved, since nineteen ninety nine.</p></footer>
</body>
</html>`

func TestExtract_Fixture(t *testing.T) {
	e := NewExtractor()

	c, err := e.Extract(fixtureHTML, "https://acme.example")
	require.NoError(t, err)

	assert.Equal(t, "Acme Widgets", c.Title)
	assert.Equal(t, "The best widgets on the market.", c.Description)
	assert.Equal(t, "widgets, acme, tools", c.Keywords)

	require.Len(t, c.Headings, 2)
	assert.Equal(t, Heading{Level: 1, Text: "Welcome to Acme", Index: 0}, c.Headings[0])
	assert.Equal(t, 2, c.Headings[1].Level)

	// "short" is filtered by the length threshold.
	assert.GreaterOrEqual(t, len(c.Paragraphs), 2)
	for _, p := range c.Paragraphs {
		assert.Greater(t, len(p), 20)
	}

	// The one-character link and the javascript-free anchor filter apply.
	var hrefs []string
	for _, l := range c.Links {
		hrefs = append(hrefs, l.Href)
	}
	assert.Contains(t, hrefs, "/pricing")
	assert.NotContains(t, hrefs, "#")

	// Only the image with alt text is kept.
	require.Len(t, c.Images, 1)
	assert.Equal(t, "A widget", c.Images[0].Alt)

	assert.True(t, c.Structure.HasNav)
	assert.True(t, c.Structure.HasMain)
	assert.True(t, c.Structure.HasFooter)
	assert.False(t, c.Structure.HasAside)

	assert.NotEmpty(t, c.MainContent)
	assert.Positive(t, c.WordCount)
	assert.NotEmpty(t, c.Markdown)
}

func TestExtract_EmptyBodyIsValid(t *testing.T) {
	e := NewExtractor()

	c, err := e.Extract("<html><head><title>Blank</title></head><body></body></html>", "https://blank.example")
	require.NoError(t, err, "a page with no renderable body is a valid, empty extraction")

	assert.Equal(t, "Blank", c.Title)
	assert.Empty(t, c.Headings)
	assert.Empty(t, c.MainContent)
	assert.Zero(t, c.WordCount)
}

func TestExtract_MainContentCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body><article>")
	for i := 0; i < 4000; i++ {
		b.WriteString("<p>This sentence pads the page body with repeated filler text.</p>")
	}
	b.WriteString("</article></body></html>")

	e := NewExtractor()
	c, err := e.Extract(b.String(), "https://long.example")
	require.NoError(t, err)

	assert.LessOrEqual(t, len(c.MainContent), MaxMainContent)
	assert.Greater(t, c.WordCount, 10000, "word count reflects the full cleaned text, not the capped slice")
}

func TestExtract_ParagraphAndLinkCaps(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 30; i++ {
		b.WriteString("<p>A reasonably long paragraph that clears the length filter.</p>")
		b.WriteString(`<a href="/page">A descriptive link text</a>`)
	}
	b.WriteString("</body></html>")

	e := NewExtractor()
	c, err := e.Extract(b.String(), "https://caps.example")
	require.NoError(t, err)

	assert.Len(t, c.Paragraphs, MaxParagraphs)
	assert.Equal(t, 30, c.ParagraphCount, "counts reflect totals, caps bound the stored slices")
	assert.Len(t, c.Links, MaxLinks)
	assert.Equal(t, 30, c.LinkCount)
}
