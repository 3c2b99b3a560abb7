package page

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// Extractor parses rendered page HTML into structured content.
type Extractor struct {
	converter *md.Converter
}

// NewExtractor creates an extractor with a GitHub-flavored markdown
// converter for the markdown rendition.
func NewExtractor() *Extractor {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &Extractor{converter: converter}
}

// Extract parses html into structured content. A page with no renderable
// body yields a valid-but-empty extraction, not an error.
func (e *Extractor) Extract(html, pageURL string) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page HTML: %w", err)
	}

	c := &Content{URL: pageURL}

	c.Title = strings.TrimSpace(doc.Find("title").First().Text())
	c.Description, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	c.Keywords, _ = doc.Find(`meta[name="keywords"]`).First().Attr("content")
	c.Description = strings.TrimSpace(c.Description)
	c.Keywords = strings.TrimSpace(c.Keywords)

	c.Structure = StructuralFlags{
		HasNav:     doc.Find("nav").Length() > 0,
		HasMain:    doc.Find("main").Length() > 0,
		HasHeader:  doc.Find("header").Length() > 0,
		HasFooter:  doc.Find("footer").Length() > 0,
		HasArticle: doc.Find("article").Length() > 0,
		HasAside:   doc.Find("aside").Length() > 0,
	}

	e.collectHeadings(doc, c)
	e.collectParagraphs(doc, c)
	e.collectLinks(doc, c)
	e.collectImages(doc, c)
	e.extractMainContent(html, pageURL, doc, c)

	if markdown, err := e.converter.ConvertString(html); err == nil {
		c.Markdown = strings.TrimSpace(markdown)
	}

	return c, nil
}

func (e *Extractor) collectHeadings(doc *goquery.Document, c *Content) {
	index := 0
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		level := int(sel.Get(0).Data[1] - '0')
		c.Headings = append(c.Headings, Heading{Level: level, Text: text, Index: index})
		index++
	})
	c.HeadingCount = len(c.Headings)
}

func (e *Extractor) collectParagraphs(doc *goquery.Document, c *Content) {
	total := 0
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) <= minParagraphLen {
			return
		}
		total++
		if len(c.Paragraphs) < MaxParagraphs {
			c.Paragraphs = append(c.Paragraphs, text)
		}
	})
	c.ParagraphCount = total
}

func (e *Extractor) collectLinks(doc *goquery.Document, c *Content) {
	total := 0
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		href, _ := sel.Attr("href")
		if len(text) < 3 || href == "" || strings.HasPrefix(href, "javascript:") {
			return
		}
		total++
		if len(c.Links) < MaxLinks {
			c.Links = append(c.Links, Link{Text: text, Href: href})
		}
	})
	c.LinkCount = total
}

func (e *Extractor) collectImages(doc *goquery.Document, c *Content) {
	total := 0
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		alt := strings.TrimSpace(sel.AttrOr("alt", ""))
		src, _ := sel.Attr("src")
		if alt == "" || src == "" {
			return
		}
		total++
		if len(c.Images) < MaxImages {
			c.Images = append(c.Images, Image{Alt: alt, Src: src})
		}
	})
	c.ImageCount = total
}

// extractMainContent prefers readability's article text and falls back to
// a visible-text walk that skips script, style and chrome subtrees.
func (e *Extractor) extractMainContent(html, pageURL string, doc *goquery.Document, c *Content) {
	text := ""

	if u, err := url.Parse(pageURL); err == nil {
		if article, err := readability.FromReader(strings.NewReader(html), u); err == nil {
			text = strings.TrimSpace(article.TextContent)
		}
	}

	if text == "" {
		text = visibleText(doc)
	}

	c.WordCount = len(strings.Fields(text))
	if len(text) > MaxMainContent {
		cut := MaxMainContent
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	c.MainContent = text
}

// visibleText concatenates body text excluding script/style/nav chrome.
func visibleText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	if body.Length() == 0 {
		return ""
	}
	body.Find("script, style, noscript, nav, header, footer").Remove()

	return strings.Join(strings.Fields(body.Text()), " ")
}
