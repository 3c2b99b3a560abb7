package analysis

import (
	"regexp"
	"strings"

	"github.com/mocksi/webforge/page"
)

// Action keywords mark links worth surfacing as "important".
var actionKeywords = []string{
	"contact", "about", "pricing", "buy", "shop", "sign up", "signup",
	"login", "register", "download", "demo", "get started", "support",
	"subscribe",
}

// Contact extraction patterns.
var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s\-().]{7,}\d`)
)

const (
	maxKeyPoints      = 10
	maxImportantLinks = 5
	maxContacts       = 3
)

// ClassifyPurpose assigns one of the closed purpose labels from title and
// heading keywords. It is deterministic and needs no external call.
func ClassifyPurpose(c *page.Content) string {
	text := strings.ToLower(c.Title)
	for _, h := range c.Headings {
		text += " " + strings.ToLower(h.Text)
	}

	switch {
	case containsAny(text, "shop", "store", "cart", "buy now", "checkout", "pricing"):
		return PurposeEcommerce
	case containsAny(text, "blog", "posted", "article"):
		return PurposeBlog
	case containsAny(text, "news", "breaking", "headline"):
		return PurposeNews
	case containsAny(text, "portfolio", "my work", "projects"):
		return PurposePortfolio
	case containsAny(text, "documentation", "docs", "api reference", "getting started", "guide"):
		return PurposeDocumentation
	case containsAny(text, "about us", "our team", "services", "company"):
		return PurposeCorporate
	default:
		return PurposeInformational
	}
}

// ScoreReadability buckets the content by word count and paragraph
// density.
func ScoreReadability(c *page.Content) string {
	wc := c.WordCount
	paragraphs := c.ParagraphCount
	if paragraphs < 1 {
		paragraphs = 1
	}
	density := wc / paragraphs

	switch {
	case wc < 300 && density < 60:
		return ReadabilityEasy
	case wc > 1500 || density > 120:
		return ReadabilityComplex
	default:
		return ReadabilityModerate
	}
}

// ExtractKeyInfo collects heading-derived key points, action links and
// regex-extracted contacts. Always rule-based.
func ExtractKeyInfo(c *page.Content) KeyInfo {
	info := KeyInfo{
		KeyPoints:      []string{},
		ImportantLinks: []page.Link{},
		Emails:         []string{},
		Phones:         []string{},
	}

	for _, h := range c.Headings {
		if len(info.KeyPoints) == maxKeyPoints {
			break
		}
		info.KeyPoints = append(info.KeyPoints, h.Text)
	}

	for _, l := range c.Links {
		if len(info.ImportantLinks) == maxImportantLinks {
			break
		}
		if containsAny(strings.ToLower(l.Text), actionKeywords...) {
			info.ImportantLinks = append(info.ImportantLinks, l)
		}
	}

	for _, email := range emailRe.FindAllString(c.MainContent, -1) {
		if len(info.Emails) == maxContacts {
			break
		}
		if !contains(info.Emails, email) {
			info.Emails = append(info.Emails, email)
		}
	}

	for _, phone := range phoneRe.FindAllString(c.MainContent, -1) {
		if len(info.Phones) == maxContacts {
			break
		}
		phone = strings.TrimSpace(phone)
		if !contains(info.Phones, phone) {
			info.Phones = append(info.Phones, phone)
		}
	}

	return info
}

// Metrics collects the simple content counts.
func Metrics(c *page.Content) ContentMetrics {
	return ContentMetrics{
		WordCount:      c.WordCount,
		HeadingCount:   c.HeadingCount,
		ParagraphCount: c.ParagraphCount,
		LinkCount:      c.LinkCount,
		ImageCount:     c.ImageCount,
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
