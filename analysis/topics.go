package analysis

import (
	"sort"
	"strings"

	"github.com/mocksi/webforge/inference"
	"github.com/mocksi/webforge/page"
)

// TopicLabels is the fixed vocabulary for zero-shot classification.
var TopicLabels = []string{
	"technology", "business", "finance", "marketing", "e-commerce",
	"health", "education", "science", "news", "politics",
	"entertainment", "sports", "travel", "food", "fashion",
	"art", "music", "gaming", "real estate", "automotive",
}

// topicConfidenceThreshold filters low-confidence zero-shot labels.
const topicConfidenceThreshold = 0.1

// maxTopics caps the returned topic list.
const maxTopics = 3

// topicKeywords is the rule-based topic table used when classification
// fails.
var topicKeywords = map[string][]string{
	"technology":  {"software", "computer", "digital", "tech", "app", "code", "data", "cloud", "api"},
	"business":    {"business", "company", "service", "client", "industry", "enterprise", "solution"},
	"finance":     {"finance", "investment", "bank", "money", "price", "market", "trading", "payment"},
	"marketing":   {"marketing", "brand", "campaign", "audience", "seo", "advertising"},
	"e-commerce":  {"shop", "store", "cart", "buy", "product", "shipping", "order", "checkout"},
	"health":      {"health", "medical", "doctor", "wellness", "fitness", "treatment", "patient"},
	"education":   {"learn", "course", "student", "education", "training", "tutorial", "school"},
	"science":     {"research", "science", "study", "experiment", "analysis", "laboratory"},
	"news":        {"news", "report", "breaking", "update", "coverage", "headline"},
	"travel":      {"travel", "hotel", "flight", "destination", "tour", "vacation", "booking"},
	"food":        {"recipe", "food", "restaurant", "cooking", "meal", "ingredient", "menu"},
	"sports":      {"game", "team", "player", "season", "match", "league", "score"},
	"music":       {"music", "album", "artist", "song", "concert", "band"},
	"gaming":      {"game", "gaming", "player", "console", "quest", "level"},
	"real estate": {"property", "home", "estate", "rent", "listing", "mortgage"},
	"automotive":  {"car", "vehicle", "engine", "drive", "automotive", "motor"},
}

// topScoringLabels keeps zero-shot labels above the confidence threshold,
// up to maxTopics, in descending score order.
func topScoringLabels(scores []inference.LabelScore) []string {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	topics := make([]string, 0, maxTopics)
	for _, s := range scores {
		if s.Score <= topicConfidenceThreshold {
			continue
		}
		topics = append(topics, s.Label)
		if len(topics) == maxTopics {
			break
		}
	}
	return topics
}

// KeywordTopics scores the fixed topic table against the page text and
// returns the top three non-zero topics, or ["general"] if none score.
func KeywordTopics(c *page.Content) []string {
	text := strings.ToLower(c.Title + " " + c.Description + " " + c.MainContent)

	type scored struct {
		topic string
		hits  int
	}
	var ranked []scored

	for topic, keywords := range topicKeywords {
		hits := 0
		for _, kw := range keywords {
			hits += strings.Count(text, kw)
		}
		if hits > 0 {
			ranked = append(ranked, scored{topic: topic, hits: hits})
		}
	}

	if len(ranked) == 0 {
		return []string{"general"}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].hits != ranked[j].hits {
			return ranked[i].hits > ranked[j].hits
		}
		return ranked[i].topic < ranked[j].topic
	})

	topics := make([]string, 0, maxTopics)
	for _, s := range ranked {
		topics = append(topics, s.topic)
		if len(topics) == maxTopics {
			break
		}
	}
	return topics
}

// classificationInput builds a compact text for zero-shot classification.
func classificationInput(c *page.Content) string {
	parts := []string{c.Title, c.Description}
	text := c.MainContent
	if len(text) > 1000 {
		text = text[:1000]
	}
	parts = append(parts, text)
	return strings.TrimSpace(strings.Join(parts, " "))
}
