package enhance

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pagecraft/enhance/internal/models"
)

// Models wrap JSON output in markdown fences often enough that we strip
// a single full-string fence before parsing. Only anchored fences are
// removed so fenced code inside a legitimate answer survives.
var fenceRE = regexp.MustCompile("(?s)^```(?:[Jj][Ss][Oo][Nn])?\\s*(.*?)\\s*```$")

func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := fenceRE.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	return trimmed
}

// normalizeSummary returns the cleaned summary text.
func normalizeSummary(raw string) string {
	cleaned := stripFences(raw)

	// Some models still answer {"summary": "..."} despite instructions.
	var wrapped struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err == nil && strings.TrimSpace(wrapped.Summary) != "" {
		return strings.TrimSpace(wrapped.Summary)
	}
	return cleaned
}

// normalizeFAQ parses the model output into FAQ items. Unparseable
// output degrades to a single generic item carrying the raw answer, so
// the feature never hard-fails on a sloppy model.
func normalizeFAQ(raw string) []models.FaqItem {
	cleaned := stripFences(raw)

	items := parseFAQItems(cleaned)
	if len(items) == 0 {
		return []models.FaqItem{{
			Question: "What is this content about?",
			Answer:   cleaned,
		}}
	}
	return items
}

func parseFAQItems(cleaned string) []models.FaqItem {
	var direct []models.FaqItem
	if err := json.Unmarshal([]byte(cleaned), &direct); err == nil {
		return dropEmptyFAQItems(direct)
	}

	var wrapped struct {
		Faqs  []models.FaqItem `json:"faqs"`
		Items []models.FaqItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err == nil {
		if len(wrapped.Faqs) > 0 {
			return dropEmptyFAQItems(wrapped.Faqs)
		}
		return dropEmptyFAQItems(wrapped.Items)
	}
	return nil
}

func dropEmptyFAQItems(items []models.FaqItem) []models.FaqItem {
	out := make([]models.FaqItem, 0, len(items))
	for _, item := range items {
		item.Question = strings.TrimSpace(item.Question)
		item.Answer = strings.TrimSpace(item.Answer)
		if item.Question == "" || item.Answer == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

type rawLinkSuggestion struct {
	TargetID      string `json:"target_id"`
	TargetIDCamel string `json:"targetId"`
	Keyword       string `json:"keyword"`
	Reason        string `json:"reason"`
	Relevance     int    `json:"relevance"`
}

// normalizeLinks parses link suggestions and resolves them against the
// candidate set. Anything unparseable or pointing at an unknown id is
// dropped; a fully broken response yields an empty list, not an error.
func normalizeLinks(raw string, candidates []linkCandidate) []models.LinkSuggestion {
	cleaned := stripFences(raw)

	var parsed []rawLinkSuggestion
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		var wrapped struct {
			Links []rawLinkSuggestion `json:"links"`
			Items []rawLinkSuggestion `json:"items"`
		}
		if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
			return []models.LinkSuggestion{}
		}
		parsed = wrapped.Links
		if len(parsed) == 0 {
			parsed = wrapped.Items
		}
	}

	byID := make(map[string]linkCandidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	out := make([]models.LinkSuggestion, 0, len(parsed))
	seen := make(map[string]struct{}, len(parsed))
	for _, item := range parsed {
		id := strings.TrimSpace(item.TargetID)
		if id == "" {
			id = strings.TrimSpace(item.TargetIDCamel)
		}
		keyword := strings.TrimSpace(item.Keyword)
		if id == "" || keyword == "" {
			continue
		}
		candidate, ok := byID[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, models.LinkSuggestion{
			TargetID:  id,
			Keyword:   keyword,
			Title:     candidate.Title,
			Slug:      candidate.Slug,
			Reason:    strings.TrimSpace(item.Reason),
			Relevance: item.Relevance,
		})
	}
	return out
}
