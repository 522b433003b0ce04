package enhance

import "github.com/pagecraft/enhance/internal/models"

const (
	FeatureFAQ     = "faq"
	FeatureSummary = "summary"
	FeatureLinks   = "links"
)

var allFeatures = []string{FeatureFAQ, FeatureSummary, FeatureLinks}

// FaqResult is the API payload for a generated FAQ list.
type FaqResult struct {
	RefID    string           `json:"ref_id"`
	Items    []models.FaqItem `json:"items"`
	Provider string           `json:"provider"`
	Model    string           `json:"model"`
}

// SummaryResult is the API payload for a generated summary.
type SummaryResult struct {
	RefID    string `json:"ref_id"`
	Summary  string `json:"summary"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// LinksResult is the API payload for generated cross-link suggestions.
type LinksResult struct {
	RefID    string                  `json:"ref_id"`
	Items    []models.LinkSuggestion `json:"items"`
	Provider string                  `json:"provider"`
	Model    string                  `json:"model"`
}

// linkCandidate is a published article offered to the model as a
// possible link target.
type linkCandidate struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}
