package models

// FaqItem is a single generated question/answer pair.
type FaqItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// LinkSuggestion is a proposed internal cross-link for an article.
// Keyword is the anchor text in the source article the link should
// attach to.
type LinkSuggestion struct {
	TargetID  string `json:"target_id"`
	Keyword   string `json:"keyword"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Reason    string `json:"reason,omitempty"`
	Relevance int    `json:"relevance,omitempty"`
}

// AIFaqModel stores a generated FAQ list for one article. Hash is the
// content hash at generation time, so stale results are detectable even
// after the cache entry expires.
type AIFaqModel struct {
	Base
	Hash     string    `json:"hash"      gorm:"uniqueIndex;not null"`
	RefID    string    `json:"ref_id"    gorm:"index;not null"`
	Items    []FaqItem `json:"items"     gorm:"serializer:json"`
	Language string    `json:"language"`
	Provider string    `json:"provider"`
	Model    string    `json:"model"`
}

func (AIFaqModel) TableName() string { return "ai_faqs" }

// AISummaryModel stores a generated summary for one article.
type AISummaryModel struct {
	Base
	Hash     string `json:"hash"    gorm:"uniqueIndex;not null"`
	RefID    string `json:"ref_id"  gorm:"index;not null"`
	Summary  string `json:"summary" gorm:"type:text;not null"`
	Language string `json:"language"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

func (AISummaryModel) TableName() string { return "ai_summaries" }

// AILinkSuggestionModel stores generated cross-link suggestions for one article.
type AILinkSuggestionModel struct {
	Base
	Hash     string           `json:"hash"   gorm:"uniqueIndex;not null"`
	RefID    string           `json:"ref_id" gorm:"index;not null"`
	Items    []LinkSuggestion `json:"items"  gorm:"serializer:json"`
	Provider string           `json:"provider"`
	Model    string           `json:"model"`
}

func (AILinkSuggestionModel) TableName() string { return "ai_link_suggestions" }
