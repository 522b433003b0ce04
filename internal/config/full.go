package config

import (
	"encoding/json"
	"strings"
)

// FullConfig is the application config stored in the database
// (options table, key="configs"). It is patchable at runtime.
type FullConfig struct {
	SEO URLMeta  `json:"seo"`
	URL URLs     `json:"url"`
	AI  AIConfig `json:"ai"`
}

type URLMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type URLs struct {
	WebURL    string `json:"web_url"`
	ServerURL string `json:"server_url"`
}

// AIConfig drives the enhancement features: which providers exist,
// which provider/model each feature uses, and the limits.
type AIConfig struct {
	Providers      []AIProvider       `json:"providers"`
	FAQModel       *AIModelAssignment `json:"faq_model,omitempty"`
	SummaryModel   *AIModelAssignment `json:"summary_model,omitempty"`
	LinksModel     *AIModelAssignment `json:"links_model,omitempty"`
	EnableFAQ      bool               `json:"enable_faq"`
	EnableSummary  bool               `json:"enable_summary"`
	EnableLinks    bool               `json:"enable_links"`
	TargetLanguage string             `json:"target_language"`

	CacheTTLHours     int `json:"cache_ttl_hours"`
	PostLimit         int `json:"post_limit"`
	PostWindowSeconds int `json:"post_window_seconds"`
	DailyLimit        int `json:"daily_limit"`
}

// AIProvider is one configured LLM vendor account.
type AIProvider struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"` // openai | claude | gemini | grok
	APIKey         string `json:"api_key"`
	Endpoint       string `json:"endpoint,omitempty"`
	DefaultModel   string `json:"default_model"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
	Enabled        bool   `json:"enabled"`
}

// AIModelAssignment binds a feature to a provider and optional model
// override. Model falls back to the provider's default when empty.
type AIModelAssignment struct {
	ProviderID string `json:"provider_id"`
	Model      string `json:"model"`
}

func (a *AIModelAssignment) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProviderID      string `json:"provider_id"`
		ProviderIDCamel string `json:"providerId"`
		Model           string `json:"model"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.ProviderID = strings.TrimSpace(raw.ProviderID)
	if a.ProviderID == "" {
		a.ProviderID = strings.TrimSpace(raw.ProviderIDCamel)
	}
	a.Model = strings.TrimSpace(raw.Model)
	return nil
}

func (a *AIConfig) UnmarshalJSON(data []byte) error {
	next := *a
	var raw struct {
		Providers         []AIProvider    `json:"providers"`
		FAQModel          json.RawMessage `json:"faq_model"`
		SummaryModel      json.RawMessage `json:"summary_model"`
		LinksModel        json.RawMessage `json:"links_model"`
		EnableFAQ         *bool           `json:"enable_faq"`
		EnableSummary     *bool           `json:"enable_summary"`
		EnableLinks       *bool           `json:"enable_links"`
		TargetLanguage    *string         `json:"target_language"`
		CacheTTLHours     *int            `json:"cache_ttl_hours"`
		PostLimit         *int            `json:"post_limit"`
		PostWindowSeconds *int            `json:"post_window_seconds"`
		DailyLimit        *int            `json:"daily_limit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Providers != nil {
		next.Providers = raw.Providers
	}
	if raw.EnableFAQ != nil {
		next.EnableFAQ = *raw.EnableFAQ
	}
	if raw.EnableSummary != nil {
		next.EnableSummary = *raw.EnableSummary
	}
	if raw.EnableLinks != nil {
		next.EnableLinks = *raw.EnableLinks
	}
	if raw.TargetLanguage != nil {
		next.TargetLanguage = *raw.TargetLanguage
	}
	if raw.CacheTTLHours != nil {
		next.CacheTTLHours = *raw.CacheTTLHours
	}
	if raw.PostLimit != nil {
		next.PostLimit = *raw.PostLimit
	}
	if raw.PostWindowSeconds != nil {
		next.PostWindowSeconds = *raw.PostWindowSeconds
	}
	if raw.DailyLimit != nil {
		next.DailyLimit = *raw.DailyLimit
	}

	var err error
	if len(raw.FAQModel) > 0 {
		next.FAQModel, err = parseAIModelAssignment(raw.FAQModel, next.FAQModel)
		if err != nil {
			return err
		}
	}
	if len(raw.SummaryModel) > 0 {
		next.SummaryModel, err = parseAIModelAssignment(raw.SummaryModel, next.SummaryModel)
		if err != nil {
			return err
		}
	}
	if len(raw.LinksModel) > 0 {
		next.LinksModel, err = parseAIModelAssignment(raw.LinksModel, next.LinksModel)
		if err != nil {
			return err
		}
	}

	*a = next
	return nil
}

func parseAIModelAssignment(raw json.RawMessage, fallback *AIModelAssignment) (*AIModelAssignment, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return fallback, nil
	}
	if trimmed == "null" {
		return nil, nil
	}

	// Legacy form: a bare model name string.
	var legacyModel string
	if err := json.Unmarshal(raw, &legacyModel); err == nil {
		legacyModel = strings.TrimSpace(legacyModel)
		if legacyModel == "" {
			return nil, nil
		}
		next := &AIModelAssignment{}
		if fallback != nil {
			*next = *fallback
		}
		next.Model = legacyModel
		return next, nil
	}

	next := &AIModelAssignment{}
	if fallback != nil {
		*next = *fallback
	}
	if err := json.Unmarshal(raw, next); err != nil {
		return nil, err
	}
	if strings.TrimSpace(next.ProviderID) == "" && strings.TrimSpace(next.Model) == "" {
		return nil, nil
	}
	return next, nil
}

// Assignment returns the model assignment for a feature name.
func (a AIConfig) Assignment(feature string) *AIModelAssignment {
	switch feature {
	case "faq":
		return a.FAQModel
	case "summary":
		return a.SummaryModel
	case "links":
		return a.LinksModel
	}
	return nil
}

// FeatureEnabled reports whether a feature is switched on.
func (a AIConfig) FeatureEnabled(feature string) bool {
	switch feature {
	case "faq":
		return a.EnableFAQ
	case "summary":
		return a.EnableSummary
	case "links":
		return a.EnableLinks
	}
	return false
}

// DefaultFullConfig returns the defaults written to the options table
// on first boot.
func DefaultFullConfig() FullConfig {
	return FullConfig{
		SEO: URLMeta{
			Title:       "PageCraft",
			Description: "",
		},
		URL: URLs{
			WebURL:    "http://localhost:3000",
			ServerURL: "http://localhost:3010",
		},
		AI: AIConfig{
			Providers:         []AIProvider{},
			EnableFAQ:         true,
			EnableSummary:     true,
			EnableLinks:       true,
			TargetLanguage:    "auto",
			CacheTTLHours:     24,
			PostLimit:         2,
			PostWindowSeconds: 300,
			DailyLimit:        30,
		},
	}
}
