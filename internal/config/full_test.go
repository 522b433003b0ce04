package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFullConfig(t *testing.T) {
	cfg := DefaultFullConfig()

	assert.Equal(t, 24, cfg.AI.CacheTTLHours)
	assert.Equal(t, 2, cfg.AI.PostLimit)
	assert.Equal(t, 300, cfg.AI.PostWindowSeconds)
	assert.Equal(t, 30, cfg.AI.DailyLimit)
	assert.Equal(t, "auto", cfg.AI.TargetLanguage)
	assert.True(t, cfg.AI.EnableFAQ)
	assert.True(t, cfg.AI.EnableSummary)
	assert.True(t, cfg.AI.EnableLinks)
}

func TestAIConfig_UnmarshalPartialKeepsDefaults(t *testing.T) {
	cfg := DefaultFullConfig()
	err := json.Unmarshal([]byte(`{"ai":{"enable_summary":false,"daily_limit":10}}`), &cfg)
	require.NoError(t, err)

	assert.False(t, cfg.AI.EnableSummary)
	assert.Equal(t, 10, cfg.AI.DailyLimit)
	// Untouched fields keep their defaults.
	assert.True(t, cfg.AI.EnableFAQ)
	assert.Equal(t, 2, cfg.AI.PostLimit)
	assert.Equal(t, 24, cfg.AI.CacheTTLHours)
}

func TestAIModelAssignment_UnmarshalCamelCase(t *testing.T) {
	var a AIModelAssignment
	require.NoError(t, json.Unmarshal([]byte(`{"providerId":"p1","model":"gpt-4o"}`), &a))
	assert.Equal(t, "p1", a.ProviderID)
	assert.Equal(t, "gpt-4o", a.Model)
}

func TestAIConfig_ModelAssignmentForms(t *testing.T) {
	t.Run("object form", func(t *testing.T) {
		var ai AIConfig
		require.NoError(t, json.Unmarshal([]byte(`{"faq_model":{"provider_id":"p1","model":"m1"}}`), &ai))
		require.NotNil(t, ai.FAQModel)
		assert.Equal(t, "p1", ai.FAQModel.ProviderID)
		assert.Equal(t, "m1", ai.FAQModel.Model)
	})

	t.Run("legacy bare model string", func(t *testing.T) {
		var ai AIConfig
		require.NoError(t, json.Unmarshal([]byte(`{"summary_model":"gpt-4o-mini"}`), &ai))
		require.NotNil(t, ai.SummaryModel)
		assert.Equal(t, "gpt-4o-mini", ai.SummaryModel.Model)
	})

	t.Run("null clears assignment", func(t *testing.T) {
		ai := AIConfig{LinksModel: &AIModelAssignment{ProviderID: "p1"}}
		require.NoError(t, json.Unmarshal([]byte(`{"links_model":null}`), &ai))
		assert.Nil(t, ai.LinksModel)
	})
}

func TestAIConfig_AssignmentAndFeatureEnabled(t *testing.T) {
	ai := AIConfig{
		FAQModel:      &AIModelAssignment{ProviderID: "p1"},
		EnableFAQ:     true,
		EnableSummary: false,
	}

	assert.Equal(t, "p1", ai.Assignment("faq").ProviderID)
	assert.Nil(t, ai.Assignment("summary"))
	assert.Nil(t, ai.Assignment("unknown"))

	assert.True(t, ai.FeatureEnabled("faq"))
	assert.False(t, ai.FeatureEnabled("summary"))
	assert.False(t, ai.FeatureEnabled("unknown"))
}
