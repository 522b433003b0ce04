package configs

import (
	"testing"

	"github.com/pagecraft/enhance/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestDeepMergeJSON(t *testing.T) {
	t.Run("nested maps merge", func(t *testing.T) {
		oldVal := map[string]interface{}{
			"enable_faq":     true,
			"enable_summary": true,
		}
		newVal := map[string]interface{}{
			"enable_summary": false,
		}

		merged, ok := deepMergeJSON(oldVal, newVal).(map[string]interface{})
		assert.True(t, ok)
		assert.Equal(t, true, merged["enable_faq"])
		assert.Equal(t, false, merged["enable_summary"])
	})

	t.Run("arrays replace wholesale", func(t *testing.T) {
		oldVal := map[string]interface{}{
			"providers": []interface{}{"a", "b"},
		}
		newVal := map[string]interface{}{
			"providers": []interface{}{"c"},
		}

		merged := deepMergeJSON(oldVal, newVal).(map[string]interface{})
		assert.Equal(t, []interface{}{"c"}, merged["providers"])
	})

	t.Run("scalar replaces map", func(t *testing.T) {
		assert.Equal(t, "x", deepMergeJSON(map[string]interface{}{"a": 1}, "x"))
	})
}

func TestRestoreMaskedKeys(t *testing.T) {
	current := config.DefaultFullConfig()
	current.AI.Providers = []config.AIProvider{
		{ID: "p1", APIKey: "enc:stored-p1"},
		{ID: "p2", APIKey: "enc:stored-p2"},
	}

	updated := config.DefaultFullConfig()
	updated.AI.Providers = []config.AIProvider{
		{ID: "p1", APIKey: "********"},
		{ID: "p2", APIKey: "sk-brand-new"},
		{ID: "p3", APIKey: "********"},
	}

	restoreMaskedKeys(&updated, &current)

	assert.Equal(t, "enc:stored-p1", updated.AI.Providers[0].APIKey, "masked key keeps stored value")
	assert.Equal(t, "sk-brand-new", updated.AI.Providers[1].APIKey, "new key wins")
	assert.Equal(t, "", updated.AI.Providers[2].APIKey, "masked key on unknown provider clears")
}
