package enhance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "json fence",
			input: "```json\n[{\"a\":1}]\n```",
			want:  `[{"a":1}]`,
		},
		{
			name:  "uppercase json fence",
			input: "```JSON\n{}\n```",
			want:  "{}",
		},
		{
			name:  "bare fence",
			input: "```\nhello\n```",
			want:  "hello",
		},
		{
			name:  "no fence",
			input: `{"summary": "x"}`,
			want:  `{"summary": "x"}`,
		},
		{
			name:  "interior fence is kept",
			input: "Use ```go\nfmt.Println()\n``` for printing.",
			want:  "Use ```go\nfmt.Println()\n``` for printing.",
		},
		{
			name:  "surrounding whitespace",
			input: "  ```json\n  [1,2]\n```  ",
			want:  "[1,2]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.input))
		})
	}
}

func TestNormalizeSummary(t *testing.T) {
	assert.Equal(t, "Plain text.", normalizeSummary("Plain text."))
	assert.Equal(t, "fenced", normalizeSummary("```\nfenced\n```"))
	assert.Equal(t, "wrapped", normalizeSummary(`{"summary": "wrapped"}`))
	assert.Equal(t, "wrapped", normalizeSummary("```json\n{\"summary\": \"wrapped\"}\n```"))
}

func TestNormalizeFAQ_ValidArray(t *testing.T) {
	raw := "```json\n[{\"question\":\"Q1\",\"answer\":\"A1\"},{\"question\":\"Q2\",\"answer\":\"A2\"}]\n```"

	items := normalizeFAQ(raw)
	require.Len(t, items, 2)
	assert.Equal(t, "Q1", items[0].Question)
	assert.Equal(t, "A2", items[1].Answer)
}

func TestNormalizeFAQ_WrappedObject(t *testing.T) {
	items := normalizeFAQ(`{"faqs":[{"question":"Q","answer":"A"}]}`)
	require.Len(t, items, 1)
	assert.Equal(t, "Q", items[0].Question)
}

func TestNormalizeFAQ_DropsIncompleteItems(t *testing.T) {
	raw := `[{"question":"Q1","answer":"A1"},{"question":"","answer":"A2"},{"question":"Q3"}]`

	items := normalizeFAQ(raw)
	require.Len(t, items, 1)
	assert.Equal(t, "Q1", items[0].Question)
}

func TestNormalizeFAQ_UnparseableFallsBack(t *testing.T) {
	items := normalizeFAQ("The article is about databases.")
	require.Len(t, items, 1)
	assert.Equal(t, "What is this content about?", items[0].Question)
	assert.Equal(t, "The article is about databases.", items[0].Answer)
}

func TestNormalizeLinks(t *testing.T) {
	candidates := []linkCandidate{
		{ID: "a1", Title: "First", Slug: "first"},
		{ID: "a2", Title: "Second", Slug: "second"},
	}

	t.Run("resolves against candidates", func(t *testing.T) {
		raw := `[{"target_id":"a1","keyword":"databases","reason":"related topic","relevance":8}]`
		items := normalizeLinks(raw, candidates)
		require.Len(t, items, 1)
		assert.Equal(t, "a1", items[0].TargetID)
		assert.Equal(t, "databases", items[0].Keyword)
		assert.Equal(t, "First", items[0].Title)
		assert.Equal(t, "first", items[0].Slug)
		assert.Equal(t, 8, items[0].Relevance)
	})

	t.Run("accepts camelCase target id", func(t *testing.T) {
		raw := `[{"targetId":"a2","keyword":"follow-up"}]`
		items := normalizeLinks(raw, candidates)
		require.Len(t, items, 1)
		assert.Equal(t, "a2", items[0].TargetID)
	})

	t.Run("drops unknown ids", func(t *testing.T) {
		raw := `[{"target_id":"ghost","keyword":"hallucinated"},{"target_id":"a1","keyword":"real"}]`
		items := normalizeLinks(raw, candidates)
		require.Len(t, items, 1)
		assert.Equal(t, "a1", items[0].TargetID)
	})

	t.Run("drops items missing required keys", func(t *testing.T) {
		raw := `[{"target_id":"a1"},{"keyword":"no target"}]`
		assert.Empty(t, normalizeLinks(raw, candidates))
	})

	t.Run("dedupes repeated targets", func(t *testing.T) {
		raw := `[{"target_id":"a1","keyword":"x"},{"target_id":"a1","keyword":"y"}]`
		assert.Len(t, normalizeLinks(raw, candidates), 1)
	})

	t.Run("unparseable yields empty list", func(t *testing.T) {
		items := normalizeLinks("I could not find any links.", candidates)
		require.NotNil(t, items)
		assert.Empty(t, items)
	})
}
