package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"punctuation collapses", "Go: the good parts!", "go-the-good-parts"},
		{"numbers kept", "Top 10 Tips", "top-10-tips"},
		{"leading and trailing symbols", "  --Hello--  ", "hello"},
		{"non-latin dropped", "日本語 title", "title"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.input))
		})
	}
}
