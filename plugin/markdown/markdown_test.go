package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "heading",
			content: "# Training small models\nNotes on fine-tuning.",
			want:    "Training small models",
		},
		{
			name:    "heading after paragraph",
			content: "intro line\n\n## Section",
			want:    "Section",
		},
		{
			name:    "first paragraph line",
			content: "Goroutines are **cheap**, mostly\nbut channels are not free.",
			want:    "Goroutines are cheap, mostly",
		},
		{
			name:    "inline code",
			content: "Use `errgroup` for fan-out",
			want:    "Use errgroup for fan-out",
		},
		{
			name:    "empty",
			content: "",
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Title(tt.content))
		})
	}
}

func TestTitleTruncates(t *testing.T) {
	title := Title(strings.Repeat("a", 80))
	require.Len(t, []rune(title), TitleMaxLength)
	require.True(t, strings.HasSuffix(title, "..."))

	// Multi-byte runes are not split.
	title = Title(strings.Repeat("标", 60))
	require.Equal(t, TitleMaxLength, len([]rune(title)))
}
