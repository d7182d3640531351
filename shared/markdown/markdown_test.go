package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tp := New()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "emphasis",
			input:    "learned **goroutines** and *channels*",
			contains: []string{"<strong>goroutines</strong>", "<em>channels</em>"},
		},
		{
			name:     "strikethrough",
			input:    "~~mutex~~",
			contains: []string{"<del>mutex</del>"},
		},
		{
			name:     "code span",
			input:    "use `go test`",
			contains: []string{"<code>go test</code>"},
		},
		{
			name:     "script is stripped",
			input:    "hello <script>alert(1)</script>",
			contains: []string{"hello"},
			excludes: []string{"<script", "alert(1)"},
		},
		{
			name:     "event handlers are stripped",
			input:    `<img src="x" onerror="alert(1)">`,
			excludes: []string{"onerror"},
		},
		{
			name:     "javascript links are stripped",
			input:    "[click](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
		{
			name:     "links get nofollow",
			input:    "see https://go.dev",
			contains: []string{`href="https://go.dev"`, `rel="nofollow`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tp.Render(tt.input)
			for _, c := range tt.contains {
				assert.Contains(t, out, c)
			}
			for _, e := range tt.excludes {
				assert.NotContains(t, out, e)
			}
		})
	}
}

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "", New().Render("   "))
}
