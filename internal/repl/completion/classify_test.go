package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		pos      int
		expected Classification
	}{
		{
			name:     "empty line completes commands",
			line:     "",
			pos:      0,
			expected: Classification{Kind: CommandToken, Prefix: ""},
		},
		{
			name:     "whitespace only line keeps the whitespace as prefix",
			line:     "  ",
			pos:      2,
			expected: Classification{Kind: CommandToken, Prefix: "  "},
		},
		{
			name:     "argument being typed completes a path",
			line:     "ls /usr/loc",
			pos:      11,
			expected: Classification{Kind: PathToken, Prefix: "/usr/loc"},
		},
		{
			name:     "single word being typed completes a path",
			line:     "gi",
			pos:      2,
			expected: Classification{Kind: PathToken, Prefix: "gi"},
		},
		{
			name:     "trailing space falls back to the whole line",
			line:     "ls ",
			pos:      3,
			expected: Classification{Kind: CommandToken, Prefix: "ls "},
		},
		{
			name:     "token after a spaced pipe is still a path",
			line:     "ls | gr",
			pos:      7,
			expected: Classification{Kind: PathToken, Prefix: "gr"},
		},
		{
			name:     "pipe inside the last token falls back to the whole line",
			line:     "ls |gr",
			pos:      6,
			expected: Classification{Kind: CommandToken, Prefix: "ls |gr"},
		},
		{
			name:     "ampersand inside the last token",
			line:     "make&&ec",
			pos:      8,
			expected: Classification{Kind: CommandToken, Prefix: "make&&ec"},
		},
		{
			name:     "semicolon inside the last token",
			line:     "cd /tmp;l",
			pos:      9,
			expected: Classification{Kind: CommandToken, Prefix: "cd /tmp;l"},
		},
		{
			name:     "mid-line cursor only looks at text before it",
			line:     "cat fo bar",
			pos:      6,
			expected: Classification{Kind: PathToken, Prefix: "fo"},
		},
		{
			name:     "cursor past the end is clamped",
			line:     "cat fo",
			pos:      42,
			expected: Classification{Kind: PathToken, Prefix: "fo"},
		},
		{
			name:     "tab counts as whitespace",
			line:     "ls\t",
			pos:      3,
			expected: Classification{Kind: CommandToken, Prefix: "ls\t"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.line, tt.pos))
		})
	}
}

// The metacharacter fallback completes against the whole line rather than the
// last token. This is long-standing behaviour kept as is; the test documents it.
func TestClassify_MetacharacterFallbackUsesWholeLine(t *testing.T) {
	line := "echo hi;gr"
	class := Classify(line, len(line))

	assert.Equal(t, CommandToken, class.Kind)
	assert.Equal(t, line, class.Prefix)
	assert.NotEqual(t, "gr", class.Prefix)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "command", CommandToken.String())
	assert.Equal(t, "path", PathToken.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
