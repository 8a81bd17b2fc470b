package completion

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind tells which candidate universe a completion request draws from.
type Kind int

const (
	// CommandToken completes executable names from the search path.
	CommandToken Kind = iota
	// PathToken completes filesystem entries.
	PathToken
)

func (k Kind) String() string {
	switch k {
	case CommandToken:
		return "command"
	case PathToken:
		return "path"
	default:
		return "unknown"
	}
}

// shellMetacharacters mark a token as part of a pipeline or command list.
const shellMetacharacters = "|&;"

// Classification is the per-request decision of the context classifier.
type Classification struct {
	Kind Kind
	// Prefix is the text before the cursor that candidates must extend.
	Prefix string
}

// Classify inspects the text before the cursor. Path completion applies when
// the cursor sits inside a token free of shell metacharacters; the prefix is
// then that last token. Every other case completes a command name against the
// whole text before the cursor.
func Classify(line string, pos int) Classification {
	text := line[:clampCursor(line, pos)]

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return Classification{Kind: CommandToken, Prefix: text}
	}

	last := tokens[len(tokens)-1]
	if !endsWithSpace(text) && !strings.ContainsAny(last, shellMetacharacters) {
		return Classification{Kind: PathToken, Prefix: last}
	}

	// The prefix is the whole text here, not the last token.
	return Classification{Kind: CommandToken, Prefix: text}
}

func endsWithSpace(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	return size > 0 && unicode.IsSpace(r)
}

func clampCursor(line string, pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(line) {
		return len(line)
	}
	return pos
}
