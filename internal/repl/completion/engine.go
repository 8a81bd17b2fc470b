package completion

import (
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Engine is the Completer used by the shell. It classifies the cursor
// context, enumerates candidates from its Source, and hands ambiguous results
// to its Selector.
type Engine struct {
	source   Source
	selector Selector
	pwd      func() string
	logger   *zap.Logger
}

var _ Completer = (*Engine)(nil)

// NewEngine creates an Engine. selector may be nil, in which case ambiguous
// results are returned to the editor unresolved. pwd supplies the directory
// relative paths are resolved against.
func NewEngine(source Source, selector Selector, pwd func() string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pwd == nil {
		pwd = func() string { return "." }
	}
	return &Engine{
		source:   source,
		selector: selector,
		pwd:      pwd,
		logger:   logger,
	}
}

// Complete implements Completer.
func (e *Engine) Complete(line string, pos int) (int, []Candidate) {
	pos = clampCursor(line, pos)
	class := Classify(line, pos)

	var candidates []Candidate
	switch class.Kind {
	case PathToken:
		candidates = e.source.ListPathEntries(e.pwd(), class.Prefix)
	default:
		candidates = e.commandCandidates(class.Prefix)
	}

	e.logger.Debug("completion requested",
		zap.Stringer("kind", class.Kind),
		zap.String("prefix", class.Prefix),
		zap.Int("candidates", len(candidates)),
	)

	if len(candidates) > 1 && e.selector != nil {
		items := lo.Map(candidates, func(c Candidate, _ int) string {
			return c.Display
		})
		if choice, ok := e.selector.Select(items); ok {
			e.logger.Debug("completion selected", zap.String("choice", choice))
			candidates = []Candidate{{Display: choice, Replacement: choice}}
		}
	}

	return pos - len(class.Prefix), candidates
}

func (e *Engine) commandCandidates(prefix string) []Candidate {
	return lo.FilterMap(e.source.ListExecutables(), func(name string, _ int) (Candidate, bool) {
		return Candidate{Display: name, Replacement: name}, strings.HasPrefix(name, prefix)
	})
}
