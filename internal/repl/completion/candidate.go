// Package completion decides which tab completion candidates exist for a
// partially typed command line. Candidates come from the search path or from
// the filesystem; when more than one matches, the user narrows them through a
// Selector before control returns to the line editor.
package completion

// Candidate is a single completion option.
type Candidate struct {
	// Display is the text shown in candidate lists.
	Display string
	// Replacement is the text spliced into the line at the replacement start.
	Replacement string
}

// Completer is the capability the line editor invokes on Tab.
type Completer interface {
	// Complete returns the byte offset in line where the candidates replace
	// the text up to pos, along with the candidates themselves.
	Complete(line string, pos int) (int, []Candidate)
}

// Selector lets the user pick at most one item out of a list. It returns
// false when the user cancels or the selection could not be shown.
type Selector interface {
	Select(items []string) (string, bool)
}
