package menu

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// State is the selection state of an open menu. The zero value is an empty
// menu.
type State struct {
	items    []string
	filter   string
	filtered []string
	selected int
}

// NewState opens a menu over a sorted copy of items with an empty filter.
func NewState(items []string) *State {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)

	s := &State{items: sorted}
	s.refresh()
	return s
}

// Filter returns the prefix every visible item starts with.
func (s *State) Filter() string { return s.filter }

// Filtered returns the visible items in order.
func (s *State) Filtered() []string { return s.filtered }

// Selected returns the index of the highlighted row in Filtered.
func (s *State) Selected() int { return s.selected }

// Empty reports whether the filter leaves nothing to choose from.
func (s *State) Empty() bool { return len(s.filtered) == 0 }

// Current returns the highlighted item.
func (s *State) Current() (string, bool) {
	if s.Empty() {
		return "", false
	}
	return s.filtered[s.selected], true
}

func (s *State) Up() {
	s.selected = max(0, s.selected-1)
}

func (s *State) Down() {
	s.selected = max(0, min(len(s.filtered)-1, s.selected+1))
}

// Append extends the filter and moves the highlight back to the first row.
func (s *State) Append(runes ...rune) {
	if len(runes) == 0 {
		return
	}
	s.filter += string(runes)
	s.selected = 0
	s.refresh()
}

// Backspace drops the last character of the filter.
func (s *State) Backspace() {
	if s.filter == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(s.filter)
	s.filter = s.filter[:len(s.filter)-size]
	s.selected = 0
	s.refresh()
}

func (s *State) refresh() {
	s.filtered = lo.Filter(s.items, func(item string, _ int) bool {
		return strings.HasPrefix(item, s.filter)
	})
	s.selected = max(0, min(len(s.filtered)-1, s.selected))
}
