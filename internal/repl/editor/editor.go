// Package editor adapts the readline line editor to the shell's completion
// engine and input plumbing.
package editor

import (
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ImVILLS/neocash/internal/repl/completion"
	"github.com/chzyer/readline"
)

// ErrInterrupt is returned by Readline when the user presses Ctrl+C.
var ErrInterrupt = errors.New("interrupted")

// Options configures an Editor.
type Options struct {
	// Input is the keyboard stream. It is closed when the editor closes.
	Input  io.ReadCloser
	Stdout io.Writer
	Stderr io.Writer

	Completer    completion.Completer
	HistoryLimit int
}

// Editor reads lines with history and tab completion.
type Editor struct {
	rl *readline.Instance
}

func New(opts Options) (*Editor, error) {
	cfg := &readline.Config{
		Stdin:                  opts.Input,
		Stdout:                 opts.Stdout,
		Stderr:                 opts.Stderr,
		HistoryLimit:           opts.HistoryLimit,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
	}
	if opts.Completer != nil {
		cfg.AutoComplete = &autoCompleter{completer: opts.Completer}
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}
	return &Editor{rl: rl}, nil
}

// Readline shows prompt and returns the next line. It returns ErrInterrupt
// on Ctrl+C and io.EOF on Ctrl+D or when the input is closed.
func (e *Editor) Readline(prompt string) (string, error) {
	e.rl.SetPrompt(prompt)
	line, err := e.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupt
	}
	return line, err
}

// AddHistory appends line to the in-memory history.
func (e *Editor) AddHistory(line string) error {
	return e.rl.SaveHistory(line)
}

func (e *Editor) Close() error {
	return e.rl.Close()
}

// autoCompleter bridges readline, which can only insert text at the cursor,
// and a Completer, which reports a replacement for a span of the line.
type autoCompleter struct {
	completer completion.Completer
}

var _ readline.AutoCompleter = (*autoCompleter)(nil)

func (a *autoCompleter) Do(line []rune, pos int) ([][]rune, int) {
	if pos < 0 || pos > len(line) {
		return nil, 0
	}

	text := string(line)
	cursor := len(string(line[:pos]))
	start, candidates := a.completer.Complete(text, cursor)
	if start < 0 || start > cursor || len(candidates) == 0 {
		return nil, 0
	}

	typed := text[start:cursor]
	var suffixes [][]rune
	length := 0
	for _, candidate := range candidates {
		overlap := overlapOf(typed, candidate.Replacement)
		suffixes = append(suffixes, []rune(candidate.Replacement[len(overlap):]))
		length = utf8.RuneCountInString(overlap)
	}
	return suffixes, length
}

// overlapOf returns the tail of typed that replacement already starts with.
// A replacement either extends the whole typed text or, for paths, only the
// text after its last separator.
func overlapOf(typed, replacement string) string {
	if strings.HasPrefix(replacement, typed) {
		return typed
	}
	leaf := typed[strings.LastIndexByte(typed, '/')+1:]
	if strings.HasPrefix(replacement, leaf) {
		return leaf
	}
	return ""
}
