package menu

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ImVILLS/neocash/internal/repl/console"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when there is no interactive terminal to draw on.
var ErrNotTerminal = errors.New("menu: input is not a terminal")

// Terminal hands out exclusive use of the screen and keyboard.
type Terminal interface {
	Acquire() (Session, error)
}

// Session is an acquired terminal. Release must be called exactly once per
// successful Acquire; calling it again is harmless.
type Session interface {
	Input() io.Reader
	Output() io.Writer
	// Size returns the screen size, or zeros when it is unknown.
	Size() (width, height int)
	Release() error
}

// TTY is the interactive terminal shared with the line editor. Acquiring it
// takes the console away from the editor and switches the terminal to raw
// mode.
type TTY struct {
	Console *console.Console
	Fd      int
	Out     io.Writer
}

var _ Terminal = (*TTY)(nil)

func (t *TTY) Acquire() (Session, error) {
	if !term.IsTerminal(t.Fd) {
		return nil, ErrNotTerminal
	}

	lease := t.Console.Acquire()
	state, err := term.MakeRaw(t.Fd)
	if err != nil {
		lease.Release()
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}

	return &ttySession{
		fd:    t.Fd,
		state: state,
		lease: lease,
		out:   t.Out,
	}, nil
}

type ttySession struct {
	fd    int
	state *term.State
	lease *console.Lease
	out   io.Writer

	once sync.Once
	err  error
}

func (s *ttySession) Input() io.Reader  { return s.lease }
func (s *ttySession) Output() io.Writer { return s.out }

func (s *ttySession) Size() (int, int) {
	width, height, err := term.GetSize(s.fd)
	if err != nil {
		return 0, 0
	}
	return width, height
}

func (s *ttySession) Release() error {
	s.once.Do(func() {
		s.err = term.Restore(s.fd, s.state)
		s.lease.Release()
	})
	return s.err
}
