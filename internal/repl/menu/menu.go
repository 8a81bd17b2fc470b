// Package menu implements the full-screen picker used to disambiguate
// completion candidates.
package menu

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Menu shows a full-screen list on a Terminal and lets the user narrow it
// down by typing a prefix.
type Menu struct {
	terminal Terminal
	logger   *zap.Logger
}

// New creates a Menu drawing on terminal.
func New(terminal Terminal, logger *zap.Logger) *Menu {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Menu{
		terminal: terminal,
		logger:   logger,
	}
}

// Select shows items and blocks until the user confirms one or cancels.
// Failures to drive the terminal are logged and reported as a cancel.
func (m *Menu) Select(items []string) (string, bool) {
	choice, ok, err := m.show(items)
	if err != nil {
		m.logger.Warn("completion menu aborted", zap.Error(err))
		return "", false
	}
	return choice, ok
}

func (m *Menu) show(items []string) (choice string, ok bool, err error) {
	if len(items) == 0 {
		return "", false, nil
	}

	session, err := m.terminal.Acquire()
	if err != nil {
		return "", false, err
	}
	defer func() {
		if releaseErr := session.Release(); releaseErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to restore terminal: %w", releaseErr))
			choice, ok = "", false
		}
	}()

	width, height := session.Size()
	program := tea.NewProgram(
		NewModel(items, width, height),
		tea.WithAltScreen(),
		tea.WithInput(session.Input()),
		tea.WithOutput(session.Output()),
		tea.WithoutSignalHandler(),
	)

	final, err := program.Run()
	if err != nil {
		return "", false, err
	}

	model, isModel := final.(Model)
	if !isModel {
		return "", false, fmt.Errorf("unexpected menu model %T", final)
	}

	choice, ok = model.Result()
	m.logger.Debug("completion menu closed",
		zap.Bool("confirmed", ok),
		zap.String("filter", model.State().Filter()),
	)
	return choice, ok, nil
}
