// Package repl provides the interactive read-execute loop of the ncash shell.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ImVILLS/neocash/internal/history"
	"github.com/ImVILLS/neocash/internal/repl/config"
	"github.com/ImVILLS/neocash/internal/repl/console"
	"github.com/ImVILLS/neocash/internal/repl/editor"
	"github.com/ImVILLS/neocash/internal/repl/prompt"
	"github.com/ImVILLS/neocash/internal/styles"
	"go.uber.org/zap"
)

// LineReader reads command lines from the user.
type LineReader interface {
	Readline(prompt string) (string, error)
	AddHistory(line string) error
	Close() error
}

// Executor runs command lines.
type Executor interface {
	Execute(ctx context.Context, command string) (int, error)
	Pwd() string
	Exited() bool
}

// Options configures a REPL.
type Options struct {
	Config   *config.ShellConfig
	Logger   *zap.Logger
	Editor   LineReader
	Executor Executor
	// History is optional; without it commands are not recorded.
	History *history.HistoryManager
	// Console, when set, is held while a command runs so the editor does
	// not read keystrokes meant for the command.
	Console *console.Console

	Stdout io.Writer
	Stderr io.Writer
}

// REPL is an interactive shell session.
type REPL struct {
	config   *config.ShellConfig
	logger   *zap.Logger
	editor   LineReader
	executor Executor
	history  *history.HistoryManager
	console  *console.Console
	stdout   io.Writer
	stderr   io.Writer

	lastExitCode int
}

// NewREPL creates a session. Editor and Executor are required.
func NewREPL(opts Options) (*REPL, error) {
	if opts.Editor == nil {
		return nil, errors.New("repl: no line editor")
	}
	if opts.Executor == nil {
		return nil, errors.New("repl: no executor")
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	return &REPL{
		config:   opts.Config,
		logger:   opts.Logger,
		editor:   opts.Editor,
		executor: opts.Executor,
		history:  opts.History,
		console:  opts.Console,
		stdout:   opts.Stdout,
		stderr:   opts.Stderr,
	}, nil
}

// Run reads and executes lines until the user exits, input ends, or ctx is
// cancelled. Cancelling ctx closes the editor to unblock a pending read.
func (r *REPL) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		r.logger.Debug("session cancelled, closing editor")
		if err := r.editor.Close(); err != nil {
			r.logger.Debug("failed to close editor", zap.Error(err))
		}
	})
	defer stop()

	r.loadHistory()

	for ctx.Err() == nil {
		ps := prompt.Render(r.config, prompt.Gather(r.lastExitCode, r.config, r.executor.Pwd()))

		line, err := r.editor.Readline(ps)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return nil
			case errors.Is(err, editor.ErrInterrupt):
				fmt.Fprintln(r.stdout, "Type 'exit' to quit")
				continue
			case errors.Is(err, io.EOF):
				return nil
			default:
				return fmt.Errorf("failed to read input: %w", err)
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if r.history != nil {
			if err := r.editor.AddHistory(line); err != nil {
				r.logger.Debug("failed to add editor history", zap.Error(err))
			}
		}

		if line == "exit" {
			return nil
		}

		r.execute(ctx, line)
		if r.executor.Exited() {
			return nil
		}
	}

	return nil
}

// LastExitCode returns the exit status of the most recent command.
func (r *REPL) LastExitCode() int {
	return r.lastExitCode
}

func (r *REPL) execute(ctx context.Context, line string) {
	var entry *history.HistoryEntry
	if r.history != nil {
		var err error
		entry, err = r.history.StartCommand(line, r.executor.Pwd())
		if err != nil {
			r.logger.Warn("failed to record command in history", zap.Error(err))
		}
	}

	exitCode, err := r.run(ctx, line)
	if err != nil {
		fmt.Fprintln(r.stderr, styles.ERROR("ncash: "+err.Error()))
	}
	r.lastExitCode = exitCode

	if entry != nil {
		if _, err := r.history.FinishCommand(entry, exitCode); err != nil {
			r.logger.Warn("failed to record exit code in history", zap.Error(err))
		}
	}
}

func (r *REPL) run(ctx context.Context, line string) (int, error) {
	if r.console != nil {
		hold := r.console.Hold()
		defer hold.Release()
	}
	return r.executor.Execute(ctx, line)
}

// loadHistory seeds the editor with the most recent recorded commands.
func (r *REPL) loadHistory() {
	if r.history == nil || r.config.HistorySize <= 0 {
		return
	}

	entries, err := r.history.GetRecentEntries("", r.config.HistorySize)
	if err != nil {
		r.logger.Warn("failed to load history", zap.Error(err))
		return
	}
	for _, entry := range entries {
		if err := r.editor.AddHistory(entry.Command); err != nil {
			r.logger.Debug("failed to add editor history", zap.Error(err))
		}
	}
	r.logger.Debug("loaded history", zap.Int("entries", len(entries)))
}
