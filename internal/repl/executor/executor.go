// Package executor runs shell command lines for the ncash REPL on top of
// mvdan/sh, keeping working directory and variables between commands.
package executor

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ImVILLS/neocash/internal/bash"
	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// ExecMiddleware is a function that wraps an ExecHandlerFunc to provide
// additional functionality (e.g., command interception, logging).
type ExecMiddleware = func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc

// Options configures a REPLExecutor.
type Options struct {
	// Editor is the program launched by the edit builtin.
	Editor string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Env    []string

	// ExecHandlers run before the builtin handlers.
	ExecHandlers []ExecMiddleware
}

// REPLExecutor handles command execution for the REPL.
type REPLExecutor struct {
	runner *interp.Runner
	logger *zap.Logger
}

// NewREPLExecutor creates a new REPLExecutor. Unset streams default to the
// process stdio and an unset environment to the process environment.
func NewREPLExecutor(logger *zap.Logger, opts Options) (*REPLExecutor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Env == nil {
		opts.Env = os.Environ()
	}

	e := &REPLExecutor{
		logger: logger,
	}

	handlers := append([]ExecMiddleware{}, opts.ExecHandlers...)
	handlers = append(handlers, e.editBuiltin(opts.Editor))

	runner, err := interp.New(
		interp.Interactive(true),
		interp.Env(expand.ListEnviron(opts.Env...)),
		interp.StdIO(opts.Stdin, opts.Stdout, opts.Stderr),
		interp.ExecHandlers(handlers...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bash runner: %w", err)
	}
	e.runner = runner

	return e, nil
}

// Execute runs one command line and returns its exit status. The error is
// non-nil only when the line could not be run at all.
func (e *REPLExecutor) Execute(ctx context.Context, command string) (int, error) {
	code, err := bash.RunBashCommand(ctx, e.runner, command)
	if err != nil {
		e.logger.Debug("command failed", zap.String("command", command), zap.Error(err))
		return code, err
	}
	e.logger.Debug("command finished", zap.String("command", command), zap.Int("exitCode", code))
	return code, nil
}

// RunScript runs a whole script, as when commands are piped into the shell.
func (e *REPLExecutor) RunScript(ctx context.Context, reader io.Reader, name string) (int, error) {
	return bash.ExitCode(bash.RunBashScriptFromReader(ctx, e.runner, reader, name))
}

// RunScriptFile runs the script at path.
func (e *REPLExecutor) RunScriptFile(ctx context.Context, path string) (int, error) {
	return bash.ExitCode(bash.RunBashScriptFromFile(ctx, e.runner, path))
}

// Exited reports whether the exit builtin has been run.
func (e *REPLExecutor) Exited() bool {
	return e.runner.Exited()
}

// Pwd returns the current working directory.
func (e *REPLExecutor) Pwd() string {
	return e.runner.Dir
}

// GetEnv gets a shell variable value.
func (e *REPLExecutor) GetEnv(name string) string {
	if e.runner.Vars == nil {
		return ""
	}
	return e.runner.Vars[name].String()
}

// editBuiltin implements "edit <file>", which opens file in the configured
// editor.
func (e *REPLExecutor) editBuiltin(editor string) ExecMiddleware {
	if editor == "" {
		editor = "nano"
	}
	return func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			if len(args) == 0 || args[0] != "edit" {
				return next(ctx, args)
			}
			if len(args) < 2 {
				hc := interp.HandlerCtx(ctx)
				fmt.Fprintln(hc.Stderr, "edit: No file specified")
				return interp.ExitStatus(1)
			}
			e.logger.Debug("launching editor", zap.String("editor", editor), zap.String("file", args[1]))
			return next(ctx, []string{editor, args[1]})
		}
	}
}
