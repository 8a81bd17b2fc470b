package bash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// RunBashScriptFromReader parses and runs a bash script from an io.Reader.
// The script is executed in the provided runner (not a subshell).
func RunBashScriptFromReader(ctx context.Context, runner *interp.Runner, reader io.Reader, name string) error {
	prog, err := syntax.NewParser().Parse(reader, name)
	if err != nil {
		return err
	}
	return runner.Run(ctx, prog)
}

// RunBashScriptFromFile parses and runs a bash script from a file.
// The script is executed in the provided runner (not a subshell).
func RunBashScriptFromFile(ctx context.Context, runner *interp.Runner, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return RunBashScriptFromReader(ctx, runner, f, filePath)
}

// RunBashCommand parses command and runs it in runner with the runner's own
// stdio. A non-zero exit status is returned as the exit code, not an error.
func RunBashCommand(ctx context.Context, runner *interp.Runner, command string) (int, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return 1, fmt.Errorf("failed to parse bash command: %w", err)
	}
	return ExitCode(runner.Run(ctx, prog))
}

// ExitCode splits the result of a runner into an exit code and an execution
// error. Exit statuses are not errors.
func ExitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitStatus interp.ExitStatus
	if errors.As(err, &exitStatus) {
		return int(exitStatus), nil
	}
	return 1, err
}
