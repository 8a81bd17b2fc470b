package bash

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/interp"
)

func newRunner(t *testing.T, stdout *bytes.Buffer) *interp.Runner {
	t.Helper()
	runner, err := interp.New(interp.StdIO(nil, stdout, stdout))
	require.NoError(t, err)
	return runner
}

func TestRunBashCommand(t *testing.T) {
	var out bytes.Buffer
	runner := newRunner(t, &out)

	code, err := RunBashCommand(context.Background(), runner, "echo hello")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello\n", out.String())
}

func TestRunBashCommand_ExitStatus(t *testing.T) {
	var out bytes.Buffer
	runner := newRunner(t, &out)

	code, err := RunBashCommand(context.Background(), runner, "false")
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	code, err = RunBashCommand(context.Background(), runner, "(exit 42)")
	require.NoError(t, err)
	assert.Equal(t, 42, code)
}

func TestRunBashCommand_ParseError(t *testing.T) {
	var out bytes.Buffer
	runner := newRunner(t, &out)

	code, err := RunBashCommand(context.Background(), runner, "if then")
	assert.Error(t, err)
	assert.Equal(t, 1, code)
}

func TestRunBashCommand_StatePersists(t *testing.T) {
	var out bytes.Buffer
	runner := newRunner(t, &out)
	dir := t.TempDir()

	_, err := RunBashCommand(context.Background(), runner, "cd "+dir+" && FOO=bar")
	require.NoError(t, err)
	_, err = RunBashCommand(context.Background(), runner, "echo $FOO")
	require.NoError(t, err)

	assert.Equal(t, dir, runner.Dir)
	assert.Equal(t, "bar\n", out.String())
}

func TestRunBashScriptFromFile(t *testing.T) {
	var out bytes.Buffer
	runner := newRunner(t, &out)

	script := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(script, []byte("echo one\necho two\n"), 0644))

	require.NoError(t, RunBashScriptFromFile(context.Background(), runner, script))
	assert.Equal(t, "one\ntwo\n", out.String())
}

func TestRunBashScriptFromFile_Missing(t *testing.T) {
	var out bytes.Buffer
	runner := newRunner(t, &out)

	err := RunBashScriptFromFile(context.Background(), runner, filepath.Join(t.TempDir(), "nope.sh"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunBashScriptFromReader(t *testing.T) {
	var out bytes.Buffer
	runner := newRunner(t, &out)

	err := RunBashScriptFromReader(context.Background(), runner, strings.NewReader("x=1; echo $((x+1))"), "inline")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out.String())
}

func TestExitCode(t *testing.T) {
	code, err := ExitCode(nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = ExitCode(interp.ExitStatus(3))
	assert.NoError(t, err)
	assert.Equal(t, 3, code)

	boom := errors.New("boom")
	code, err = ExitCode(boom)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, code)
}
