package executor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"mvdan.cc/sh/v3/interp"
)

type recorder struct {
	calls [][]string
}

func (r *recorder) middleware(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		r.calls = append(r.calls, append([]string(nil), args...))
		if len(args) > 0 && strings.HasPrefix(args[0], "fake-") {
			return nil
		}
		return next(ctx, args)
	}
}

func newTestExecutor(t *testing.T, editor string, handlers ...ExecMiddleware) (*REPLExecutor, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	exec, err := NewREPLExecutor(zaptest.NewLogger(t), Options{
		Editor:       editor,
		Stdin:        strings.NewReader(""),
		Stdout:       &stdout,
		Stderr:       &stderr,
		Env:          os.Environ(),
		ExecHandlers: handlers,
	})
	require.NoError(t, err)
	return exec, &stdout, &stderr
}

func TestExecute(t *testing.T) {
	exec, stdout, _ := newTestExecutor(t, "")

	code, err := exec.Execute(context.Background(), "echo hello world")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello world\n", stdout.String())
}

func TestExecute_ExitCode(t *testing.T) {
	exec, _, _ := newTestExecutor(t, "")

	code, err := exec.Execute(context.Background(), "(exit 7)")
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestExecute_ParseError(t *testing.T) {
	exec, _, _ := newTestExecutor(t, "")

	code, err := exec.Execute(context.Background(), "echo 'unterminated")
	assert.Error(t, err)
	assert.Equal(t, 1, code)
}

func TestExecute_CdChangesPwd(t *testing.T) {
	exec, _, _ := newTestExecutor(t, "")
	dir := t.TempDir()

	code, err := exec.Execute(context.Background(), "cd "+dir)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, dir, exec.Pwd())
}

func TestExecute_VariablesPersist(t *testing.T) {
	exec, stdout, _ := newTestExecutor(t, "")

	_, err := exec.Execute(context.Background(), "GREETING=hi")
	require.NoError(t, err)
	_, err = exec.Execute(context.Background(), "echo $GREETING")
	require.NoError(t, err)

	assert.Equal(t, "hi\n", stdout.String())
	assert.Equal(t, "hi", exec.GetEnv("GREETING"))
}

func TestExecute_ExitBuiltin(t *testing.T) {
	exec, _, _ := newTestExecutor(t, "")
	assert.False(t, exec.Exited())

	code, err := exec.Execute(context.Background(), "exit")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.True(t, exec.Exited())
}

func TestEditBuiltin_NoFile(t *testing.T) {
	rec := &recorder{}
	exec, _, stderr := newTestExecutor(t, "fake-editor", rec.middleware)

	code, err := exec.Execute(context.Background(), "edit")
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Equal(t, "edit: No file specified\n", stderr.String())
}

func TestEditBuiltin_LaunchesEditor(t *testing.T) {
	exec, _, _ := newTestExecutor(t, "vim")

	var launched []string
	handler := exec.editBuiltin("vim")(func(ctx context.Context, args []string) error {
		launched = args
		return nil
	})

	require.NoError(t, handler(context.Background(), []string{"edit", "notes.txt"}))
	assert.Equal(t, []string{"vim", "notes.txt"}, launched)
}

func TestEditBuiltin_DefaultsToNano(t *testing.T) {
	exec, _, _ := newTestExecutor(t, "")

	var launched []string
	handler := exec.editBuiltin("")(func(ctx context.Context, args []string) error {
		launched = args
		return nil
	})

	require.NoError(t, handler(context.Background(), []string{"edit", "a.txt", "ignored"}))
	assert.Equal(t, []string{"nano", "a.txt"}, launched)
}

func TestEditBuiltin_PassesOtherCommandsThrough(t *testing.T) {
	exec, _, _ := newTestExecutor(t, "vim")

	var launched []string
	handler := exec.editBuiltin("vim")(func(ctx context.Context, args []string) error {
		launched = args
		return nil
	})

	require.NoError(t, handler(context.Background(), []string{"editor", "x"}))
	assert.Equal(t, []string{"editor", "x"}, launched)
}

func TestExecHandlersRunBeforeBuiltins(t *testing.T) {
	rec := &recorder{}
	exec, _, _ := newTestExecutor(t, "", rec.middleware)

	code, err := exec.Execute(context.Background(), "fake-tool --flag")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, [][]string{{"fake-tool", "--flag"}}, rec.calls)
}

func TestRunScript(t *testing.T) {
	exec, stdout, _ := newTestExecutor(t, "")

	code, err := exec.RunScript(context.Background(), strings.NewReader("echo a\necho b\nfalse\n"), "stdin")
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Equal(t, "a\nb\n", stdout.String())
}

func TestRunScriptFile(t *testing.T) {
	exec, stdout, _ := newTestExecutor(t, "")
	path := filepath.Join(t.TempDir(), "s.sh")
	require.NoError(t, os.WriteFile(path, []byte("echo from file\n"), 0644))

	code, err := exec.RunScriptFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "from file\n", stdout.String())
}
