package history

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

func runWithHistory(t *testing.T, h *HistoryManager, command string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	runner, err := interp.New(
		interp.StdIO(nil, &stdout, &stderr),
		interp.ExecHandlers(NewHistoryCommandHandler(h)),
	)
	require.NoError(t, err)

	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	require.NoError(t, err)
	err = runner.Run(context.Background(), prog)
	return stdout.String(), stderr.String(), err
}

func TestHistoryCommand_List(t *testing.T) {
	h, _ := newTestManager(t)
	for _, cmd := range []string{"ls", "pwd", "echo hi"} {
		_, err := h.StartCommand(cmd, "/")
		require.NoError(t, err)
	}

	stdout, _, err := runWithHistory(t, h, "history")
	require.NoError(t, err)
	assert.Equal(t, "    1  ls\n    2  pwd\n    3  echo hi\n", stdout)
}

func TestHistoryCommand_Limit(t *testing.T) {
	h, _ := newTestManager(t)
	for _, cmd := range []string{"a", "b", "c"} {
		_, err := h.StartCommand(cmd, "/")
		require.NoError(t, err)
	}

	stdout, _, err := runWithHistory(t, h, "history 2")
	require.NoError(t, err)
	assert.Equal(t, "    2  b\n    3  c\n", stdout)
}

func TestHistoryCommand_Clear(t *testing.T) {
	h, _ := newTestManager(t)
	_, err := h.StartCommand("secret", "/")
	require.NoError(t, err)

	_, _, err = runWithHistory(t, h, "history -c")
	require.NoError(t, err)

	entries, err := h.GetRecentEntries("", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistoryCommand_BadArgument(t *testing.T) {
	h, _ := newTestManager(t)

	_, stderr, err := runWithHistory(t, h, "history abc")
	var status interp.ExitStatus
	require.ErrorAs(t, err, &status)
	assert.Equal(t, interp.ExitStatus(2), status)
	assert.Equal(t, "history: abc: numeric argument required\n", stderr)
}

func TestHistoryCommand_PassesThroughOtherCommands(t *testing.T) {
	h, _ := newTestManager(t)

	stdout, _, err := runWithHistory(t, h, "echo ok")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", stdout)
}
