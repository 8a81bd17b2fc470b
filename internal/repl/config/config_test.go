package config

import (
	"path/filepath"
	"testing"

	"github.com/ImVILLS/neocash/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "[$time] $user@$host:$path $status_icon ", cfg.Prompt.Template)
	assert.Equal(t, PathShort, cfg.Prompt.PathMode)
	assert.Equal(t, "$green✓$reset", cfg.Prompt.StatusIconSuccess)
	assert.Equal(t, "$red✗$reset", cfg.Prompt.StatusIconError)
	assert.True(t, cfg.Prompt.ShowTime)
	assert.True(t, cfg.Prompt.ShowUser)
	assert.True(t, cfg.Prompt.ShowHost)
	assert.Equal(t, "nano", cfg.Prompt.DefaultEditor)
	assert.Equal(t, 1000, cfg.HistorySize)
	assert.Equal(t, "~/.local/share/ncash/history.db", cfg.HistoryFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Completion.Menu)
}

func TestDefaultConfig_Colors(t *testing.T) {
	cfg := DefaultConfig()

	assert.Len(t, cfg.Colors, 21)
	assert.Equal(t, "\x1b[0m", cfg.Colors["reset"])
	assert.Equal(t, "\x1b[31m", cfg.Colors["red"])
	assert.Equal(t, "\x1b[41m", cfg.Colors["bg_red"])
	assert.Equal(t, "\x1b[9m", cfg.Colors["strikethrough"])
}

func TestDefaultConfig_ReturnsIndependentCopies(t *testing.T) {
	a := DefaultConfig()
	a.Colors["red"] = "changed"

	b := DefaultConfig()
	assert.Equal(t, "\x1b[31m", b.Colors["red"])
}

func TestPathModeValid(t *testing.T) {
	for _, mode := range []PathMode{PathFull, PathShort, PathShortAll, PathCurrent} {
		assert.True(t, mode.Valid(), string(mode))
	}
	assert.False(t, PathMode("tiny").Valid())
	assert.False(t, PathMode("").Valid())
}

func TestHistoryPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	core.ResetPaths()
	t.Cleanup(core.ResetPaths)

	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join(home, ".local", "share", "ncash", "history.db"), cfg.HistoryPath())

	cfg.HistoryFile = "/var/lib/ncash/history.db"
	assert.Equal(t, "/var/lib/ncash/history.db", cfg.HistoryPath())
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	core.ResetPaths()
	t.Cleanup(core.ResetPaths)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, "a", "b"), ExpandHome("~/a/b"))
	assert.Equal(t, "~user/a", ExpandHome("~user/a"))
	assert.Equal(t, "relative/path", ExpandHome("relative/path"))
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Prompt.PathMode = "bogus"
	cfg.HistorySize = -5
	cfg.HistoryFile = ""

	errs := cfg.validate()
	require.Len(t, errs, 2)
	assert.Equal(t, PathShort, cfg.Prompt.PathMode)
	assert.Equal(t, 1000, cfg.HistorySize)
	assert.Equal(t, "~/.local/share/ncash/history.db", cfg.HistoryFile)
}
