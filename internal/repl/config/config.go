// Package config provides configuration management for the ncash shell.
// Settings are read from a TOML, YAML or JSON file layered over built-in
// defaults.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ImVILLS/neocash/internal/core"
)

// PathMode selects how the working directory is shown in the prompt.
type PathMode string

const (
	PathFull     PathMode = "full"
	PathShort    PathMode = "short"
	PathShortAll PathMode = "short-all"
	PathCurrent  PathMode = "current"
)

// Valid reports whether m is a known mode.
func (m PathMode) Valid() bool {
	switch m {
	case PathFull, PathShort, PathShortAll, PathCurrent:
		return true
	}
	return false
}

type PromptConfig struct {
	// Template may reference $time, $err, $host, $user, $path, $status_icon
	// and any key of ShellConfig.Colors.
	Template          string   `koanf:"template"`
	PathMode          PathMode `koanf:"path_mode"`
	StatusIconSuccess string   `koanf:"status_icon_success"`
	StatusIconError   string   `koanf:"status_icon_error"`
	ShowTime          bool     `koanf:"show_time"`
	ShowUser          bool     `koanf:"show_user"`
	ShowHost          bool     `koanf:"show_host"`
	DefaultEditor     string   `koanf:"default_editor"`
}

type CompletionConfig struct {
	// Menu enables the full-screen picker for ambiguous completions.
	Menu bool `koanf:"menu"`
}

// ShellConfig holds all shell settings.
type ShellConfig struct {
	Prompt      PromptConfig      `koanf:"prompt"`
	Colors      map[string]string `koanf:"colors"`
	HistorySize int               `koanf:"history_size"`
	HistoryFile string            `koanf:"history_file"`
	LogLevel    string            `koanf:"log_level"`
	Completion  CompletionConfig  `koanf:"completion"`

	// ConfigPath is the file the configuration was loaded from.
	ConfigPath string `koanf:"-"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *ShellConfig {
	cfg, err := parseDefaults()
	if err != nil {
		panic(fmt.Sprintf("invalid built-in configuration: %v", err))
	}
	return cfg
}

// HistoryPath returns HistoryFile with a leading ~ expanded.
func (c *ShellConfig) HistoryPath() string {
	return ExpandHome(c.HistoryFile)
}

// ExpandHome replaces a leading "~" path component with the home directory.
func ExpandHome(path string) string {
	if path == "~" {
		return core.HomeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(core.HomeDir(), path[2:])
	}
	return path
}

func (c *ShellConfig) validate() []error {
	var errs []error
	defaults := DefaultConfig()

	if !c.Prompt.PathMode.Valid() {
		errs = append(errs, fmt.Errorf("prompt.path_mode: unknown mode %q", c.Prompt.PathMode))
		c.Prompt.PathMode = defaults.Prompt.PathMode
	}
	if c.HistorySize < 0 {
		errs = append(errs, fmt.Errorf("history_size: must not be negative, got %d", c.HistorySize))
		c.HistorySize = defaults.HistorySize
	}
	if c.HistoryFile == "" {
		c.HistoryFile = defaults.HistoryFile
	}
	return errs
}
