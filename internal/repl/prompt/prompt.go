// Package prompt renders the shell prompt from its configured template.
package prompt

import (
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ImVILLS/neocash/internal/core"
	"github.com/ImVILLS/neocash/internal/repl/config"
	"github.com/samber/lo"
)

// Overridable for testing.
var (
	now         = time.Now
	hostname    = os.Hostname
	currentUser = user.Current
	homeDir     = core.HomeDir
)

// Context holds the values substituted into a prompt template.
type Context struct {
	Time       string
	LastExit   int
	Hostname   string
	Username   string
	Path       string
	StatusIcon string
}

// Gather collects the prompt values for the working directory pwd after a
// command finished with lastExit. Disabled fields are left empty.
func Gather(lastExit int, cfg *config.ShellConfig, pwd string) Context {
	ctx := Context{
		LastExit:   lastExit,
		Path:       FormatPath(pwd, cfg.Prompt.PathMode, homeDir()),
		StatusIcon: cfg.Prompt.StatusIconSuccess,
	}
	if lastExit != 0 {
		ctx.StatusIcon = cfg.Prompt.StatusIconError
	}

	if cfg.Prompt.ShowTime {
		ctx.Time = now().Format("15:04:05")
	}
	if cfg.Prompt.ShowUser {
		ctx.Username = username()
	}
	if cfg.Prompt.ShowHost {
		host, err := hostname()
		if err != nil || host == "" {
			host = "unknown"
		}
		ctx.Hostname = host
	}
	return ctx
}

func username() string {
	if u, err := currentUser(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}

// FormatPath shortens path according to mode.
func FormatPath(path string, mode config.PathMode, home string) string {
	if path == "" {
		return "?"
	}
	if home != "/" {
		home = strings.TrimSuffix(home, "/")
	}

	switch mode {
	case config.PathFull:
		return path

	case config.PathShortAll:
		return abbreviate(path, home)

	case config.PathCurrent:
		base := filepath.Base(path)
		if base == "/" || base == "." {
			return "?"
		}
		return base

	default:
		if isUnder(path, home) {
			return "~" + path[len(home):]
		}
		return path
	}
}

// abbreviate keeps the last component and the first character of every
// other component.
func abbreviate(path, home string) string {
	lead, rest := "", path
	switch {
	case isUnder(path, home):
		lead, rest = "~", path[len(home):]
	case strings.HasPrefix(path, "/"):
		lead = "/"
	}

	parts := strings.FieldsFunc(rest, func(r rune) bool { return r == '/' })
	for i := 0; i < len(parts)-1; i++ {
		r, _ := utf8.DecodeRuneInString(parts[i])
		parts[i] = string(r)
	}
	joined := strings.Join(parts, "/")

	switch {
	case lead == "~" && joined != "":
		return "~/" + joined
	case lead == "/":
		return "/" + joined
	case lead == "~":
		return "~"
	default:
		return joined
	}
}

func isUnder(path, home string) bool {
	if home == "" || home == "/" {
		return false
	}
	return path == home || strings.HasPrefix(path, home+"/")
}

// Render substitutes ctx and the configured colours into the template.
func Render(cfg *config.ShellConfig, ctx Context) string {
	result := cfg.Prompt.Template
	for _, sub := range []struct{ name, value string }{
		{"$time", ctx.Time},
		{"$err", strconv.Itoa(ctx.LastExit)},
		{"$host", ctx.Hostname},
		{"$user", ctx.Username},
		{"$path", ctx.Path},
		{"$status_icon", ctx.StatusIcon},
	} {
		result = strings.ReplaceAll(result, sub.name, sub.value)
	}

	// Longest names first so $bg_red is not consumed by $red.
	names := lo.Keys(cfg.Colors)
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		result = strings.ReplaceAll(result, "$"+name, cfg.Colors[name])
	}
	return result
}
