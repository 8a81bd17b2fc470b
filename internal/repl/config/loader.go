package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

//go:embed default.toml
var defaultConfig []byte

// Loader reads configuration files.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
	}
}

// LoadResult contains the result of loading a configuration file.
type LoadResult struct {
	Config *ShellConfig
	// Errors are problems that were recovered from by keeping defaults.
	Errors []error
}

// LoadFromFile loads configuration from path. A missing file is created with
// the defaults. A file that cannot be parsed leaves the defaults in place and
// is reported in LoadResult.Errors.
func (l *Loader) LoadFromFile(path string) (*LoadResult, error) {
	parser := parserFor(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		l.writeDefaults(path, parser)
		result := &LoadResult{Config: DefaultConfig()}
		result.Config.ConfigPath = path
		return result, nil
	}

	result, err := l.load(content, parser)
	if err != nil {
		return nil, err
	}
	result.Config.ConfigPath = path
	return result, nil
}

// LoadFromString loads configuration from a TOML document.
func (l *Loader) LoadFromString(source string) (*LoadResult, error) {
	return l.load([]byte(source), toml.Parser())
}

func (l *Loader) load(content []byte, parser koanf.Parser) (*LoadResult, error) {
	result := &LoadResult{
		Config: DefaultConfig(),
		Errors: []error{},
	}

	k, err := defaultsKoanf()
	if err != nil {
		return nil, err
	}

	if err := k.Load(rawbytes.Provider(content), parser); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("parse error: %w", err))
		return result, nil
	}

	cfg := &ShellConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("invalid configuration: %w", err))
		return result, nil
	}

	result.Errors = append(result.Errors, cfg.validate()...)
	result.Config = cfg

	l.logger.Debug("configuration loaded",
		zap.String("pathMode", string(cfg.Prompt.PathMode)),
		zap.Int("colors", len(cfg.Colors)),
		zap.Bool("completionMenu", cfg.Completion.Menu),
	)
	return result, nil
}

// writeDefaults creates path with the built-in configuration. Failure only
// means the next start tries again.
func (l *Loader) writeDefaults(path string, parser koanf.Parser) {
	content := defaultConfig
	if _, isTOML := parser.(*toml.TOML); !isTOML {
		k, err := defaultsKoanf()
		if err == nil {
			content, err = k.Marshal(parser)
		}
		if err != nil {
			l.logger.Warn("failed to encode default configuration", zap.Error(err))
			return
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		l.logger.Warn("failed to create config directory", zap.String("path", path), zap.Error(err))
		return
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		l.logger.Warn("failed to write default config", zap.String("path", path), zap.Error(err))
		return
	}
	l.logger.Info("created default config", zap.String("path", path))
}

func defaultsKoanf() (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(defaultConfig), toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load built-in configuration: %w", err)
	}
	return k, nil
}

func parseDefaults() (*ShellConfig, error) {
	k, err := defaultsKoanf()
	if err != nil {
		return nil, err
	}
	cfg := &ShellConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parserFor picks a parser from the file extension. Anything that is not
// YAML or JSON is read as TOML.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}
