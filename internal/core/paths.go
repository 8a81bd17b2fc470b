package core

import (
	"os"
	"path/filepath"
)

type Paths struct {
	HomeDir          string
	ConfigDir        string
	DataDir          string
	LogFile          string
	HistoryFile      string
	VersionCacheFile string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		configDir, err := os.UserConfigDir()
		if err != nil {
			configDir = filepath.Join(homeDir, ".config")
		}

		cacheDir, err := os.UserCacheDir()
		if err != nil {
			cacheDir = filepath.Join(homeDir, ".cache")
		}

		dataDir := filepath.Join(homeDir, ".local", "share", "ncash")

		defaultPaths = &Paths{
			HomeDir:          homeDir,
			ConfigDir:        filepath.Join(configDir, "neocash"),
			DataDir:          dataDir,
			LogFile:          filepath.Join(dataDir, "ncash.log"),
			HistoryFile:      filepath.Join(dataDir, "history.db"),
			VersionCacheFile: filepath.Join(cacheDir, "neocash", "version_cache"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func ConfigDir() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigDir
}

// DefaultConfigFile is the TOML file loaded when no --config-path is given.
func DefaultConfigFile() string {
	ensureDefaultPaths()
	return filepath.Join(defaultPaths.ConfigDir, "ncashrc")
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func HistoryFile() string {
	ensureDefaultPaths()
	return defaultPaths.HistoryFile
}

func VersionCacheFile() string {
	ensureDefaultPaths()
	return defaultPaths.VersionCacheFile
}

// ResetPaths clears the cached paths, forcing them to be reinitialized.
// This is primarily used for testing purposes.
func ResetPaths() {
	defaultPaths = nil
}
