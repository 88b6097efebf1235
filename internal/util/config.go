package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	HomeEnv        = "PLATYPUS_HOME"
	ConfigFileName = "config.toml"
)

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	PlatypusHome string `toml:"-"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	DebugAST       bool   `toml:"debug_ast"`
	DebugASTFormat string `toml:"debug_ast_format"`

	MaxDepth int `toml:"max_depth"`

	History HistoryConfig `toml:"history"`
}

// HistoryConfig controls the REPL journal. An empty DSN disables it.
type HistoryConfig struct {
	Driver     string `toml:"driver"`
	DSN        string `toml:"dsn"`
	MaxEntries int    `toml:"max_entries"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		LogLevel:       "error",
		DebugASTFormat: "json",
		MaxDepth:       10000,
		History: HistoryConfig{
			Driver:     "sqlite3",
			MaxEntries: 1000,
		},
		PlatypusHome: os.Getenv(HomeEnv),
	}
}

// ConfigPath picks the file to load: explicit wins, otherwise
// $PLATYPUS_HOME/config.toml when PLATYPUS_HOME is set.
func (c Configuration) ConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if c.PlatypusHome != "" {
		return filepath.Join(c.PlatypusHome, ConfigFileName)
	}
	return ""
}

// LoadConfiguration overlays the TOML file at path onto base. A missing file
// is only an error when required is set.
func LoadConfiguration(base Configuration, path string, required bool) (Configuration, error) {
	if path == "" {
		return base, nil
	}

	cfg := base
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return base, nil
		}
		return base, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return base, fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}
	return cfg, nil
}
