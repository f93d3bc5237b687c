package appconfig

import (
	"os"
	"path/filepath"

	"pkt.systems/blackboard/internal/formatter"
	"pkt.systems/blackboard/internal/kv"
	"pkt.systems/blackboard/internal/render"
	"pkt.systems/blackboard/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int              `mapstructure:"config_version" yaml:"config_version"`
	StateDir      string           `mapstructure:"state_dir" yaml:"state_dir"`
	Storage       StorageConfig    `mapstructure:"storage" yaml:"storage"`
	Control       ControlConfig    `mapstructure:"control" yaml:"control"`
	Editor        EditorConfig     `mapstructure:"editor" yaml:"editor"`
	Formatters    FormattersConfig `mapstructure:"formatters" yaml:"formatters"`
	Logging       LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// DefaultControlAddr is the loopback control plane address.
const DefaultControlAddr = "127.0.0.1:45678"

// StorageConfig selects the key/value backend for editor state.
type StorageConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	Path   string `mapstructure:"path" yaml:"path"`
}

// ControlConfig configures the loopback HTTP control plane.
type ControlConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// EditorConfig controls rendering behavior.
type EditorConfig struct {
	DebounceMS     int    `mapstructure:"debounce_ms" yaml:"debounce_ms"`
	HighlightStyle string `mapstructure:"highlight_style" yaml:"highlight_style"`
	Preview        bool   `mapstructure:"preview" yaml:"preview"`
}

// FormattersConfig configures external formatter commands.
type FormattersConfig struct {
	SearchPaths []string `mapstructure:"search_paths" yaml:"search_paths"`
	Ruff        string   `mapstructure:"ruff" yaml:"ruff"`
	SQLFormat   string   `mapstructure:"sqlformat" yaml:"sqlformat"`
	Prettier    string   `mapstructure:"prettier" yaml:"prettier"`
}

// LoggingConfig controls where logs go. The TUI owns the terminal, so it
// logs to File.
type LoggingConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	stateDir := filepath.Join(home, ".blackboard", "state")
	return Config{
		ConfigVersion: CurrentConfigVersion,
		StateDir:      stateDir,
		Storage: StorageConfig{
			Driver: string(kv.DriverFile),
			Path:   filepath.Join(stateDir, "state.json"),
		},
		Control: ControlConfig{
			Enabled: true,
			Addr:    DefaultControlAddr,
		},
		Editor: EditorConfig{
			DebounceMS:     int(schema.DefaultDebounceInterval.Milliseconds()),
			HighlightStyle: render.DefaultStyle,
			Preview:        true,
		},
		Formatters: FormattersConfig{
			SearchPaths: append([]string(nil), formatter.DefaultSearchPaths...),
			Ruff:        "ruff",
			SQLFormat:   "sqlformat",
			Prettier:    "prettier",
		},
		Logging: LoggingConfig{
			File: filepath.Join(stateDir, "blackboard.log"),
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".blackboard", "config.yaml"), nil
}

// ServiceConfig converts editor settings into the core service config.
func (c Config) ServiceConfig() schema.ServiceConfig {
	return schema.ServiceConfig{DebounceInterval: msDuration(c.Editor.DebounceMS)}
}

// FormatterConfig converts formatter settings for the formatter registry.
func (c Config) FormatterConfig() formatter.Config {
	return formatter.Config{
		SearchPaths: c.Formatters.SearchPaths,
		Ruff:        c.Formatters.Ruff,
		SQLFormat:   c.Formatters.SQLFormat,
		Prettier:    c.Formatters.Prettier,
	}
}
