package appconfig

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pkt.systems/blackboard/internal/kv"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BLACKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("state_dir", cfg.StateDir)
	v.SetDefault("storage.driver", cfg.Storage.Driver)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("control.enabled", cfg.Control.Enabled)
	v.SetDefault("control.addr", cfg.Control.Addr)
	v.SetDefault("editor.debounce_ms", cfg.Editor.DebounceMS)
	v.SetDefault("editor.highlight_style", cfg.Editor.HighlightStyle)
	v.SetDefault("editor.preview", cfg.Editor.Preview)
	v.SetDefault("formatters.search_paths", cfg.Formatters.SearchPaths)
	v.SetDefault("formatters.ruff", cfg.Formatters.Ruff)
	v.SetDefault("formatters.sqlformat", cfg.Formatters.SQLFormat)
	v.SetDefault("formatters.prettier", cfg.Formatters.Prettier)
	v.SetDefault("logging.file", cfg.Logging.File)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch kv.Driver(cfg.Storage.Driver) {
	case kv.DriverFile, kv.DriverSQLite:
		if strings.TrimSpace(cfg.Storage.Path) == "" {
			return fmt.Errorf("storage.path is required for driver %q", cfg.Storage.Driver)
		}
	case kv.DriverMemory:
	default:
		return fmt.Errorf("unsupported storage.driver %q", cfg.Storage.Driver)
	}
	if cfg.Editor.DebounceMS < 0 {
		return fmt.Errorf("editor.debounce_ms must not be negative")
	}
	if cfg.Control.Enabled {
		if err := validateControlAddr(cfg.Control.Addr); err != nil {
			return err
		}
	}
	return nil
}

// validateControlAddr only accepts loopback hosts; the control plane has no
// authentication.
func validateControlAddr(addr string) error {
	host, port, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err != nil {
		return fmt.Errorf("control.addr: %w", err)
	}
	if port == "" {
		return fmt.Errorf("control.addr must include a port")
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("control.addr must be a loopback address, got %q", host)
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.StateDir = expandEnv(cfg.StateDir)
	cfg.Storage.Path = expandEnv(cfg.Storage.Path)
	cfg.Logging.File = expandEnv(cfg.Logging.File)
	cfg.Formatters.Ruff = expandEnv(cfg.Formatters.Ruff)
	cfg.Formatters.SQLFormat = expandEnv(cfg.Formatters.SQLFormat)
	cfg.Formatters.Prettier = expandEnv(cfg.Formatters.Prettier)
	for i, p := range cfg.Formatters.SearchPaths {
		cfg.Formatters.SearchPaths[i] = expandEnv(p)
	}
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

func msDuration(ms int) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
