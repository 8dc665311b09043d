// Package config loads wldbg's startup configuration: an optional YAML
// file layered under environment variables and hardcoded defaults, per
// SPEC_FULL.md §4.K.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sandia-minimega/wldbg/pkg/dbglog"
)

// DefaultEditorEnv is the environment variable consulted by "edit" when
// no editor is named in the config file or overridden at the REPL.
const DefaultEditorEnv = "EDITOR"

// Config is the debugger's startup configuration (SPEC_FULL.md §3).
// Every field is optional in the YAML file; unset fields fall back to
// environment variables and then to hardcoded defaults.
type Config struct {
	// Socket overrides $WAYLAND_DISPLAY for server-mode socket naming.
	Socket string `yaml:"socket,omitempty"`
	// RuntimeDir overrides $XDG_RUNTIME_DIR.
	RuntimeDir string `yaml:"runtime_dir,omitempty"`
	// Editor overrides the editor environment variable consulted by
	// "edit" when the REPL command gives no explicit override.
	Editor string `yaml:"editor,omitempty"`
	// Preload lists pass names installed on every connection in
	// addition to the interactive pass, in order.
	Preload []string `yaml:"preload,omitempty"`
	// LogLevel is one of "debug", "info", "warn", "error", "fatal".
	LogLevel string `yaml:"log_level,omitempty"`
	// LogFile, if set, is opened for append and added as a logger sink
	// alongside stderr.
	LogFile string `yaml:"log_file,omitempty"`
}

// ConfigEnv names the environment variable giving the path to the
// optional YAML config file, per SPEC_FULL.md §6.
const ConfigEnv = "WLDBG_CONFIG"

// Load reads the config file named by path (or $WLDBG_CONFIG if path is
// empty), layers environment variable fallbacks over it, and returns the
// resolved Config. A missing file is not an error -- Load falls back
// entirely to environment variables and defaults. A malformed file is
// fatal per SPEC_FULL.md §7 and is returned as an error for the caller to
// report and exit on before any socket is touched.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}

	cfg := &Config{}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if _, err := dbglog.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if cfg.Socket == "" {
		cfg.Socket = os.Getenv("WAYLAND_DISPLAY")
	}
	if cfg.RuntimeDir == "" {
		cfg.RuntimeDir = os.Getenv("XDG_RUNTIME_DIR")
	}
	if cfg.Editor == "" {
		cfg.Editor = os.Getenv(DefaultEditorEnv)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("WLDBG_LOG_LEVEL")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = os.Getenv("WLDBG_LOG")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}
