// Package config resolves the runtime configuration from an optional YAML
// file and STATPANE_* environment variables, env winning over file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration.
type Config struct {
	// PollInterval is the refresh cadence of the widget.
	PollInterval time.Duration
	// GPUTimeout bounds the external GPU query on every cycle.
	GPUTimeout time.Duration
	// GPUToolPath, when set, is launched directly instead of running
	// tool discovery.
	GPUToolPath string
	// LogFile receives structured logs; the terminal itself is owned by
	// the widget.
	LogFile  string
	LogLevel string
	// LowerPriority drops the process priority at startup so the
	// monitor doesn't perturb the load it measures.
	LowerPriority bool
}

// fileConfig is the YAML shape of the optional config file. Durations are
// strings in time.ParseDuration syntax.
type fileConfig struct {
	PollInterval  string `yaml:"poll_interval"`
	GPUTimeout    string `yaml:"gpu_timeout"`
	GPUTool       string `yaml:"gpu_tool"`
	LogFile       string `yaml:"log_file"`
	LogLevel      string `yaml:"log_level"`
	LowerPriority *bool  `yaml:"lower_priority"`
}

// Load resolves the configuration: defaults, then the config file, then
// environment variables. A missing config file is normal; a malformed one
// is an error rather than a silent fallback.
func Load() (Config, error) {
	return loadFrom(DefaultConfigFile())
}

func loadFrom(configFile string) (Config, error) {
	var fc fileConfig
	if raw, err := os.ReadFile(configFile); err == nil {
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", configFile, err)
		}
	}

	cfg := Config{
		PollInterval:  resolveDuration("STATPANE_POLL_INTERVAL", fc.PollInterval, 250*time.Millisecond),
		GPUTimeout:    resolveDuration("STATPANE_GPU_TIMEOUT", fc.GPUTimeout, 2*time.Second),
		GPUToolPath:   resolveString("STATPANE_GPU_TOOL", fc.GPUTool, ""),
		LogFile:       resolveString("STATPANE_LOG_FILE", fc.LogFile, DefaultLogFile()),
		LogLevel:      strings.ToLower(resolveString("STATPANE_LOG_LEVEL", fc.LogLevel, "info")),
		LowerPriority: resolveBool("STATPANE_LOW_PRIORITY", fc.LowerPriority, true),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be > 0")
	}
	if c.GPUTimeout <= 0 {
		return errors.New("gpu timeout must be > 0")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.LogLevel)
	}
	return nil
}

// StateDir is where statpane keeps its own files (currently only logs).
func StateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".statpane")
}

// DefaultConfigFile is ~/.statpane/config.yaml.
func DefaultConfigFile() string {
	return filepath.Join(StateDir(), "config.yaml")
}

// DefaultLogFile is ~/.statpane/statpane.log.
func DefaultLogFile() string {
	return filepath.Join(StateDir(), "statpane.log")
}

func resolveString(envKey, fileValue, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v
	}
	if v := strings.TrimSpace(fileValue); v != "" {
		return v
	}
	return fallback
}

func resolveDuration(envKey, fileValue string, fallback time.Duration) time.Duration {
	raw := resolveString(envKey, fileValue, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func resolveBool(envKey string, fileValue *bool, fallback bool) bool {
	if v := strings.TrimSpace(strings.ToLower(os.Getenv(envKey))); v != "" {
		switch v {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	if fileValue != nil {
		return *fileValue
	}
	return fallback
}
