package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Loader loads configuration from defaults, an optional JSON file and
// environment variables, in that precedence order.
type Loader struct {
	path      string
	validator *Validator
}

// NewLoader creates a loader. path may be empty, in which case only defaults
// and environment overrides apply.
func NewLoader(path string) *Loader {
	return &Loader{path: path, validator: NewValidator()}
}

// Load merges all sources and validates the result.
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	if l.path != "" {
		if err := l.loadFile(config); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config from %s: %w", l.path, err)
		}
	}

	l.applyEnvironmentOverrides(config)

	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

func (l *Loader) loadFile(config *Config) error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides applies env vars on top of file values. The
// upstream credential is only ever read from the environment or the file,
// never flags, so it stays out of shell history.
func (l *Loader) applyEnvironmentOverrides(config *Config) {
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		config.Upstream.APIKey = v
	}
	if v := os.Getenv("SINEMA_ADDR"); v != "" {
		config.Server.Addr = v
	}
	if v := os.Getenv("SINEMA_DEV_MODE"); v != "" {
		config.Server.DevMode = v == "1" || v == "true"
	}
	if v := os.Getenv("SINEMA_BASE_URL"); v != "" {
		config.Upstream.BaseURL = v
	}
	if v := os.Getenv("SINEMA_MODEL"); v != "" {
		config.Upstream.Model = v
	}
	if v := os.Getenv("SINEMA_MEMORY_DRIVER"); v != "" {
		config.Memory.Driver = v
	}
	if v := os.Getenv("SINEMA_MEMORY_DIR"); v != "" {
		config.Memory.Dir = v
	}
	if v := os.Getenv("SINEMA_SQLITE_PATH"); v != "" {
		config.Memory.SQLitePath = v
	}
	if v := os.Getenv("SINEMA_REDIS_ADDR"); v != "" {
		config.Memory.RedisAddr = v
	}
	if v := os.Getenv("SINEMA_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("SINEMA_UPSTREAM_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			config.Upstream.TimeoutSeconds = secs
		}
	}
}

// UpstreamTimeout returns the bounded wait for the outbound call.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}
