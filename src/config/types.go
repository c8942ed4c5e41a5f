// Package config loads and validates service configuration from defaults, an
// optional JSON file and environment overrides.
package config

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Upstream UpstreamConfig `json:"upstream"`
	Memory   MemoryConfig   `json:"memory"`
	LogLevel string         `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `json:"addr" validate:"required"`
	// DevMode includes internal error detail in error responses.
	DevMode bool `json:"dev_mode"`
}

// UpstreamConfig configures the upstream chat completion API.
type UpstreamConfig struct {
	// APIKey is the required upstream credential. Its absence is reported as
	// a server configuration error before any network call.
	APIKey         string  `json:"api_key"`
	BaseURL        string  `json:"base_url" validate:"omitempty,url"`
	Model          string  `json:"model" validate:"required"`
	Temperature    float64 `json:"temperature" validate:"gte=0,lte=2"`
	MaxTokens      int     `json:"max_tokens" validate:"gte=1"`
	TimeoutSeconds int     `json:"timeout_seconds" validate:"gte=1"`
}

// MemoryConfig configures the conversation record store.
type MemoryConfig struct {
	Driver string `json:"driver" validate:"omitempty,memory_driver"`
	// Dir is the root directory for the file driver.
	Dir        string `json:"dir"`
	SQLitePath string `json:"sqlite_path"`
	RedisAddr  string `json:"redis_addr"`
	// RedisTTLHours is the per-record expiry for the redis driver.
	RedisTTLHours int `json:"redis_ttl_hours" validate:"gte=0"`
}
