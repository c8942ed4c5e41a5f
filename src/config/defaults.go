package config

// DefaultConfig returns the baseline configuration. File and environment
// values are merged on top of it.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Upstream: UpstreamConfig{
			BaseURL:        "https://openrouter.ai/api/v1",
			Model:          "openai/gpt-4o-mini",
			Temperature:    0.8,
			MaxTokens:      400,
			TimeoutSeconds: 30,
		},
		Memory: MemoryConfig{
			Driver:        "file",
			Dir:           DefaultMemoryDir(),
			RedisTTLHours: 24,
		},
		LogLevel: "info",
	}
}
