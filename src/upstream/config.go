package upstream

import (
	"log/slog"
	"time"
)

// Config holds the configuration for the upstream chat client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// Optional headers for ranking/identification
	SiteURL  string
	SiteName string
	// Optional logger
	Logger *slog.Logger
}
