package memory

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

// Driver selects the storage backend for conversation records.
type Driver string

const (
	DriverFile   Driver = "file"
	DriverMemory Driver = "memory"
	DriverSQLite Driver = "sqlite"
	DriverRedis  Driver = "redis"
)

type storeConfig struct {
	fs          afero.Fs
	dir         string
	sqlitePath  string
	redisClient *redis.Client
	redisTTL    time.Duration
	logger      *slog.Logger
}

// StoreOption configures NewStore.
type StoreOption func(*storeConfig)

// WithFs overrides the filesystem used by the file driver. Tests inject
// afero.NewMemMapFs here.
func WithFs(fs afero.Fs) StoreOption {
	return func(c *storeConfig) { c.fs = fs }
}

// WithDir sets the root directory for the file driver.
func WithDir(dir string) StoreOption {
	return func(c *storeConfig) { c.dir = dir }
}

// WithSQLitePath sets the database path for the sqlite driver.
func WithSQLitePath(path string) StoreOption {
	return func(c *storeConfig) { c.sqlitePath = path }
}

// WithRedisClient sets the client for the redis driver.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) { c.redisClient = client }
}

// WithRedisTTL sets the per-record expiry for the redis driver. Zero means
// the 24h default.
func WithRedisTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) { c.redisTTL = ttl }
}

// WithLogger sets the logger used to report degraded loads and failed saves.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(c *storeConfig) { c.logger = logger }
}

// NewStore creates a conversation record store for the given driver.
func NewStore(driver Driver, opts ...StoreOption) (Store, error) {
	config := &storeConfig{}
	for _, opt := range opts {
		opt(config)
	}
	if config.logger == nil {
		config.logger = slog.Default()
	}

	switch driver {
	case DriverFile:
		if config.dir == "" {
			return nil, ErrInvalidConfig
		}
		fs := config.fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		return NewFileStore(fs, config.dir, config.logger)

	case DriverMemory:
		return NewInMemoryStore(config.logger), nil

	case DriverSQLite:
		if config.sqlitePath == "" {
			return nil, ErrInvalidConfig
		}
		return OpenSQLiteStore(config.sqlitePath, config.logger)

	case DriverRedis:
		if config.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		ttl := config.redisTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		return NewRedisStore(config.redisClient, ttl, config.logger), nil

	default:
		return nil, ErrInvalidDriver
	}
}
