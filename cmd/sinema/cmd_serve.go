package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sinema-chat/sinema/src/config"
	"github.com/sinema-chat/sinema/src/memory"
	"github.com/sinema-chat/sinema/src/server"
	"github.com/sinema-chat/sinema/src/upstream"
)

// ServeCmd starts the chat HTTP service.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides config)"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	logLevel := cli.LogLevel
	logger := createLogger(logLevel)
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(cli.Config).Load()
	if err != nil {
		return err
	}
	if cli.APIKey != "" {
		cfg.Upstream.APIKey = cli.APIKey
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	if cfg.Upstream.APIKey == "" {
		logger.Warn("no upstream API key configured, chat requests will fail with a configuration error")
	}

	store, err := buildStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize memory store: %w", err)
	}
	defer store.Close()

	chat := upstream.NewClient(upstream.Config{
		APIKey:   cfg.Upstream.APIKey,
		BaseURL:  cfg.Upstream.BaseURL,
		Timeout:  cfg.UpstreamTimeout(),
		SiteName: "sinema",
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.NewServer(cfg, store, chat, logger).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr, "memory_driver", cfg.Memory.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildStore constructs the record store selected by config.
func buildStore(cfg *config.Config, logger *slog.Logger) (memory.Store, error) {
	driver := memory.Driver(cfg.Memory.Driver)
	opts := []memory.StoreOption{memory.WithLogger(logger)}

	switch driver {
	case memory.DriverFile:
		dir := cfg.Memory.Dir
		if dir == "" {
			dir = config.DefaultMemoryDir()
		}
		opts = append(opts, memory.WithDir(dir))

	case memory.DriverSQLite:
		path := cfg.Memory.SQLitePath
		if path == "" {
			path = config.DefaultSQLitePath()
		}
		opts = append(opts, memory.WithSQLitePath(path))

	case memory.DriverRedis:
		if cfg.Memory.RedisAddr == "" {
			return nil, memory.ErrInvalidConfig
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.Memory.RedisAddr})
		opts = append(opts,
			memory.WithRedisClient(client),
			memory.WithRedisTTL(time.Duration(cfg.Memory.RedisTTLHours)*time.Hour))
	}

	return memory.NewStore(driver, opts...)
}
