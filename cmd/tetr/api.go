package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tetrlang/internal/api"
	"github.com/vovakirdan/tetrlang/internal/cache"
)

var (
	flagHTTPAddr  string
	flagCacheAddr string
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server that compiles and simulates programs.

Endpoints:
  GET  /healthz          - liveness
  GET  /metrics          - Prometheus metrics
  POST /v1/compile       - {"program": "..."} -> compiled program
  POST /v1/simulate      - {"program": "...", "frames": true} -> outcome, states, frames
  GET  /v1/runs          - recent runs (?limit=n)
  GET  /v1/runs/{id}     - one run
  GET  /v1/stats         - history statistics

Responses are cached in Redis when a cache address is configured.

Examples:
  tetr api
  tetr api --http :9090 --cache localhost:6379
  curl -d '{"program":":T:;"}' localhost:8080/v1/simulate`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP listen address (overrides config)")
	apiCmd.Flags().StringVar(&flagCacheAddr, "cache", "", "Redis address for the response cache (overrides config)")
}

func runAPI(cmd *cobra.Command, _ []string) error {
	addr := cfg.Server.HTTPAddress
	if flagHTTPAddr != "" {
		addr = flagHTTPAddr
	}
	if flagCacheAddr != "" {
		cfg.Cache.Address = flagCacheAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := api.Options{
		Limits: cfg.Limits,
		Render: cfg.Render,
		Logger: logger.WithPrefix("tetr-api"),
	}

	if store := openStore(); store != nil {
		defer store.Close()
		opts.Store = store
	}

	if cfg.Cache.Address != "" {
		c, err := openCache(ctx)
		if err != nil {
			return err
		}
		defer c.Close()
		opts.Cache = c
	}

	fmt.Printf("Starting tetr API on %s\n", addr)
	return api.New(opts).ListenAndServe(ctx, addr)
}

// openCache connects to Redis and checks that it answers.
func openCache(ctx context.Context) (*cache.Cache, error) {
	c := cache.New(cfg.Cache.Address,
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithPrefix(cfg.Cache.Prefix),
	)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		c.Close()
		return nil, fmt.Errorf("cannot reach cache at %s: %w", cfg.Cache.Address, err)
	}
	logger.Info("response cache enabled", "address", cfg.Cache.Address, "ttl", cfg.Cache.TTL)
	return c, nil
}
