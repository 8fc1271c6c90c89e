// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"github.com/gridverse/gridverse/internal/auth"
	authpg "github.com/gridverse/gridverse/internal/auth/postgres"
	"github.com/gridverse/gridverse/internal/config"
	"github.com/gridverse/gridverse/internal/httpapi"
	"github.com/gridverse/gridverse/internal/logging"
	"github.com/gridverse/gridverse/internal/observability"
	"github.com/gridverse/gridverse/internal/store"
	"github.com/gridverse/gridverse/internal/world"
	worldpg "github.com/gridverse/gridverse/internal/world/postgres"
	"github.com/gridverse/gridverse/internal/xdg"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the Gridverse API server. Runs pending database migrations,
then serves the REST API and the observability endpoints until interrupted.`,
		RunE: runServe,
	}

	cmd.Flags().String("http-addr", "", "API listen address (overrides config)")
	cmd.Flags().String("metrics-addr", "", "metrics listen address (overrides config)")
	cmd.Flags().String("log-format", "", "log format: json or text (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	path := configFile
	if path == "" {
		path = xdg.DefaultConfigPath()
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetDefault("gridverse", version, cfg.Log.Format)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := connectDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Info("running migrations")
	if err := runMigrations(cfg.Database.URL); err != nil {
		return err
	}

	// Readiness flips on once both listeners are up.
	var ready atomic.Bool

	var (
		obsServer *observability.Server
		obsErrCh  <-chan error
		metrics   *observability.Metrics
	)
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, ready.Load)
		obsErrCh, err = obsServer.Start()
		if err != nil {
			return oops.Code("OBS_START_FAILED").Wrap(err)
		}
		metrics = obsServer.Metrics()
	}

	tokens := auth.NewTokenService(cfg.Auth.TokenSecret)
	accounts := auth.NewService(authpg.NewUserRepository(pool), auth.NewArgon2idHasher(), tokens)

	transactor := worldpg.NewTransactor(pool)
	catalog := world.NewCatalogService(world.CatalogConfig{
		Elements:   worldpg.NewElementRepository(pool),
		Avatars:    worldpg.NewAvatarRepository(pool),
		Maps:       worldpg.NewMapRepository(pool),
		Transactor: transactor,
	})
	spaces := world.NewSpaceService(world.SpaceConfig{
		Spaces:     worldpg.NewSpaceRepository(pool),
		Maps:       worldpg.NewMapRepository(pool),
		Transactor: transactor,
	})

	apiServer := httpapi.NewServer(httpapi.Config{
		Addr:            cfg.HTTP.Addr,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		Accounts:        accounts,
		Catalog:         catalog,
		Spaces:          spaces,
		Verifier:        tokens,
		Metrics:         metrics,
		Logger:          logger,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	})
	apiErrCh, err := apiServer.Start()
	if err != nil {
		return oops.Code("API_START_FAILED").Wrap(err)
	}

	ready.Store(true)
	metricsAddr := ""
	if obsServer != nil {
		metricsAddr = obsServer.Addr()
	}
	logger.Info("server ready", "api_addr", apiServer.Addr(), "metrics_addr", metricsAddr)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-apiErrCh:
		if serveErr != nil {
			return oops.Code("API_SERVE_FAILED").Wrap(serveErr)
		}
	case serveErr := <-obsErrCh:
		if serveErr != nil {
			return oops.Code("OBS_SERVE_FAILED").Wrap(serveErr)
		}
	}

	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Error("observability shutdown failed", "error", err)
		}
	}

	return nil
}

// applyEnvOverrides fills secrets from the environment when the config file
// leaves them unset. Environment wins over file for these two keys so
// deployments can keep credentials out of the config file entirely.
func applyEnvOverrides(cfg *config.Config) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if secret := os.Getenv("TOKEN_SECRET"); secret != "" {
		cfg.Auth.TokenSecret = secret
	}
}

// connectDatabase opens a pool and pings it with fibonacci backoff, so the
// server survives a database that is still coming up.
func connectDatabase(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(500*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	}); err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "ping database").Wrap(err)
	}

	return pool, nil
}

func runMigrations(databaseURL string) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck

	return migrator.Up()
}
