// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridverse Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gridverse/gridverse/internal/seed"
	"github.com/gridverse/gridverse/internal/world"
	worldpg "github.com/gridverse/gridverse/internal/world/postgres"
)

// Default timeout for seed database operations.
const defaultSeedTimeout = 30 * time.Second

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Seed the catalog from a YAML file",
		Long: `Creates avatars, elements, and map templates from a YAML seed file.
This command is idempotent - entities that already exist are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args[0], timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a seed file without touching the database",
		Long: `Checks a seed file against the seed schema and exits.
Exits with code 0 on success, non-zero on failure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runSeedValidate(args[0])
		},
	})

	return cmd
}

func runSeed(cmd *cobra.Command, path string, timeout time.Duration) error {
	file, err := seed.Load(path)
	if err != nil {
		return err
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}
	defer pool.Close()

	cmd.Println("Running migrations...")
	if err := runMigrations(databaseURL); err != nil {
		return err
	}

	catalog := world.NewCatalogService(world.CatalogConfig{
		Elements:   worldpg.NewElementRepository(pool),
		Avatars:    worldpg.NewAvatarRepository(pool),
		Maps:       worldpg.NewMapRepository(pool),
		Transactor: worldpg.NewTransactor(pool),
	})

	result, err := seed.NewSeeder(catalog, slog.Default()).Apply(ctx, file)
	if err != nil {
		return err
	}

	cmd.Printf("Seed complete: %d avatars, %d elements, %d maps created; %d skipped\n",
		result.AvatarsCreated, result.ElementsCreated, result.MapsCreated,
		result.AvatarsSkipped+result.ElementsSkipped+result.MapsSkipped)
	return nil
}

func runSeedValidate(path string) error {
	if _, err := seed.Load(path); err != nil {
		return err
	}
	slog.Info("seed file valid", "path", path)
	return nil
}
