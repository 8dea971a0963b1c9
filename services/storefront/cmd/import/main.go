package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/utafrali/Storefront/pkg/database"
	"github.com/utafrali/Storefront/pkg/logger"
	"github.com/utafrali/Storefront/services/storefront/internal/config"
	"github.com/utafrali/Storefront/services/storefront/internal/domain"
	"github.com/utafrali/Storefront/services/storefront/internal/repository"
	"github.com/utafrali/Storefront/services/storefront/internal/repository/postgres"
)

// importer writes a parsed catalog somewhere.
type importer interface {
	Import(ctx context.Context, catalog *domain.Catalog) (repository.ImportStats, error)
}

// openFunc connects the importer. The returned func releases it.
type openFunc func(ctx context.Context) (importer, func(), error)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	log := logger.NewText("storefront-import", cfg.LogLevel, os.Stderr)

	open := func(ctx context.Context) (importer, func(), error) {
		pgCfg := cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return postgres.NewCatalogImporter(pool, log), pool.Close, nil
	}

	if err := newCommand(open, log).Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand(open openFunc, log *slog.Logger) *cobra.Command {
	var (
		file    string
		dryRun  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:           "import",
		Short:         "Load a catalog dump into the storefront database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			err := runImport(ctx, cmd.OutOrStdout(), file, dryRun, open)
			if err != nil {
				log.ErrorContext(ctx, "import failed", slog.String("file", file), slog.String("error", err.Error()))
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "data.json", "catalog dump to import")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the dump and report what it contains without writing")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall time limit")
	return cmd
}

func runImport(ctx context.Context, out io.Writer, file string, dryRun bool, open openFunc) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	catalog, err := domain.ParseCatalog(f)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(out, "%d categories, %d brands, %d currencies, %d products\n",
			len(catalog.Categories), len(catalog.Brands()), len(catalog.Currencies()), len(catalog.Products))
		return nil
	}

	imp, release, err := open(ctx)
	if err != nil {
		return err
	}
	defer release()

	stats, err := imp.Import(ctx, catalog)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d products (%d already present), %d categories, %d brands, %d currencies\n",
		stats.Products, stats.Skipped, stats.Categories, stats.Brands, stats.Currencies)
	return nil
}
