package postgres

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"

	"github.com/utafrali/Storefront/pkg/database"
)

//go:embed migrations/*.up.sql
var migrationFiles embed.FS

// Migrate brings the schema up to date.
func Migrate(ctx context.Context, db database.DBTX, logger *slog.Logger) error {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	return database.RunMigrations(ctx, db, sub, logger)
}
