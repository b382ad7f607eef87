package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/platform/postgres"
	"github.com/phrazzld/scry-study/internal/platform/sqlite"
	"github.com/phrazzld/scry-study/internal/platform/sqlstore"
)

// database bundles a connection pool with the backend that owns it.
type database struct {
	db      *sql.DB
	repo    *sqlstore.Repository
	migrate func(ctx context.Context) error
	status  func(ctx context.Context) ([]sqlstore.MigrationStatus, error)
}

// openDatabase connects to the configured backend.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*database, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.URL, logger)
		if err != nil {
			return nil, err
		}
		return &database{
			db:      db,
			repo:    postgres.NewRepository(db, logger),
			migrate: func(ctx context.Context) error { return postgres.Migrate(ctx, db, logger) },
			status:  func(ctx context.Context) ([]sqlstore.MigrationStatus, error) { return postgres.MigrationStatus(ctx, db) },
		}, nil

	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.URL, logger)
		if err != nil {
			return nil, err
		}
		return &database{
			db:      db,
			repo:    sqlite.NewRepository(db, logger),
			migrate: func(ctx context.Context) error { return sqlite.Migrate(ctx, db, logger) },
			status:  func(ctx context.Context) ([]sqlstore.MigrationStatus, error) { return sqlite.MigrationStatus(ctx, db) },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func (d *database) Close() error {
	return d.db.Close()
}
