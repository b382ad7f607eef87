package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/phrazzld/scry-study/internal/platform/sqlstore"
	"github.com/pressly/goose/v3"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Open opens the SQLite database at path (or ":memory:"), applies the
// connection pragmas and verifies the connection.
//
// The pool is limited to one connection: SQLite allows a single writer and
// ":memory:" databases are private to their connection.
func Open(ctx context.Context, path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", MapError(err))
	}

	logger.Info("database connection established",
		slog.String("driver", "sqlite"),
		slog.String("path", path))
	return db, nil
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Dialect returns the sqlstore dialect for SQLite. SQLite has no row locks;
// the single connection serializes transactions instead.
func Dialect() sqlstore.Dialect {
	return sqlstore.Dialect{
		Name:     "sqlite",
		MapError: MapError,
	}
}

// NewRepository returns a store.Repository backed by db.
func NewRepository(db *sql.DB, logger *slog.Logger) *sqlstore.Repository {
	return sqlstore.NewRepository(db, Dialect(), logger)
}

// Migrations returns the embedded migration files.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		panic(fmt.Sprintf("embedded migrations missing: %v", err))
	}
	return sub
}

// Migrate applies pending schema migrations.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	return sqlstore.Migrate(ctx, db, goose.DialectSQLite3, Migrations(), logger)
}

// MigrationStatus reports applied and pending migrations.
func MigrationStatus(ctx context.Context, db *sql.DB) ([]sqlstore.MigrationStatus, error) {
	return sqlstore.Status(ctx, db, goose.DialectSQLite3, Migrations())
}
