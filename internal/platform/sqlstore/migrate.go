package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
)

// MigrationStatus is one row of the schema version report.
type MigrationStatus struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

func newProvider(db *sql.DB, dialect goose.Dialect, migrations fs.FS) (*goose.Provider, error) {
	provider, err := goose.NewProvider(dialect, db, migrations)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// Migrate applies every pending migration in migrations.
func Migrate(
	ctx context.Context,
	db *sql.DB,
	dialect goose.Dialect,
	migrations fs.FS,
	logger *slog.Logger,
) error {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With(slog.String("component", "migrations"), slog.String("dialect", string(dialect)))

	provider, err := newProvider(db, dialect, migrations)
	if err != nil {
		return err
	}

	startTime := time.Now()
	results, err := provider.Up(ctx)
	if err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	for _, result := range results {
		log.Info("migration applied",
			slog.Int64("version", result.Source.Version),
			slog.String("path", result.Source.Path),
			slog.Int64("duration_ms", result.Duration.Milliseconds()))
	}

	log.Info("migrations complete",
		slog.Int("applied", len(results)),
		slog.Int64("duration_ms", time.Since(startTime).Milliseconds()))
	return nil
}

// Status reports every known migration and whether it has been applied.
func Status(
	ctx context.Context,
	db *sql.DB,
	dialect goose.Dialect,
	migrations fs.FS,
) ([]MigrationStatus, error) {
	provider, err := newProvider(db, dialect, migrations)
	if err != nil {
		return nil, err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}

	out := make([]MigrationStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationStatus{
			Version:   s.Source.Version,
			Path:      s.Source.Path,
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		})
	}
	return out, nil
}
