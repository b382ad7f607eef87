package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-study/internal/store"
)

// Repository implements store.Repository over a *sql.DB.
type Repository struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
	cards   *CardStore
	decks   *DeckStore
}

// NewRepository creates a Repository. If logger is nil, a default logger will be used.
func NewRepository(db *sql.DB, dialect Dialect, logger *slog.Logger) *Repository {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Repository{
		db:      db,
		dialect: dialect,
		logger:  logger,
		cards:   NewCardStore(db, dialect, logger),
		decks:   NewDeckStore(db, dialect, logger),
	}
}

// Ensure Repository implements store.Repository interface
var _ store.Repository = (*Repository)(nil)

// Cards implements store.Repository.Cards
func (r *Repository) Cards() store.CardStore { return r.cards }

// Decks implements store.Repository.Decks
func (r *Repository) Decks() store.DeckStore { return r.decks }

// DB exposes the underlying connection pool.
func (r *Repository) DB() *sql.DB { return r.db }

// RunInTx implements store.Repository.RunInTx
func (r *Repository) RunInTx(ctx context.Context, fn store.TxFn) error {
	var fnErr error
	err := store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		fnErr = fn(ctx, NewCardStore(tx, r.dialect, r.logger), NewDeckStore(tx, r.dialect, r.logger))
		return fnErr
	})
	if err == nil || (fnErr != nil && errors.Is(err, fnErr)) {
		return err
	}

	return store.NewStoreError("transaction", "run_in_tx", "transaction failed",
		fmt.Errorf("%w: %w", store.ErrTransactionFailed, r.dialect.mapError(err)))
}
