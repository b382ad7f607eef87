package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
)

const deckColumns = `id, name, mastery, created_at, updated_at`

// DeckStore implements store.DeckStore on a connection or transaction.
type DeckStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewDeckStore creates a DeckStore. If logger is nil, a default logger will be used.
func NewDeckStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *DeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "deck_store")),
	}
}

// Ensure DeckStore implements store.DeckStore interface
var _ store.DeckStore = (*DeckStore)(nil)

func (s *DeckStore) fail(operation, message string, err error) error {
	return store.NewStoreError("deck", operation, message, s.dialect.mapError(err))
}

// Create implements store.DeckStore.Create
func (s *DeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during create",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := s.dialect.Rebind(`INSERT INTO decks (` + deckColumns + `) VALUES (?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		deck.ID,
		deck.Name,
		deck.Mastery,
		dbTime(deck.CreatedAt),
		dbTime(deck.UpdatedAt),
	)
	if err != nil {
		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return s.fail("create", "failed to insert deck", err)
	}

	log.Info("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("name", deck.Name))
	return nil
}

// GetByID implements store.DeckStore.GetByID
func (s *DeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	return s.get(ctx, id, "")
}

// GetForUpdate implements store.DeckStore.GetForUpdate
func (s *DeckStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	return s.get(ctx, id, s.dialect.forUpdate())
}

func (s *DeckStore) get(ctx context.Context, id uuid.UUID, suffix string) (*domain.Deck, error) {
	query := s.dialect.Rebind(`SELECT ` + deckColumns + ` FROM decks WHERE id = ?` + suffix)
	deck, err := scanDeck(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDeckNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get deck by ID",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return nil, s.fail("get", "failed to read deck", err)
	}
	return deck, nil
}

// List implements store.DeckStore.List
func (s *DeckStore) List(ctx context.Context) ([]*domain.Deck, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+deckColumns+` FROM decks ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, s.fail("list", "failed to query decks", err)
	}
	defer func() { _ = rows.Close() }()

	var decks []*domain.Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, s.fail("list", "failed to scan deck", err)
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("list", "failed to iterate decks", err)
	}
	return decks, nil
}

// UpdateMastery implements store.DeckStore.UpdateMastery
func (s *DeckStore) UpdateMastery(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := s.dialect.Rebind(`UPDATE decks SET mastery = ?, updated_at = ? WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, deck.Mastery, dbTime(deck.UpdatedAt), deck.ID)
	if err != nil {
		log.Error("failed to update deck mastery",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return s.fail("update_mastery", "failed to update deck", err)
	}

	if err := checkRowsAffected(result, store.ErrDeckNotFound); err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return err
		}
		return s.fail("update_mastery", "failed to read affected rows", err)
	}

	log.Debug("deck mastery updated",
		slog.String("deck_id", deck.ID.String()),
		slog.Float64("mastery", deck.Mastery))
	return nil
}

// Delete implements store.DeckStore.Delete
func (s *DeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM decks WHERE id = ?`), id)
	if err != nil {
		return s.fail("delete", "failed to delete deck", err)
	}
	if err := checkRowsAffected(result, store.ErrDeckNotFound); err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return err
		}
		return s.fail("delete", "failed to read affected rows", err)
	}
	return nil
}

func scanDeck(row rowScanner) (*domain.Deck, error) {
	var deck domain.Deck
	if err := row.Scan(&deck.ID, &deck.Name, &deck.Mastery, &deck.CreatedAt, &deck.UpdatedAt); err != nil {
		return nil, err
	}
	deck.CreatedAt = deck.CreatedAt.UTC()
	deck.UpdatedAt = deck.UpdatedAt.UTC()
	return &deck, nil
}
