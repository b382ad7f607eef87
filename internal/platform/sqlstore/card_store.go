package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
)

const cardColumns = `id, deck_id, front, back,
	easiness_factor, repetitions, interval_days, review_count,
	correct_streak, difficulty_rating, last_reviewed_at, next_review_at,
	created_at, updated_at`

// CardStore implements store.CardStore on a connection or transaction.
type CardStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewCardStore creates a CardStore. If logger is nil, a default logger will be used.
func NewCardStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CardStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "card_store")),
	}
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

func (s *CardStore) fail(operation, message string, err error) error {
	return store.NewStoreError("card", operation, message, s.dialect.mapError(err))
}

// Create implements store.CardStore.Create
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	st := card.State
	query := s.dialect.Rebind(`
		INSERT INTO cards (` + cardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.ExecContext(ctx, query,
		card.ID,
		card.DeckID,
		card.Front,
		card.Back,
		st.EasinessFactor,
		st.Repetitions,
		st.Interval,
		st.ReviewCount,
		st.CorrectStreak,
		st.DifficultyRating,
		nullTime(st.LastReviewedAt),
		dbTime(st.NextReviewAt),
		dbTime(card.CreatedAt),
		dbTime(card.UpdatedAt),
	)
	if err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()),
			slog.String("deck_id", card.DeckID.String()))
		return s.fail("create", "failed to insert card", err)
	}

	log.Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", card.DeckID.String()))
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.get(ctx, id, "")
}

// GetForUpdate implements store.CardStore.GetForUpdate
func (s *CardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.get(ctx, id, s.dialect.forUpdate())
}

func (s *CardStore) get(ctx context.Context, id uuid.UUID, suffix string) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.dialect.Rebind(`SELECT ` + cardColumns + ` FROM cards WHERE id = ?` + suffix)
	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, s.fail("get", "failed to read card", err)
	}
	return card, nil
}

// FetchCards implements store.CardStore.FetchCards
func (s *CardStore) FetchCards(ctx context.Context, deck store.DeckFilter) ([]*domain.Card, error) {
	where, args := deckClause(deck)
	return s.query(ctx, "fetch", `SELECT `+cardColumns+` FROM cards WHERE `+where, args...)
}

// FetchCardsByDueDate implements store.CardStore.FetchCardsByDueDate
func (s *CardStore) FetchCardsByDueDate(
	ctx context.Context,
	deck store.DeckFilter,
	asOf time.Time,
) ([]*domain.Card, error) {
	where, args := deckClause(deck)
	args = append(args, dbTime(asOf))
	return s.query(ctx, "fetch_due",
		`SELECT `+cardColumns+` FROM cards WHERE `+where+` AND next_review_at <= ?`, args...)
}

// FetchCardsByReviewCount implements store.CardStore.FetchCardsByReviewCount
func (s *CardStore) FetchCardsByReviewCount(
	ctx context.Context,
	deck store.DeckFilter,
	reviewCount int,
) ([]*domain.Card, error) {
	where, args := deckClause(deck)
	args = append(args, reviewCount)
	return s.query(ctx, "fetch_by_review_count",
		`SELECT `+cardColumns+` FROM cards WHERE `+where+` AND review_count = ?`, args...)
}

func (s *CardStore) query(ctx context.Context, operation, query string, args ...any) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		log.Error("failed to query cards",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return nil, s.fail(operation, "failed to query cards", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, s.fail(operation, "failed to scan card", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(operation, "failed to iterate cards", err)
	}

	log.Debug("cards fetched",
		slog.String("operation", operation),
		slog.Int("count", len(cards)))
	return cards, nil
}

// UpdateSchedule implements store.CardStore.UpdateSchedule
func (s *CardStore) UpdateSchedule(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.State.Validate(); err != nil {
		log.Warn("scheduling state validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	st := card.State
	query := s.dialect.Rebind(`
		UPDATE cards
		SET easiness_factor = ?, repetitions = ?, interval_days = ?, review_count = ?,
			correct_streak = ?, difficulty_rating = ?, last_reviewed_at = ?,
			next_review_at = ?, updated_at = ?
		WHERE id = ?
	`)
	result, err := s.db.ExecContext(ctx, query,
		st.EasinessFactor,
		st.Repetitions,
		st.Interval,
		st.ReviewCount,
		st.CorrectStreak,
		st.DifficultyRating,
		nullTime(st.LastReviewedAt),
		dbTime(st.NextReviewAt),
		dbTime(card.UpdatedAt),
		card.ID,
	)
	if err != nil {
		log.Error("failed to update card schedule",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return s.fail("update_schedule", "failed to update card", err)
	}

	if err := checkRowsAffected(result, store.ErrCardNotFound); err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			log.Debug("card not found for schedule update", slog.String("card_id", card.ID.String()))
			return err
		}
		return s.fail("update_schedule", "failed to read affected rows", err)
	}

	log.Debug("card schedule updated",
		slog.String("card_id", card.ID.String()),
		slog.Time("next_review_at", st.NextReviewAt))
	return nil
}

// Delete implements store.CardStore.Delete
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM cards WHERE id = ?`), id)
	if err != nil {
		return s.fail("delete", "failed to delete card", err)
	}
	if err := checkRowsAffected(result, store.ErrCardNotFound); err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			return err
		}
		return s.fail("delete", "failed to read affected rows", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card         domain.Card
		lastReviewed sql.NullTime
	)
	err := row.Scan(
		&card.ID,
		&card.DeckID,
		&card.Front,
		&card.Back,
		&card.State.EasinessFactor,
		&card.State.Repetitions,
		&card.State.Interval,
		&card.State.ReviewCount,
		&card.State.CorrectStreak,
		&card.State.DifficultyRating,
		&lastReviewed,
		&card.State.NextReviewAt,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastReviewed.Valid {
		card.State.LastReviewedAt = lastReviewed.Time.UTC()
	}
	card.State.NextReviewAt = card.State.NextReviewAt.UTC()
	card.CreatedAt = card.CreatedAt.UTC()
	card.UpdatedAt = card.UpdatedAt.UTC()
	return &card, nil
}

func deckClause(deck store.DeckFilter) (string, []any) {
	if !deck.Valid {
		return "1 = 1", nil
	}
	return "deck_id = ?", []any{deck.UUID}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: dbTime(t), Valid: true}
}

// checkRowsAffected returns notFound when an UPDATE or DELETE touched no rows.
func checkRowsAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
