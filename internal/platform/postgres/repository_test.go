package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/postgres"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cardColumns = []string{
	"id", "deck_id", "front", "back",
	"easiness_factor", "repetitions", "interval_days", "review_count",
	"correct_streak", "difficulty_rating", "last_reviewed_at", "next_review_at",
	"created_at", "updated_at",
}

func TestRepository_GetForUpdateLocksRowInsideTx(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	cardID := uuid.New()
	deckID := uuid.New()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM cards WHERE id = $1 FOR UPDATE")).
		WithArgs(cardID).
		WillReturnRows(sqlmock.NewRows(cardColumns).AddRow(
			cardID.String(), deckID.String(), "front", "back",
			2.5, 0, 1, 0,
			0, 0, nil, now,
			now, now,
		))
	mock.ExpectCommit()

	repo := postgres.NewRepository(db, nil)
	err = repo.RunInTx(context.Background(), func(ctx context.Context, cards store.CardStore, _ store.DeckStore) error {
		card, err := cards.GetForUpdate(ctx, cardID)
		require.NoError(t, err)
		assert.Equal(t, cardID, card.ID)
		assert.Equal(t, deckID, card.DeckID)
		assert.True(t, card.IsNew())
		assert.True(t, card.State.LastReviewedAt.IsZero())
		return nil
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SerializationFailureOnCommitIsTransient(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(newPgError("40001"))

	repo := postgres.NewRepository(db, nil)
	err = repo.RunInTx(context.Background(), func(context.Context, store.CardStore, store.DeckStore) error {
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrTransactionFailed)
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.True(t, store.IsTransient(err))

	se, ok := store.AsStoreError(err)
	require.True(t, ok)
	assert.Equal(t, "transaction", se.Entity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FetchDueUsesNumberedPlaceholders(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	deckID := uuid.New()
	asOf := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE deck_id = $1 AND next_review_at <= $2")).
		WithArgs(deckID, asOf).
		WillReturnRows(sqlmock.NewRows(cardColumns))

	repo := postgres.NewRepository(db, nil)
	cards, err := repo.Cards().FetchCardsByDueDate(context.Background(), store.ForDeck(deckID), asOf)

	require.NoError(t, err)
	assert.Empty(t, cards)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateScheduleMissingCard(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE cards")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	card := newCard(t)
	repo := postgres.NewRepository(db, nil)
	err = repo.Cards().UpdateSchedule(context.Background(), card)

	assert.ErrorIs(t, err, store.ErrCardNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func newCard(t *testing.T) *domain.Card {
	t.Helper()

	card, err := domain.NewCard(uuid.New(), "front", "back", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return card
}
