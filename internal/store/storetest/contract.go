// Package storetest holds the behavioural test suite every store.Repository
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty repository for one subtest.
type Factory func(t *testing.T) store.Repository

// BaseTime is the fixed creation time used by fixtures.
var BaseTime = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// NewDeck builds a valid deck created at BaseTime.
func NewDeck(t *testing.T, name string) *domain.Deck {
	t.Helper()

	deck, err := domain.NewDeck(name, BaseTime)
	require.NoError(t, err)
	return deck
}

// NewCard builds a valid, never-reviewed card in deck created at createdAt.
func NewCard(t *testing.T, deckID uuid.UUID, front string, createdAt time.Time) *domain.Card {
	t.Helper()

	card, err := domain.NewCard(deckID, front, "answer to "+front, createdAt)
	require.NoError(t, err)
	return card
}

// Seed persists a deck and its cards outside any transaction.
func Seed(t *testing.T, repo store.Repository, deck *domain.Deck, cards ...*domain.Card) {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, repo.Decks().Create(ctx, deck))
	for _, card := range cards {
		require.NoError(t, repo.Cards().Create(ctx, card))
	}
}

func ids(cards []*domain.Card) []uuid.UUID {
	out := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

// reviewed returns a copy of card as if it had been reviewed once at at.
func reviewed(card *domain.Card, at time.Time, intervalDays int) *domain.Card {
	state := card.State
	state.ReviewCount++
	state.Repetitions = 1
	state.CorrectStreak = 1
	state.Interval = intervalDays
	state.DifficultyRating = 2
	state.EasinessFactor = 2.36
	state.LastReviewedAt = at
	state.NextReviewAt = at.AddDate(0, 0, intervalDays)
	return card.WithState(state, at)
}

// RunRepositoryTests exercises the store.Repository contract.
func RunRepositoryTests(t *testing.T, newRepo Factory) {
	t.Run("card round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		deck := NewDeck(t, "Spanish")
		card := NewCard(t, deck.ID, "hola", BaseTime)
		Seed(t, repo, deck, card)

		got, err := repo.Cards().GetByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, card, got)

		gotDeck, err := repo.Decks().GetByID(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, deck, gotDeck)
	})

	t.Run("missing entities", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Cards().GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrCardNotFound)
		assert.True(t, store.IsNotFoundError(err))

		_, err = repo.Decks().GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrDeckNotFound)

		missing := NewCard(t, uuid.New(), "ghost", BaseTime)
		assert.ErrorIs(t, repo.Cards().UpdateSchedule(ctx, missing), store.ErrCardNotFound)
		assert.ErrorIs(t, repo.Cards().Delete(ctx, missing.ID), store.ErrCardNotFound)
		assert.ErrorIs(t, repo.Decks().Delete(ctx, uuid.New()), store.ErrDeckNotFound)
	})

	t.Run("rejects invalid and duplicate entities", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		deck := NewDeck(t, "Spanish")
		card := NewCard(t, deck.ID, "hola", BaseTime)
		Seed(t, repo, deck, card)

		assert.ErrorIs(t, repo.Cards().Create(ctx, card), store.ErrDuplicate)
		assert.ErrorIs(t, repo.Decks().Create(ctx, deck), store.ErrDuplicate)

		blank := *card
		blank.ID = uuid.New()
		blank.Front = ""
		assert.ErrorIs(t, repo.Cards().Create(ctx, &blank), store.ErrInvalidEntity)

		orphan := NewCard(t, uuid.New(), "orphan", BaseTime)
		assert.ErrorIs(t, repo.Cards().Create(ctx, orphan), store.ErrInvalidEntity)
	})

	t.Run("deck filter", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		spanish := NewDeck(t, "Spanish")
		french := NewDeck(t, "French")
		a := NewCard(t, spanish.ID, "hola", BaseTime)
		b := NewCard(t, spanish.ID, "adios", BaseTime)
		c := NewCard(t, french.ID, "bonjour", BaseTime)
		Seed(t, repo, spanish, a, b)
		Seed(t, repo, french, c)

		all, err := repo.Cards().FetchCards(ctx, store.AllDecks())
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID, c.ID}, ids(all))

		scoped, err := repo.Cards().FetchCards(ctx, store.ForDeck(french.ID))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{c.ID}, ids(scoped))

		none, err := repo.Cards().FetchCards(ctx, store.ForDeck(uuid.New()))
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("fetch by due date includes the boundary", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		deck := NewDeck(t, "Spanish")
		early := NewCard(t, deck.ID, "early", BaseTime)
		exact := NewCard(t, deck.ID, "exact", BaseTime.Add(time.Hour))
		late := NewCard(t, deck.ID, "late", BaseTime.Add(2*time.Hour))
		Seed(t, repo, deck, early, exact, late)

		due, err := repo.Cards().FetchCardsByDueDate(ctx, store.ForDeck(deck.ID), BaseTime.Add(time.Hour))
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{early.ID, exact.ID}, ids(due))

		none, err := repo.Cards().FetchCardsByDueDate(ctx, store.AllDecks(), BaseTime.Add(-time.Second))
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("fetch by review count and schedule update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		deck := NewDeck(t, "Spanish")
		fresh := NewCard(t, deck.ID, "fresh", BaseTime)
		seen := NewCard(t, deck.ID, "seen", BaseTime)
		Seed(t, repo, deck, fresh, seen)

		reviewAt := BaseTime.Add(3 * time.Hour)
		updated := reviewed(seen, reviewAt, 6)
		require.NoError(t, repo.Cards().UpdateSchedule(ctx, updated))

		got, err := repo.Cards().GetByID(ctx, seen.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)

		newCards, err := repo.Cards().FetchCardsByReviewCount(ctx, store.ForDeck(deck.ID), 0)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{fresh.ID}, ids(newCards))

		once, err := repo.Cards().FetchCardsByReviewCount(ctx, store.AllDecks(), 1)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{seen.ID}, ids(once))
	})

	t.Run("transaction commits", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		deck := NewDeck(t, "Spanish")
		card := NewCard(t, deck.ID, "hola", BaseTime)
		Seed(t, repo, deck, card)

		at := BaseTime.Add(time.Hour)
		err := repo.RunInTx(ctx, func(ctx context.Context, cards store.CardStore, decks store.DeckStore) error {
			locked, err := cards.GetForUpdate(ctx, card.ID)
			if err != nil {
				return err
			}
			if err := cards.UpdateSchedule(ctx, reviewed(locked, at, 1)); err != nil {
				return err
			}
			d, err := decks.GetForUpdate(ctx, deck.ID)
			if err != nil {
				return err
			}
			return decks.UpdateMastery(ctx, d.WithMastery(1, at))
		})
		require.NoError(t, err)

		got, err := repo.Cards().GetByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.State.ReviewCount)

		gotDeck, err := repo.Decks().GetByID(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, 1.0, gotDeck.Mastery)
		assert.Equal(t, at, gotDeck.UpdatedAt)
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		deck := NewDeck(t, "Spanish")
		card := NewCard(t, deck.ID, "hola", BaseTime)
		Seed(t, repo, deck, card)

		boom := errors.New("boom")
		err := repo.RunInTx(ctx, func(ctx context.Context, cards store.CardStore, decks store.DeckStore) error {
			if err := cards.UpdateSchedule(ctx, reviewed(card, BaseTime.Add(time.Hour), 1)); err != nil {
				return err
			}
			if err := decks.UpdateMastery(ctx, deck.WithMastery(0.5, BaseTime)); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
		_, isStoreErr := store.AsStoreError(err)
		assert.False(t, isStoreErr, "errors from the unit of work are returned unchanged")

		got, err := repo.Cards().GetByID(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.State.ReviewCount)

		gotDeck, err := repo.Decks().GetByID(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, gotDeck.Mastery)
	})

	t.Run("deck list order and cascade delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		first := NewDeck(t, "First")
		second, err := domain.NewDeck("Second", BaseTime.Add(time.Minute))
		require.NoError(t, err)
		card := NewCard(t, first.ID, "hola", BaseTime)
		Seed(t, repo, second)
		Seed(t, repo, first, card)

		decks, err := repo.Decks().List(ctx)
		require.NoError(t, err)
		require.Len(t, decks, 2)
		assert.Equal(t, first.ID, decks[0].ID)
		assert.Equal(t, second.ID, decks[1].ID)

		require.NoError(t, repo.Decks().Delete(ctx, first.ID))

		_, err = repo.Cards().GetByID(ctx, card.ID)
		assert.ErrorIs(t, err, store.ErrCardNotFound)

		decks, err = repo.Decks().List(ctx)
		require.NoError(t, err)
		assert.Len(t, decks, 1)
	})
}
