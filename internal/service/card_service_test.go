package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/platform/clock"
	"github.com/phrazzld/scry-study/internal/platform/memory"
	"github.com/phrazzld/scry-study/internal/service"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newCardService(t *testing.T) (service.CardService, *memory.Repository) {
	t.Helper()

	repo := memory.NewRepository()
	svc, err := service.NewCardService(repo, srs.NewDefaultService(), clock.NewManual(now), nil)
	require.NoError(t, err)
	return svc, repo
}

func TestNewCardService_Validation(t *testing.T) {
	_, err := service.NewCardService(nil, srs.NewDefaultService(), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.NewCardService(memory.NewRepository(), nil, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCardService_Decks(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCardService(t)

	deck, err := svc.CreateDeck(ctx, "  Japanese ")
	require.NoError(t, err)
	assert.Equal(t, "Japanese", deck.Name)
	assert.Equal(t, now, deck.CreatedAt)

	got, err := svc.GetDeck(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, deck.ID, got.ID)

	_, err = svc.GetDeck(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrDeckNotFound)

	_, err = svc.CreateDeck(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	decks, err := svc.ListDecks(ctx)
	require.NoError(t, err)
	assert.Len(t, decks, 1)
}

func TestCardService_CreateCards(t *testing.T) {
	ctx := context.Background()

	t.Run("creates all cards and resets mastery", func(t *testing.T) {
		svc, repo := newCardService(t)
		deck, err := svc.CreateDeck(ctx, "Capitals")
		require.NoError(t, err)

		cards, err := svc.CreateCards(ctx, deck.ID, []service.CardInput{
			{Front: "France", Back: "Paris"},
			{Front: "Peru", Back: "Lima"},
		})
		require.NoError(t, err)
		require.Len(t, cards, 2)

		for _, c := range cards {
			assert.Equal(t, deck.ID, c.DeckID)
			assert.True(t, c.IsNew())
			assert.Equal(t, now, c.State.NextReviewAt)
		}

		stored, err := repo.Cards().FetchCards(ctx, store.ForDeck(deck.ID))
		require.NoError(t, err)
		assert.Len(t, stored, 2)

		got, err := repo.Decks().GetByID(ctx, deck.ID)
		require.NoError(t, err)
		assert.Zero(t, got.Mastery)
	})

	t.Run("unknown deck", func(t *testing.T) {
		svc, _ := newCardService(t)
		_, err := svc.CreateCards(ctx, uuid.New(), []service.CardInput{{Front: "q"}})
		assert.ErrorIs(t, err, service.ErrDeckNotFound)
	})

	t.Run("empty input", func(t *testing.T) {
		svc, _ := newCardService(t)
		_, err := svc.CreateCards(ctx, uuid.New(), nil)
		assert.ErrorIs(t, err, service.ErrNoCards)
	})

	t.Run("invalid card leaves nothing behind", func(t *testing.T) {
		svc, repo := newCardService(t)
		deck, err := svc.CreateDeck(ctx, "Capitals")
		require.NoError(t, err)

		_, err = svc.CreateCards(ctx, deck.ID, []service.CardInput{{Front: "ok"}, {Front: " "}})
		assert.ErrorIs(t, err, domain.ErrValidation)

		stored, err := repo.Cards().FetchCards(ctx, store.ForDeck(deck.ID))
		require.NoError(t, err)
		assert.Empty(t, stored)
	})

	t.Run("commit failure is a service error", func(t *testing.T) {
		svc, repo := newCardService(t)
		deck, err := svc.CreateDeck(ctx, "Capitals")
		require.NoError(t, err)

		repo.FailCommits(1, store.ErrUnavailable)
		_, err = svc.CreateCards(ctx, deck.ID, []service.CardInput{{Front: "q"}})
		require.Error(t, err)

		var svcErr *service.CardServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, "create_cards", svcErr.Operation)
		assert.ErrorIs(t, err, store.ErrTransactionFailed)
	})
}

func TestCardService_GetAndDeleteCard(t *testing.T) {
	ctx := context.Background()
	svc, repo := newCardService(t)

	deck, err := svc.CreateDeck(ctx, "Capitals")
	require.NoError(t, err)
	cards, err := svc.CreateCards(ctx, deck.ID, []service.CardInput{
		{Front: "France", Back: "Paris"},
		{Front: "Peru", Back: "Lima"},
	})
	require.NoError(t, err)

	// Make the surviving card mastered so the recompute is observable.
	mastered := cards[1].WithState(domain.SchedulingState{
		EasinessFactor: 2.5,
		Repetitions:    1,
		Interval:       1,
		ReviewCount:    1,
		CorrectStreak:  1,
		NextReviewAt:   now.AddDate(0, 0, 1),
	}, now)
	require.NoError(t, repo.Cards().UpdateSchedule(ctx, mastered))

	got, err := svc.GetCard(ctx, cards[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "France", got.Front)

	require.NoError(t, svc.DeleteCard(ctx, cards[0].ID))

	_, err = svc.GetCard(ctx, cards[0].ID)
	assert.ErrorIs(t, err, service.ErrCardNotFound)

	updated, err := repo.Decks().GetByID(ctx, deck.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, updated.Mastery, 1e-9)

	assert.ErrorIs(t, svc.DeleteCard(ctx, cards[0].ID), service.ErrCardNotFound)
}
