package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/memory"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/phrazzld/scry-study/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryContract(t *testing.T) {
	storetest.RunRepositoryTests(t, func(t *testing.T) store.Repository {
		return memory.NewRepository()
	})
}

func TestFailCommits(t *testing.T) {
	t.Parallel()

	repo := memory.NewRepository()
	ctx := context.Background()
	deck := storetest.NewDeck(t, "Spanish")
	storetest.Seed(t, repo, deck)

	repo.FailCommits(1, store.ErrConflict)

	update := func(ctx context.Context, _ store.CardStore, decks store.DeckStore) error {
		return decks.UpdateMastery(ctx, deck.WithMastery(0.75, storetest.BaseTime))
	}

	err := repo.RunInTx(ctx, update)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrTransactionFailed)
	assert.True(t, store.IsTransient(err))

	got, err := repo.Decks().GetByID(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Mastery, "failed commit must not publish writes")
	assert.Equal(t, 0, repo.Commits())

	require.NoError(t, repo.RunInTx(ctx, update))
	got, err = repo.Decks().GetByID(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.75, got.Mastery)
	assert.Equal(t, 1, repo.Commits())
}

func TestCommitKeepsConcurrentWritesToOtherEntities(t *testing.T) {
	t.Parallel()

	repo := memory.NewRepository()
	ctx := context.Background()
	deck := storetest.NewDeck(t, "Spanish")
	storetest.Seed(t, repo, deck)

	var outside *domain.Card
	err := repo.RunInTx(ctx, func(ctx context.Context, _ store.CardStore, decks store.DeckStore) error {
		outside = storetest.NewCard(t, deck.ID, "created outside", storetest.BaseTime)
		if err := repo.Cards().Create(ctx, outside); err != nil {
			return err
		}
		return decks.UpdateMastery(ctx, deck.WithMastery(1, storetest.BaseTime))
	})
	require.NoError(t, err)

	_, err = repo.Cards().GetByID(ctx, outside.ID)
	assert.NoError(t, err)
}

func TestReturnedCardsAreCopies(t *testing.T) {
	t.Parallel()

	repo := memory.NewRepository()
	ctx := context.Background()
	deck := storetest.NewDeck(t, "Spanish")
	card := storetest.NewCard(t, deck.ID, "hola", storetest.BaseTime)
	storetest.Seed(t, repo, deck, card)

	got, err := repo.Cards().GetByID(ctx, card.ID)
	require.NoError(t, err)
	got.State.ReviewCount = 42

	again, err := repo.Cards().GetByID(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.State.ReviewCount)
}

func TestCanceledContextDoesNotStartTx(t *testing.T) {
	t.Parallel()

	repo := memory.NewRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := repo.RunInTx(ctx, func(context.Context, store.CardStore, store.DeckStore) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.True(t, errors.Is(err, context.Canceled))
}
