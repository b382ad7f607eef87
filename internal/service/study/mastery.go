package study

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/samber/lo"
)

// MasteryFor computes the mastery of a deck from the cards visible to
// cards. A deck with no cards has mastery 0.
func MasteryFor(
	ctx context.Context,
	cards store.CardStore,
	srsService srs.Service,
	deckID uuid.UUID,
) (float64, error) {
	deckCards, err := cards.FetchCards(ctx, store.ForDeck(deckID))
	if err != nil {
		return 0, err
	}
	states := lo.Map(deckCards, func(c *domain.Card, _ int) domain.SchedulingState {
		return c.State
	})
	return srsService.Mastery(states), nil
}

// UpdateDeckMastery locks the deck, recomputes its mastery and writes it
// back, returning the updated deck. It is meant to run inside
// store.Repository.RunInTx.
func UpdateDeckMastery(
	ctx context.Context,
	cards store.CardStore,
	decks store.DeckStore,
	srsService srs.Service,
	deckID uuid.UUID,
	now time.Time,
) (*domain.Deck, error) {
	deck, err := decks.GetForUpdate(ctx, deckID)
	if err != nil {
		return nil, err
	}

	mastery, err := MasteryFor(ctx, cards, srsService, deckID)
	if err != nil {
		return nil, err
	}

	updated := deck.WithMastery(mastery, now)
	if err := decks.UpdateMastery(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
