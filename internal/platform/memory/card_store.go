package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/samber/lo"
)

// CardStore implements store.CardStore over a data view.
type CardStore struct {
	mu   *sync.Mutex
	data *data
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

// Create implements store.CardStore.Create
func (s *CardStore) Create(_ context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.cards[card.ID]; ok {
		return fmt.Errorf("%w: card %s", store.ErrDuplicate, card.ID)
	}
	if _, ok := s.data.decks[card.DeckID]; !ok {
		return fmt.Errorf("%w: deck %s does not exist", store.ErrInvalidEntity, card.DeckID)
	}

	s.data.cards[card.ID] = *card
	s.data.touchCard(card.ID)
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *CardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.data.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return &card, nil
}

// GetForUpdate implements store.CardStore.GetForUpdate. Transactions are
// already serialized, so no extra locking is needed.
func (s *CardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.GetByID(ctx, id)
}

func (s *CardStore) filter(deck store.DeckFilter, keep func(domain.Card) bool) []*domain.Card {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.FilterMap(lo.Values(s.data.cards), func(card domain.Card, _ int) (*domain.Card, bool) {
		if deck.Valid && card.DeckID != deck.UUID {
			return nil, false
		}
		if !keep(card) {
			return nil, false
		}
		return &card, true
	})
}

// FetchCards implements store.CardStore.FetchCards
func (s *CardStore) FetchCards(_ context.Context, deck store.DeckFilter) ([]*domain.Card, error) {
	return s.filter(deck, func(domain.Card) bool { return true }), nil
}

// FetchCardsByDueDate implements store.CardStore.FetchCardsByDueDate
func (s *CardStore) FetchCardsByDueDate(
	_ context.Context,
	deck store.DeckFilter,
	asOf time.Time,
) ([]*domain.Card, error) {
	return s.filter(deck, func(card domain.Card) bool {
		return !card.State.NextReviewAt.After(asOf)
	}), nil
}

// FetchCardsByReviewCount implements store.CardStore.FetchCardsByReviewCount
func (s *CardStore) FetchCardsByReviewCount(
	_ context.Context,
	deck store.DeckFilter,
	reviewCount int,
) ([]*domain.Card, error) {
	return s.filter(deck, func(card domain.Card) bool {
		return card.State.ReviewCount == reviewCount
	}), nil
}

// UpdateSchedule implements store.CardStore.UpdateSchedule
func (s *CardStore) UpdateSchedule(_ context.Context, card *domain.Card) error {
	if err := card.State.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.data.cards[card.ID]
	if !ok {
		return store.ErrCardNotFound
	}
	existing.State = card.State
	existing.UpdatedAt = card.UpdatedAt
	s.data.cards[card.ID] = existing
	s.data.touchCard(card.ID)
	return nil
}

// Delete implements store.CardStore.Delete
func (s *CardStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(s.data.cards, id)
	s.data.touchCard(id)
	return nil
}
