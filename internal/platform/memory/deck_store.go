package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/samber/lo"
)

// DeckStore implements store.DeckStore over a data view.
type DeckStore struct {
	mu   *sync.Mutex
	data *data
}

// Ensure DeckStore implements store.DeckStore interface
var _ store.DeckStore = (*DeckStore)(nil)

// Create implements store.DeckStore.Create
func (s *DeckStore) Create(_ context.Context, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.decks[deck.ID]; ok {
		return fmt.Errorf("%w: deck %s", store.ErrDuplicate, deck.ID)
	}
	s.data.decks[deck.ID] = *deck
	s.data.touchDeck(deck.ID)
	return nil
}

// GetByID implements store.DeckStore.GetByID
func (s *DeckStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Deck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok := s.data.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	return &deck, nil
}

// GetForUpdate implements store.DeckStore.GetForUpdate
func (s *DeckStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	return s.GetByID(ctx, id)
}

// List implements store.DeckStore.List
func (s *DeckStore) List(_ context.Context) ([]*domain.Deck, error) {
	s.mu.Lock()
	decks := lo.Map(lo.Values(s.data.decks), func(d domain.Deck, _ int) *domain.Deck { return &d })
	s.mu.Unlock()

	sort.Slice(decks, func(i, j int) bool {
		if !decks[i].CreatedAt.Equal(decks[j].CreatedAt) {
			return decks[i].CreatedAt.Before(decks[j].CreatedAt)
		}
		return decks[i].ID.String() < decks[j].ID.String()
	})
	return decks, nil
}

// UpdateMastery implements store.DeckStore.UpdateMastery
func (s *DeckStore) UpdateMastery(_ context.Context, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.data.decks[deck.ID]
	if !ok {
		return store.ErrDeckNotFound
	}
	existing.Mastery = deck.Mastery
	existing.UpdatedAt = deck.UpdatedAt
	s.data.decks[deck.ID] = existing
	s.data.touchDeck(deck.ID)
	return nil
}

// Delete implements store.DeckStore.Delete and cascades to the deck's cards.
func (s *DeckStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.decks[id]; !ok {
		return store.ErrDeckNotFound
	}
	delete(s.data.decks, id)
	s.data.touchDeck(id)

	for cardID, card := range s.data.cards {
		if card.DeckID == id {
			delete(s.data.cards, cardID)
			s.data.touchCard(cardID)
		}
	}
	return nil
}
