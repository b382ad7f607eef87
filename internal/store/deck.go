package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
)

// DeckStore defines the interface for deck persistence.
type DeckStore interface {
	// Create saves a new deck.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// GetForUpdate retrieves a deck and locks its row for the rest of the
	// transaction where the backend supports it.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// List returns all decks ordered by creation time.
	List(ctx context.Context) ([]*domain.Deck, error)

	// UpdateMastery persists the deck's mastery and UpdatedAt.
	// Returns ErrDeckNotFound if the deck does not exist.
	UpdateMastery(ctx context.Context, deck *domain.Deck) error

	// Delete removes a deck and, through the backend's cascade, its cards.
	// Returns ErrDeckNotFound if the deck does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
