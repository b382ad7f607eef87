package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
)

// CardStore defines the interface for card persistence.
type CardStore interface {
	// Create saves a new card together with its initial scheduling state.
	// Returns ErrInvalidEntity if the card fails domain validation and
	// ErrDuplicate if the ID is taken.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetForUpdate retrieves a card and, where the backend supports it, locks
	// the row until the surrounding transaction ends. Use it inside RunInTx
	// when the card's scheduling state is about to be rewritten.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// FetchCards returns every card matching the deck filter.
	FetchCards(ctx context.Context, deck DeckFilter) ([]*domain.Card, error)

	// FetchCardsByDueDate returns cards whose next review time is at or
	// before asOf.
	FetchCardsByDueDate(ctx context.Context, deck DeckFilter, asOf time.Time) ([]*domain.Card, error)

	// FetchCardsByReviewCount returns cards whose total review count equals
	// reviewCount. A count of 0 selects never-reviewed cards.
	FetchCardsByReviewCount(ctx context.Context, deck DeckFilter, reviewCount int) ([]*domain.Card, error)

	// UpdateSchedule persists the card's scheduling state and UpdatedAt.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateSchedule(ctx context.Context, card *domain.Card) error

	// Delete removes a card.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
