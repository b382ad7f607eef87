package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Deck-specific validation errors
var (
	ErrDeckIDEmpty        = fmt.Errorf("%w: deck ID cannot be empty", ErrValidation)
	ErrDeckNameEmpty      = fmt.Errorf("%w: deck name %w", ErrValidation, ErrEmptyContent)
	ErrDeckMasteryInvalid = fmt.Errorf("%w: deck mastery must be between 0 and 1", ErrValidation)
)

// Deck groups cards. Mastery is the fraction of its cards considered
// well-learned; it is always recomputed from card state, never patched.
type Deck struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Mastery   float64   `json:"mastery"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDeck creates an empty deck with zero mastery.
func NewDeck(name string, now time.Time) (*Deck, error) {
	deck := &Deck{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Mastery:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}
	if d.Name == "" {
		return ErrDeckNameEmpty
	}
	if d.Mastery < 0 || d.Mastery > 1 {
		return ErrDeckMasteryInvalid
	}
	return nil
}

// WithMastery returns a copy of the deck carrying the recomputed mastery.
func (d *Deck) WithMastery(mastery float64, now time.Time) *Deck {
	next := *d
	next.Mastery = mastery
	next.UpdatedAt = now
	return &next
}
