package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = fmt.Errorf("%w: card ID cannot be empty", ErrValidation)

	// ErrCardDeckIDEmpty is returned when a card is not attached to a deck.
	ErrCardDeckIDEmpty = fmt.Errorf("%w: card deck ID cannot be empty", ErrValidation)

	// ErrCardFrontEmpty is returned when the prompt side of a card is blank.
	ErrCardFrontEmpty = fmt.Errorf("%w: card front %w", ErrValidation, ErrEmptyContent)
)

// Card is a flashcard belonging to exactly one deck. Its scheduling state
// lives inline and is replaced wholesale after every review.
type Card struct {
	ID        uuid.UUID       `json:"id"`
	DeckID    uuid.UUID       `json:"deck_id"`
	Front     string          `json:"front"`
	Back      string          `json:"back"`
	State     SchedulingState `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewCard creates a new Card in the given deck. The creation time is
// supplied by the caller so the initial due date follows the injected clock.
// Returns an error if validation fails.
func NewCard(deckID uuid.UUID, front, back string, now time.Time) (*Card, error) {
	card := &Card{
		ID:        uuid.New(),
		DeckID:    deckID,
		Front:     strings.TrimSpace(front),
		Back:      strings.TrimSpace(back),
		State:     NewSchedulingState(now),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if strings.TrimSpace(c.Front) == "" {
		return ErrCardFrontEmpty
	}

	return c.State.Validate()
}

// IsNew reports whether the card has never been reviewed.
func (c *Card) IsNew() bool {
	return c.State.ReviewCount == 0
}

// WithState returns a copy of the card carrying state, stamped as updated at now.
// The receiver is left untouched.
func (c *Card) WithState(state SchedulingState, now time.Time) *Card {
	next := *c
	next.State = state
	next.UpdatedAt = now
	return &next
}
