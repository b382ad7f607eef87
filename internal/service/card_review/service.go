package card_review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/srs"
)

// ReviewResult is the outcome of a committed review.
type ReviewResult struct {
	Card *domain.Card `json:"card"` // The card with its new scheduling state
	Deck *domain.Deck `json:"deck"` // The card's deck with recomputed mastery
}

// CardReviewService records reviews and postponements of flashcards.
type CardReviewService interface {
	// SubmitReview applies a review of the given quality to a card and
	// recomputes the mastery of its deck, all in one transaction.
	//
	// The review time is read from the clock once, before the first attempt.
	// Transient storage failures (write conflicts, lost connections) retry
	// the whole read-compute-write sequence with that same time.
	//
	// Returns:
	//   - (*ReviewResult, nil): the persisted card and deck
	//   - (nil, ErrCardNotFound): the card does not exist
	//   - (nil, ErrInvalidQuality): quality is outside Again..Easy
	//   - (nil, *ServiceError): storage failed; the *store.StoreError stays in the chain
	SubmitReview(ctx context.Context, cardID uuid.UUID, quality domain.ReviewQuality) (*ReviewResult, error)

	// SubmitRawReview validates an untyped quality grade (0-3) and then
	// behaves like SubmitReview. Invalid grades fail with ErrInvalidQuality
	// before anything is read or scheduled.
	SubmitRawReview(ctx context.Context, cardID uuid.UUID, rawQuality int) (*ReviewResult, error)

	// PostponeCard moves the card's next review forward by days without
	// counting a review. Returns ErrInvalidDays when days < 1.
	PostponeCard(ctx context.Context, cardID uuid.UUID, days int) (*domain.Card, error)
}

// Common error types for CardReviewService
var (
	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrInvalidQuality indicates a review grade outside Again..Easy.
	ErrInvalidQuality = domain.ErrInvalidQuality

	// ErrInvalidDays indicates a postponement of less than one day.
	ErrInvalidDays = srs.ErrInvalidDays
)

// ServiceError wraps errors from the card review service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_review", "postpone_card")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewSubmitReviewError returns a new ServiceError for the submit_review operation.
func NewSubmitReviewError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_review",
		Message:   message,
		Err:       err,
	}
}

// NewPostponeCardError returns a new ServiceError for the postpone_card operation.
func NewPostponeCardError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "postpone_card",
		Message:   message,
		Err:       err,
	}
}
