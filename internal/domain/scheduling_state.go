package domain

import (
	"fmt"
	"time"
)

// Default scheduling values for a freshly created card.
const (
	DefaultEasinessFactor = 2.5
	MinEasinessFactor     = 1.3
	DefaultInterval       = 1
	MaxDifficultyRating   = 5
)

// Validation errors for SchedulingState. Each wraps ErrValidation.
var (
	ErrInvalidEasinessFactor = fmt.Errorf("%w: easiness factor must be at least %.1f", ErrValidation, MinEasinessFactor)
	ErrInvalidInterval       = fmt.Errorf("%w: interval must be at least 1 day", ErrValidation)
	ErrNegativeCounter       = fmt.Errorf("%w: repetition, review and streak counters cannot be negative", ErrValidation)
	ErrInvalidDifficulty     = fmt.Errorf("%w: difficulty rating must be between 0 and 5", ErrValidation)
	ErrMissingNextReview     = fmt.Errorf("%w: next review time cannot be zero", ErrValidation)
)

// SchedulingState holds the mutable spaced repetition attributes of a card.
// It has no identity of its own; every Card owns exactly one.
//
// The scheduler treats it as a value: it receives a state and returns a new
// one, and the caller persists the result.
type SchedulingState struct {
	EasinessFactor   float64   `json:"easiness_factor"`
	Repetitions      int       `json:"repetitions"`       // consecutive Easy reviews since the last reset
	Interval         int       `json:"interval"`          // days until the next review
	ReviewCount      int       `json:"review_count"`      // total reviews ever performed
	CorrectStreak    int       `json:"correct_streak"`    // consecutive reviews graded Good or better
	DifficultyRating int       `json:"difficulty_rating"` // 5 - last quality
	LastReviewedAt   time.Time `json:"last_reviewed_at"`  // zero when the card was never reviewed
	NextReviewAt     time.Time `json:"next_review_at"`
}

// NewSchedulingState returns the initial state of a card created at
// createdAt. The card is due immediately.
func NewSchedulingState(createdAt time.Time) SchedulingState {
	return SchedulingState{
		EasinessFactor:   DefaultEasinessFactor,
		Repetitions:      0,
		Interval:         DefaultInterval,
		ReviewCount:      0,
		CorrectStreak:    0,
		DifficultyRating: 0,
		NextReviewAt:     createdAt,
	}
}

// HasBeenReviewed reports whether at least one review was recorded.
func (s SchedulingState) HasBeenReviewed() bool {
	return !s.LastReviewedAt.IsZero()
}

// IsDue reports whether the card should be reviewed at now.
func (s SchedulingState) IsDue(now time.Time) bool {
	return !s.NextReviewAt.After(now)
}

// Validate checks the state invariants.
func (s SchedulingState) Validate() error {
	if s.EasinessFactor < MinEasinessFactor {
		return ErrInvalidEasinessFactor
	}
	if s.Interval < 1 {
		return ErrInvalidInterval
	}
	if s.Repetitions < 0 || s.ReviewCount < 0 || s.CorrectStreak < 0 {
		return ErrNegativeCounter
	}
	if s.DifficultyRating < 0 || s.DifficultyRating > MaxDifficultyRating {
		return ErrInvalidDifficulty
	}
	if s.NextReviewAt.IsZero() {
		return ErrMissingNextReview
	}
	return nil
}
