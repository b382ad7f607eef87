package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// Common errors
var (
	ErrInvalidDays = errors.New("postpone days must be at least 1")
)

// Service defines the interface for scheduling operations. Implementations
// are pure and safe for concurrent use on independent states.
type Service interface {
	// Schedule computes the state that follows a review of the given quality
	// at now. It fails only when quality is outside Again..Easy.
	Schedule(
		state domain.SchedulingState,
		quality domain.ReviewQuality,
		now time.Time,
	) (domain.SchedulingState, error)

	// PostponeReview pushes the next review time forward by a number of days
	// without counting a review.
	PostponeReview(
		state domain.SchedulingState,
		days int,
	) (domain.SchedulingState, error)

	// IsMastered reports whether a single card state counts as mastered.
	IsMastered(state domain.SchedulingState) bool

	// Mastery returns the fraction of mastered states, 0 for an empty slice.
	Mastery(states []domain.SchedulingState) float64
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// Schedule implements Service.Schedule.
func (s *defaultService) Schedule(
	state domain.SchedulingState,
	quality domain.ReviewQuality,
	now time.Time,
) (domain.SchedulingState, error) {
	if !quality.IsValid() {
		return state, fmt.Errorf("%w: %d", domain.ErrInvalidQuality, int(quality))
	}

	return calculateNextState(state, quality, now, s.params), nil
}

// PostponeReview implements Service.PostponeReview.
func (s *defaultService) PostponeReview(
	state domain.SchedulingState,
	days int,
) (domain.SchedulingState, error) {
	if days < 1 {
		return state, ErrInvalidDays
	}

	next := state
	next.NextReviewAt = state.NextReviewAt.AddDate(0, 0, days)
	return next, nil
}

// IsMastered implements Service.IsMastered.
func (s *defaultService) IsMastered(state domain.SchedulingState) bool {
	return isMastered(state, s.params)
}

// Mastery implements Service.Mastery.
func (s *defaultService) Mastery(states []domain.SchedulingState) float64 {
	if len(states) == 0 {
		return 0
	}

	mastered := 0
	for _, st := range states {
		if isMastered(st, s.params) {
			mastered++
		}
	}

	return float64(mastered) / float64(len(states))
}
