package srs

import (
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// calculateNewEaseFactor applies the ease update for a review of quality q.
//
// Other clients evaluate the same sequence of float operations, so the steps
// must stay in this order. It is the SM-2 shape evaluated on a 0..3 scale:
// every grade lowers the ease and poorer grades lower it more.
//
//	qualityFactor = 5 - q
//	change        = 0.1 - qualityFactor*(0.08 + qualityFactor*0.02)
//
// The result never drops below params.MinEaseFactor. There is no ceiling.
func calculateNewEaseFactor(currentEF float64, quality domain.ReviewQuality, params *Params) float64 {
	q := int(quality)
	qualityDiff := 5 - q
	qualityFactor := float64(qualityDiff)
	innerCalc := 0.08 + qualityFactor*0.02
	outerCalc := qualityFactor * innerCalc
	easinessChange := 0.1 - outerCalc

	newEF := currentEF + easinessChange
	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateRepetitionsAndInterval advances or resets the repetition ladder.
//
// Only grades at or above params.GraduatingQuality (Easy) advance it; Good
// still extends the correct streak but resets the interval like a failure.
// Later rungs multiply the previous interval by the new ease and truncate
// toward zero.
func calculateRepetitionsAndInterval(
	repetitions int,
	previousInterval int,
	newEaseFactor float64,
	quality domain.ReviewQuality,
	params *Params,
) (int, int) {
	if quality < params.GraduatingQuality {
		return 0, params.FirstInterval
	}

	repetitions++
	switch repetitions {
	case 1:
		return repetitions, params.FirstInterval
	case 2:
		return repetitions, params.SecondInterval
	default:
		return repetitions, int(float64(previousInterval) * newEaseFactor)
	}
}

// calculateNextState returns the state after a review of the given quality
// at now. The input is not modified.
func calculateNextState(
	state domain.SchedulingState,
	quality domain.ReviewQuality,
	now time.Time,
	params *Params,
) domain.SchedulingState {
	next := state

	next.EasinessFactor = calculateNewEaseFactor(state.EasinessFactor, quality, params)
	next.Repetitions, next.Interval = calculateRepetitionsAndInterval(
		state.Repetitions,
		state.Interval,
		next.EasinessFactor,
		quality,
		params,
	)

	next.ReviewCount = state.ReviewCount + 1
	next.LastReviewedAt = now
	next.NextReviewAt = now.AddDate(0, 0, next.Interval)

	if quality >= params.StreakQuality {
		next.CorrectStreak = state.CorrectStreak + 1
	} else {
		next.CorrectStreak = 0
	}

	next.DifficultyRating = domain.MaxDifficultyRating - int(quality)

	return next
}

// isMastered reports whether a card state counts toward deck mastery: it
// was reviewed at least once and either carries a streak or has kept a high
// ease.
func isMastered(state domain.SchedulingState, params *Params) bool {
	if state.ReviewCount < 1 {
		return false
	}
	return state.CorrectStreak >= 1 || state.EasinessFactor >= params.MasteryEaseThreshold
}
