package srs

import (
	"testing"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allQualities = []domain.ReviewQuality{
	domain.ReviewQualityAgain,
	domain.ReviewQualityHard,
	domain.ReviewQualityGood,
	domain.ReviewQualityEasy,
}

func newCardState() domain.SchedulingState {
	return domain.NewSchedulingState(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
}

func TestNewDefaultService(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	require.NotNil(t, service)

	impl, ok := service.(*defaultService)
	require.True(t, ok, "expected *defaultService")
	require.NotNil(t, impl.params)
	assert.Equal(t, 1.3, impl.params.MinEaseFactor)
}

func TestScheduleNewCardEasy(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	next, err := service.Schedule(newCardState(), domain.ReviewQualityEasy, now)
	require.NoError(t, err)

	assert.Equal(t, 1, next.Repetitions)
	assert.Equal(t, 1, next.Interval)
	assert.Equal(t, 1, next.ReviewCount)
	assert.Equal(t, 1, next.CorrectStreak)
	assert.Equal(t, 2, next.DifficultyRating)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), next.NextReviewAt)
	assert.InDelta(t, expectedEase(2.5, domain.ReviewQualityEasy), next.EasinessFactor, 1e-12)
	assert.InDelta(t, 2.36, next.EasinessFactor, 1e-9)
}

func TestScheduleNewCardAgain(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	next, err := service.Schedule(newCardState(), domain.ReviewQualityAgain, now)
	require.NoError(t, err)

	assert.Equal(t, 0, next.Repetitions)
	assert.Equal(t, 1, next.Interval)
	assert.Equal(t, 1, next.ReviewCount)
	assert.Equal(t, 0, next.CorrectStreak)
	assert.Equal(t, 5, next.DifficultyRating)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), next.NextReviewAt)
}

func TestScheduleEasyLadder(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	state := newCardState()
	var intervals []int
	for i := 0; i < 3; i++ {
		var err error
		state, err = service.Schedule(state, domain.ReviewQualityEasy, now)
		require.NoError(t, err)
		intervals = append(intervals, state.Interval)
		now = state.NextReviewAt
	}

	thirdEase := expectedEase(expectedEase(expectedEase(2.5, domain.ReviewQualityEasy), domain.ReviewQualityEasy), domain.ReviewQualityEasy)
	assert.Equal(t, []int{1, 6, int(6 * thirdEase)}, intervals)
	assert.Equal(t, 12, intervals[2])
	assert.Equal(t, 3, state.Repetitions)
	assert.Equal(t, 3, state.CorrectStreak)
}

func TestScheduleProperties(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	starts := []domain.SchedulingState{
		newCardState(),
		{EasinessFactor: 1.3, Repetitions: 0, Interval: 1, ReviewCount: 9, CorrectStreak: 0, NextReviewAt: now},
		{EasinessFactor: 1.31, Repetitions: 7, Interval: 120, ReviewCount: 30, CorrectStreak: 12, NextReviewAt: now},
		{EasinessFactor: 3.4, Repetitions: 2, Interval: 6, ReviewCount: 2, CorrectStreak: 2, NextReviewAt: now},
	}

	for _, start := range starts {
		for _, q := range allQualities {
			next, err := service.Schedule(start, q, now)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, next.EasinessFactor, 1.3, "ease floor")
			assert.Equal(t, start.ReviewCount+1, next.ReviewCount, "review count increments")

			if q < domain.ReviewQualityGood {
				assert.Equal(t, 0, next.CorrectStreak, "failure resets streak")
			} else {
				assert.Equal(t, start.CorrectStreak+1, next.CorrectStreak, "success extends streak")
			}

			if q != domain.ReviewQualityEasy {
				assert.Equal(t, 0, next.Repetitions, "non-Easy collapses repetitions")
				assert.Equal(t, 1, next.Interval, "non-Easy collapses interval")
			}

			assert.GreaterOrEqual(t, next.Interval, 1)
			assert.NoError(t, next.Validate())
		}
	}
}

func TestScheduleRejectsInvalidQuality(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	state := newCardState()

	for _, q := range []domain.ReviewQuality{-1, 4} {
		next, err := service.Schedule(state, q, time.Now())
		assert.ErrorIs(t, err, domain.ErrInvalidQuality)
		assert.Equal(t, state, next)
	}
}

func TestPostponeReview(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	state := newCardState()
	state.ReviewCount = 3
	state.Interval = 6

	next, err := service.PostponeReview(state, 2)
	require.NoError(t, err)
	assert.Equal(t, state.NextReviewAt.AddDate(0, 0, 2), next.NextReviewAt)
	assert.Equal(t, 3, next.ReviewCount)
	assert.Equal(t, 6, next.Interval)

	_, err = service.PostponeReview(state, 0)
	assert.ErrorIs(t, err, ErrInvalidDays)
}

func TestMastery(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	assert.Equal(t, 0.0, service.Mastery(nil), "empty deck")

	states := []domain.SchedulingState{
		{ReviewCount: 0, EasinessFactor: 2.5},                    // new
		{ReviewCount: 1, EasinessFactor: 2.36, CorrectStreak: 1}, // mastered by streak
		{ReviewCount: 3, EasinessFactor: 1.3, CorrectStreak: 0},  // lapsed
		{ReviewCount: 1, EasinessFactor: 2.6, CorrectStreak: 0},  // mastered by ease
	}
	got := service.Mastery(states)
	assert.Equal(t, 0.5, got)
	assert.Equal(t, got, service.Mastery(states), "idempotent")

	for i := range states {
		m := service.Mastery(states[:i+1])
		assert.GreaterOrEqual(t, m, 0.0)
		assert.LessOrEqual(t, m, 1.0)
	}
}

func TestNewParamsOverrides(t *testing.T) {
	t.Parallel()
	params := NewParams(ParamsConfig{SecondInterval: 4})
	assert.Equal(t, 4, params.SecondInterval)
	assert.Equal(t, 1, params.FirstInterval)
	assert.Equal(t, 1.3, params.MinEaseFactor)
	assert.Equal(t, domain.ReviewQualityEasy, params.GraduatingQuality)
}
