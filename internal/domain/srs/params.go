package srs

import (
	"github.com/phrazzld/scry-study/internal/domain"
)

// Params defines the constants of the scheduling algorithm. The defaults are
// the only values used in production; every client must agree on them for
// schedules to match, so they are not read from runtime configuration.
type Params struct {
	// Core limits
	MinEaseFactor     float64
	InitialEaseFactor float64

	// Repetition ladder: first and second successful repetitions use fixed
	// intervals, later ones grow by the ease factor.
	FirstInterval  int
	SecondInterval int

	// GraduatingQuality is the lowest grade that advances the repetition
	// ladder. Anything below it resets repetitions and the interval.
	GraduatingQuality domain.ReviewQuality

	// StreakQuality is the lowest grade that extends the correct streak.
	StreakQuality domain.ReviewQuality

	// MasteryEaseThreshold is the ease at or above which a reviewed card
	// counts as mastered even without a current streak.
	MasteryEaseThreshold float64
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	MinEaseFactor        float64
	InitialEaseFactor    float64
	FirstInterval        int
	SecondInterval       int
	MasteryEaseThreshold float64
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:     domain.MinEasinessFactor,
		InitialEaseFactor: domain.DefaultEasinessFactor,

		FirstInterval:  1,
		SecondInterval: 6,

		GraduatingQuality: domain.ReviewQualityEasy,
		StreakQuality:     domain.ReviewQualityGood,

		MasteryEaseThreshold: 2.5,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.InitialEaseFactor > 0 {
		params.InitialEaseFactor = config.InitialEaseFactor
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.MasteryEaseThreshold > 0 {
		params.MasteryEaseThreshold = config.MasteryEaseThreshold
	}

	return params
}
