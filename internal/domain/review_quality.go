package domain

import (
	"fmt"
	"strings"
)

// ReviewQuality is the learner's self-assessment of recall for a single
// review. Values are ordered by recall quality and used as integers 0..3
// by the scheduler.
type ReviewQuality int

// Possible review quality values.
const (
	ReviewQualityAgain ReviewQuality = 0
	ReviewQualityHard  ReviewQuality = 1
	ReviewQualityGood  ReviewQuality = 2
	ReviewQualityEasy  ReviewQuality = 3
)

var reviewQualityNames = map[ReviewQuality]string{
	ReviewQualityAgain: "again",
	ReviewQualityHard:  "hard",
	ReviewQualityGood:  "good",
	ReviewQualityEasy:  "easy",
}

// IsValid reports whether q is one of the four defined grades.
func (q ReviewQuality) IsValid() bool {
	return q >= ReviewQualityAgain && q <= ReviewQualityEasy
}

// String returns the lower-case grade name.
func (q ReviewQuality) String() string {
	if name, ok := reviewQualityNames[q]; ok {
		return name
	}
	return fmt.Sprintf("ReviewQuality(%d)", int(q))
}

// ParseReviewQuality converts a raw integer received at a boundary (HTTP,
// CLI) into a ReviewQuality. Anything outside 0..3 is rejected with
// ErrInvalidQuality.
func ParseReviewQuality(raw int) (ReviewQuality, error) {
	q := ReviewQuality(raw)
	if !q.IsValid() {
		return 0, fmt.Errorf("%w: %d is outside 0..3", ErrInvalidQuality, raw)
	}
	return q, nil
}

// ParseReviewQualityName converts a grade name ("again", "hard", "good",
// "easy", case-insensitive) into a ReviewQuality.
func ParseReviewQualityName(name string) (ReviewQuality, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for q, n := range reviewQualityNames {
		if n == normalized {
			return q, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown grade %q", ErrInvalidQuality, name)
}
