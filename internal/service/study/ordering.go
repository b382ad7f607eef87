package study

import (
	"cmp"
	"slices"
	"strings"

	"github.com/phrazzld/scry-study/internal/domain"
)

// SortDue orders cards for review: earliest next review first, then lowest
// easiness factor, then oldest creation time, then ID.
func SortDue(cards []*domain.Card) {
	slices.SortStableFunc(cards, func(a, b *domain.Card) int {
		if c := a.State.NextReviewAt.Compare(b.State.NextReviewAt); c != 0 {
			return c
		}
		if c := cmp.Compare(a.State.EasinessFactor, b.State.EasinessFactor); c != 0 {
			return c
		}
		return compareCreated(a, b)
	})
}

// SortNew orders never-reviewed cards oldest-created first, then by ID.
func SortNew(cards []*domain.Card) {
	slices.SortStableFunc(cards, compareCreated)
}

func compareCreated(a, b *domain.Card) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID.String(), b.ID.String())
}
