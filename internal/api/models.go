package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/service"
	"github.com/samber/lo"
)

// CreateDeckRequest defines the payload for creating a deck.
type CreateDeckRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// CreateCardsRequest defines the payload for adding cards to a deck.
type CreateCardsRequest struct {
	Cards []service.CardInput `json:"cards" validate:"required,min=1,max=500,dive"`
}

// ReviewRequest carries a raw quality grade. The range is checked by the
// review service so every client gets the same error.
type ReviewRequest struct {
	Quality *int `json:"quality" validate:"required"`
}

// PostponeRequest defines the payload for postponing a card.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,min=1,max=3650"`
}

// DeckResponse is the JSON representation of a deck.
type DeckResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Mastery   float64   `json:"mastery"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScheduleResponse is the scheduling state of a card.
type ScheduleResponse struct {
	EaseFactor       float64    `json:"ease_factor"`
	Repetitions      int        `json:"repetitions"`
	IntervalDays     int        `json:"interval_days"`
	ReviewCount      int        `json:"review_count"`
	CorrectStreak    int        `json:"correct_streak"`
	DifficultyRating int        `json:"difficulty_rating"`
	LastReviewedAt   *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt     time.Time  `json:"next_review_at"`
}

// CardResponse is the JSON representation of a card.
type CardResponse struct {
	ID        uuid.UUID        `json:"id"`
	DeckID    uuid.UUID        `json:"deck_id"`
	Front     string           `json:"front"`
	Back      string           `json:"back"`
	Schedule  ScheduleResponse `json:"schedule"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CardListResponse wraps a list of cards.
type CardListResponse struct {
	Cards []CardResponse `json:"cards"`
	Count int            `json:"count"`
}

// DeckListResponse wraps a list of decks.
type DeckListResponse struct {
	Decks []DeckResponse `json:"decks"`
	Count int            `json:"count"`
}

// ReviewResponse is returned after a committed review.
type ReviewResponse struct {
	Card        CardResponse `json:"card"`
	DeckMastery float64      `json:"deck_mastery"`
}

// MasteryResponse is returned by the mastery recompute endpoint.
type MasteryResponse struct {
	DeckID  uuid.UUID `json:"deck_id"`
	Mastery float64   `json:"mastery"`
}

// StatsResponse is a study session snapshot.
type StatsResponse struct {
	DueCards         int  `json:"due_cards"`
	NewCards         int  `json:"new_cards"`
	TotalCards       int  `json:"total_cards"`
	ReviewedToday    int  `json:"reviewed_today"`
	HasCardsToReview bool `json:"has_cards_to_review"`
}

func deckToResponse(deck *domain.Deck) DeckResponse {
	return DeckResponse{
		ID:        deck.ID,
		Name:      deck.Name,
		Mastery:   deck.Mastery,
		CreatedAt: deck.CreatedAt,
		UpdatedAt: deck.UpdatedAt,
	}
}

func cardToResponse(card *domain.Card) CardResponse {
	state := card.State

	var lastReviewed *time.Time
	if state.HasBeenReviewed() {
		lastReviewed = lo.ToPtr(state.LastReviewedAt)
	}

	return CardResponse{
		ID:     card.ID,
		DeckID: card.DeckID,
		Front:  card.Front,
		Back:   card.Back,
		Schedule: ScheduleResponse{
			EaseFactor:       state.EasinessFactor,
			Repetitions:      state.Repetitions,
			IntervalDays:     state.Interval,
			ReviewCount:      state.ReviewCount,
			CorrectStreak:    state.CorrectStreak,
			DifficultyRating: state.DifficultyRating,
			LastReviewedAt:   lastReviewed,
			NextReviewAt:     state.NextReviewAt,
		},
		CreatedAt: card.CreatedAt,
		UpdatedAt: card.UpdatedAt,
	}
}

func cardsToResponse(cards []*domain.Card) CardListResponse {
	return CardListResponse{
		Cards: lo.Map(cards, func(c *domain.Card, _ int) CardResponse { return cardToResponse(c) }),
		Count: len(cards),
	}
}

func statsToResponse(stats domain.StudySessionStats) StatsResponse {
	return StatsResponse{
		DueCards:         stats.DueCards,
		NewCards:         stats.NewCards,
		TotalCards:       stats.TotalCards,
		ReviewedToday:    stats.ReviewedToday,
		HasCardsToReview: stats.HasCardsToReview(),
	}
}
