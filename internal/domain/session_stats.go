package domain

// StudySessionStats is a read-only snapshot of what is waiting to be studied.
// NewCards is capped by the new-card limit used to build the snapshot.
type StudySessionStats struct {
	DueCards      int `json:"due_cards"`
	NewCards      int `json:"new_cards"`
	TotalCards    int `json:"total_cards"`
	ReviewedToday int `json:"reviewed_today"`
}

// HasCardsToReview reports whether anything is due or new.
func (s StudySessionStats) HasCardsToReview() bool {
	return s.DueCards > 0 || s.NewCards > 0
}
