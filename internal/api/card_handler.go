package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-study/internal/api/shared"
	"github.com/phrazzld/scry-study/internal/platform/clock"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/service"
	"github.com/phrazzld/scry-study/internal/service/card_review"
	"github.com/phrazzld/scry-study/internal/service/study"
)

// CardHandler handles card study and review requests
type CardHandler struct {
	cardReviewService card_review.CardReviewService
	cardService       service.CardService
	studyService      study.Service
	clock             clock.Clock
	logger            *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(
	cardReviewService card_review.CardReviewService,
	cardService service.CardService,
	studyService study.Service,
	clk clock.Clock,
	logger *slog.Logger,
) *CardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}
	if clk == nil {
		clk = clock.System{}
	}

	return &CardHandler{
		cardReviewService: cardReviewService,
		cardService:       cardService,
		studyService:      studyService,
		clock:             clk,
		logger:            logger.With(slog.String("component", "card_handler")),
	}
}

// GetDueCards handles GET /cards/due requests
func (h *CardHandler) GetDueCards(w http.ResponseWriter, r *http.Request) {
	filter, err := deckFilterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cards, err := h.studyService.DueCards(r.Context(), filter, h.clock.Now())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get due cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// GetNewCards handles GET /cards/new requests
// An absent or zero limit uses the configured default.
func (h *CardHandler) GetNewCards(w http.ResponseWriter, r *http.Request) {
	filter, err := deckFilterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cards, err := h.studyService.NewCards(r.Context(), filter, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get new cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// GetNextReviewCard handles GET /cards/next requests
// It responds 204 when nothing is due and no new cards remain.
func (h *CardHandler) GetNextReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	filter, err := deckFilterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.studyService.NextCard(r.Context(), filter, h.clock.Now())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get next review card")
		return
	}

	log.Debug("successfully retrieved next review card", slog.String("card_id", card.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// GetCard handles GET /cards/{id} requests
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.cardService.GetCard(r.Context(), cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// DeleteCard handles DELETE /cards/{id} requests
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.cardService.DeleteCard(r.Context(), cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SubmitReview handles POST /cards/{id}/review requests
// It records a review and returns the rescheduled card with its deck's new mastery.
func (h *CardHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	result, err := h.cardReviewService.SubmitRawReview(r.Context(), cardID, *req.Quality)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("successfully submitted review",
		slog.String("card_id", cardID.String()),
		slog.Int("quality", *req.Quality))
	shared.RespondWithJSON(w, r, http.StatusOK, ReviewResponse{
		Card:        cardToResponse(result.Card),
		DeckMastery: result.Deck.Mastery,
	})
}

// PostponeCard handles POST /cards/{id}/postpone requests
func (h *CardHandler) PostponeCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cardID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req PostponeRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	card, err := h.cardReviewService.PostponeCard(r.Context(), cardID, req.Days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to postpone card")
		return
	}

	log.Debug("card postponed",
		slog.String("card_id", cardID.String()),
		slog.Int("days", req.Days))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// GetStats handles GET /stats requests
func (h *CardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	filter, err := deckFilterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	stats, err := h.studyService.SessionStats(r.Context(), filter, h.clock.Now())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get session stats")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, statsToResponse(stats))
}
