package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-study/internal/api/shared"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/service"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/samber/lo"
)

// DeckHandler handles deck and card management requests.
type DeckHandler struct {
	cardService  service.CardService
	studyService study.Service
	logger       *slog.Logger
}

// NewDeckHandler creates a new DeckHandler
func NewDeckHandler(
	cardService service.CardService,
	studyService study.Service,
	logger *slog.Logger,
) *DeckHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DeckHandler")
	}

	return &DeckHandler{
		cardService:  cardService,
		studyService: studyService,
		logger:       logger.With(slog.String("component", "deck_handler")),
	}
}

// CreateDeck handles POST /decks requests
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateDeckRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	deck, err := h.cardService.CreateDeck(r.Context(), req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create deck")
		return
	}

	log.Debug("deck created", slog.String("deck_id", deck.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, deckToResponse(deck))
}

// ListDecks handles GET /decks requests
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.cardService.ListDecks(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list decks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeckListResponse{
		Decks: lo.Map(decks, func(d *domain.Deck, _ int) DeckResponse { return deckToResponse(d) }),
		Count: len(decks),
	})
}

// GetDeck handles GET /decks/{id} requests
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	deck, err := h.cardService.GetDeck(r.Context(), deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get deck")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(deck))
}

// CreateCards handles POST /decks/{id}/cards requests
// All cards are stored in one transaction; the response lists them in
// request order.
func (h *DeckHandler) CreateCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	deckID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req CreateCardsRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	cards, err := h.cardService.CreateCards(r.Context(), deckID, req.Cards)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create cards")
		return
	}

	log.Debug("cards created",
		slog.String("deck_id", deckID.String()),
		slog.Int("card_count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardsToResponse(cards))
}

// RecomputeMastery handles POST /decks/{id}/mastery requests
func (h *DeckHandler) RecomputeMastery(w http.ResponseWriter, r *http.Request) {
	deckID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	mastery, err := h.studyService.RecomputeMastery(r.Context(), deckID)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			err = service.ErrDeckNotFound
		}
		HandleAPIError(w, r, err, "Failed to recompute mastery")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MasteryResponse{DeckID: deckID, Mastery: mastery})
}
