package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/scry-study/internal/api/middleware"
)

// RequestTimeout bounds every API request.
const RequestTimeout = 30 * time.Second

// NewRouter registers every route on a chi router.
func NewRouter(decks *DeckHandler, cards *CardHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Route("/api", func(r chi.Router) {
		r.Post("/decks", decks.CreateDeck)
		r.Get("/decks", decks.ListDecks)
		r.Get("/decks/{id}", decks.GetDeck)
		r.Post("/decks/{id}/cards", decks.CreateCards)
		r.Post("/decks/{id}/mastery", decks.RecomputeMastery)

		r.Get("/cards/due", cards.GetDueCards)
		r.Get("/cards/new", cards.GetNewCards)
		r.Get("/cards/next", cards.GetNextReviewCard)
		r.Get("/cards/{id}", cards.GetCard)
		r.Delete("/cards/{id}", cards.DeleteCard)
		r.Post("/cards/{id}/review", cards.SubmitReview)
		r.Post("/cards/{id}/postpone", cards.PostponeCard)

		r.Get("/stats", cards.GetStats)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
