package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/api"
	apiMiddleware "github.com/phrazzld/scry-study/internal/api/middleware"
	"github.com/phrazzld/scry-study/internal/api/shared"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/platform/clock"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/platform/memory"
	"github.com/phrazzld/scry-study/internal/service"
	"github.com/phrazzld/scry-study/internal/service/card_review"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	clock   *clock.Manual
	logs    *logger.TestLogBuffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log, buf := logger.GetTestLogger(t)
	repo := memory.NewRepository()
	clk := clock.NewManual(now)
	scheduler := srs.NewDefaultService()

	cardSvc, err := service.NewCardService(repo, scheduler, clk, log)
	require.NoError(t, err)
	studySvc := study.NewService(repo, scheduler, clk, study.Options{}, log)
	reviewSvc := card_review.NewCardReviewService(repo, scheduler, clk, card_review.RetryOptions{}, log)

	router := api.NewRouter(
		api.NewDeckHandler(cardSvc, studySvc, log),
		api.NewCardHandler(reviewSvc, cardSvc, studySvc, clk, log),
		log,
	)
	return &testServer{handler: router, clock: clk, logs: buf}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s *testServer) createDeck(t *testing.T, name string) api.DeckResponse {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/decks", api.CreateDeckRequest{Name: name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[api.DeckResponse](t, w)
}

func (s *testServer) createCards(t *testing.T, deckID uuid.UUID, fronts ...string) []api.CardResponse {
	t.Helper()

	req := api.CreateCardsRequest{}
	for _, f := range fronts {
		req.Cards = append(req.Cards, service.CardInput{Front: f, Back: "back of " + f})
	}

	w := s.do(t, http.MethodPost, "/api/decks/"+deckID.String()+"/cards", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[api.CardListResponse](t, w).Cards
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestDeckEndpoints(t *testing.T) {
	s := newTestServer(t)

	deck := s.createDeck(t, "Italian")
	assert.Equal(t, "Italian", deck.Name)
	assert.Zero(t, deck.Mastery)

	w := s.do(t, http.MethodGet, "/api/decks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[api.DeckListResponse](t, w)
	assert.Equal(t, 1, list.Count)

	w = s.do(t, http.MethodGet, "/api/decks/"+deck.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, deck.ID, decode[api.DeckResponse](t, w).ID)

	tests := []struct {
		name    string
		method  string
		path    string
		body    interface{}
		status  int
		message string
	}{
		{"malformed id", http.MethodGet, "/api/decks/not-a-uuid", nil, http.StatusBadRequest, "Invalid ID format"},
		{"unknown deck", http.MethodGet, "/api/decks/" + uuid.NewString(), nil, http.StatusNotFound, "Deck not found"},
		{"missing name", http.MethodPost, "/api/decks", map[string]string{}, http.StatusBadRequest, "Invalid Name: required field"},
		{"malformed body", http.MethodPost, "/api/decks", `{"name":`, http.StatusBadRequest, "Invalid request format"},
		{"unknown field", http.MethodPost, "/api/decks", `{"title":"x"}`, http.StatusBadRequest, "Invalid request format"},
		{"blank name", http.MethodPost, "/api/decks", api.CreateDeckRequest{Name: "   "}, http.StatusBadRequest, "Invalid entity data"},
		{
			"cards for unknown deck", http.MethodPost, "/api/decks/" + uuid.NewString() + "/cards",
			api.CreateCardsRequest{Cards: []service.CardInput{{Front: "q"}}}, http.StatusNotFound, "Deck not found",
		},
		{
			"no cards", http.MethodPost, "/api/decks/" + deck.ID.String() + "/cards",
			api.CreateCardsRequest{}, http.StatusBadRequest, "Invalid Cards: required field",
		},
		{
			"card without front", http.MethodPost, "/api/decks/" + deck.ID.String() + "/cards",
			api.CreateCardsRequest{Cards: []service.CardInput{{Back: "a"}}}, http.StatusBadRequest, "Invalid Front: required field",
		},
		{"mastery for unknown deck", http.MethodPost, "/api/decks/" + uuid.NewString() + "/mastery", nil, http.StatusNotFound, "Deck not found"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())

			resp := decode[shared.ErrorResponse](t, w)
			assert.Equal(t, tc.message, resp.Error)
			assert.NotEmpty(t, resp.TraceID)
			assert.Equal(t, resp.TraceID, w.Header().Get(apiMiddleware.TraceHeader))
		})
	}
}

func TestStudyFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/cards/next", nil)
	assert.Equal(t, http.StatusNoContent, w.Code, "empty collection has nothing to study")
	assert.Empty(t, w.Body.String())

	deck := s.createDeck(t, "Capitals")
	cards := s.createCards(t, deck.ID, "France", "Peru")
	require.Len(t, cards, 2)
	assert.Equal(t, now, cards[0].Schedule.NextReviewAt)
	assert.Nil(t, cards[0].Schedule.LastReviewedAt)

	deckQuery := "?deck_id=" + deck.ID.String()

	w = s.do(t, http.MethodGet, "/api/cards/new"+deckQuery+"&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	newCards := decode[api.CardListResponse](t, w)
	require.Equal(t, 1, newCards.Count)
	// Same creation time, so the ID breaks the tie.
	oldest := cards[0]
	if cards[1].ID.String() < oldest.ID.String() {
		oldest = cards[1]
	}
	assert.Equal(t, oldest.ID, newCards.Cards[0].ID)

	w = s.do(t, http.MethodGet, "/api/cards/due"+deckQuery, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[api.CardListResponse](t, w).Count)

	w = s.do(t, http.MethodGet, "/api/cards/next"+deckQuery, nil)
	require.Equal(t, http.StatusOK, w.Code)
	next := decode[api.CardResponse](t, w)

	// Easy on a fresh card graduates it.
	w = s.do(t, http.MethodPost, "/api/cards/"+next.ID.String()+"/review", map[string]int{"quality": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	review := decode[api.ReviewResponse](t, w)
	assert.InDelta(t, 2.36, review.Card.Schedule.EaseFactor, 1e-9)
	assert.Equal(t, 1, review.Card.Schedule.Repetitions)
	assert.Equal(t, 1, review.Card.Schedule.ReviewCount)
	assert.Equal(t, 2, review.Card.Schedule.DifficultyRating)
	assert.Equal(t, now.AddDate(0, 0, 1), review.Card.Schedule.NextReviewAt)
	require.NotNil(t, review.Card.Schedule.LastReviewedAt)
	assert.Equal(t, now, *review.Card.Schedule.LastReviewedAt)
	assert.InDelta(t, 0.5, review.DeckMastery, 1e-9)

	w = s.do(t, http.MethodGet, "/api/stats"+deckQuery, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, api.StatsResponse{
		DueCards:         1,
		NewCards:         1,
		TotalCards:       2,
		ReviewedToday:    1,
		HasCardsToReview: true,
	}, decode[api.StatsResponse](t, w))

	w = s.do(t, http.MethodPost, "/api/decks/"+deck.ID.String()+"/mastery", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 0.5, decode[api.MasteryResponse](t, w).Mastery, 1e-9)

	other := cards[1]
	if other.ID == next.ID {
		other = cards[0]
	}
	w = s.do(t, http.MethodPost, "/api/cards/"+other.ID.String()+"/postpone", api.PostponeRequest{Days: 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	postponed := decode[api.CardResponse](t, w)
	assert.Equal(t, now.AddDate(0, 0, 3), postponed.Schedule.NextReviewAt)
	assert.Zero(t, postponed.Schedule.ReviewCount)

	w = s.do(t, http.MethodGet, "/api/cards/due"+deckQuery, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[api.CardListResponse](t, w).Count)

	w = s.do(t, http.MethodDelete, "/api/cards/"+other.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/cards/"+other.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/decks/"+deck.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 1.0, decode[api.DeckResponse](t, w).Mastery, 1e-9)
}

func TestCardEndpointErrors(t *testing.T) {
	s := newTestServer(t)
	deck := s.createDeck(t, "Capitals")
	card := s.createCards(t, deck.ID, "France")[0]
	cardPath := "/api/cards/" + card.ID.String()

	tests := []struct {
		name    string
		method  string
		path    string
		body    interface{}
		status  int
		message string
	}{
		{"quality out of range", http.MethodPost, cardPath + "/review", map[string]int{"quality": 7}, http.StatusBadRequest, "Quality must be between 0 and 3"},
		{"negative quality", http.MethodPost, cardPath + "/review", map[string]int{"quality": -1}, http.StatusBadRequest, "Quality must be between 0 and 3"},
		{"missing quality", http.MethodPost, cardPath + "/review", map[string]int{}, http.StatusBadRequest, "Invalid Quality: required field"},
		{"empty body", http.MethodPost, cardPath + "/review", nil, http.StatusBadRequest, "Invalid request format"},
		{"review unknown card", http.MethodPost, "/api/cards/" + uuid.NewString() + "/review", map[string]int{"quality": 2}, http.StatusNotFound, "Card not found"},
		{"review malformed id", http.MethodPost, "/api/cards/123/review", map[string]int{"quality": 2}, http.StatusBadRequest, "Invalid ID format"},
		{"postpone zero days", http.MethodPost, cardPath + "/postpone", api.PostponeRequest{}, http.StatusBadRequest, "Invalid Days: required field"},
		{"postpone unknown card", http.MethodPost, "/api/cards/" + uuid.NewString() + "/postpone", api.PostponeRequest{Days: 1}, http.StatusNotFound, "Card not found"},
		{"bad deck filter", http.MethodGet, "/api/cards/due?deck_id=nope", nil, http.StatusBadRequest, "Invalid ID format"},
		{"bad limit", http.MethodGet, "/api/cards/new?limit=-1", nil, http.StatusBadRequest, "Invalid query parameter"},
		{"delete unknown card", http.MethodDelete, "/api/cards/" + uuid.NewString(), nil, http.StatusNotFound, "Card not found"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, tc.message, decode[shared.ErrorResponse](t, w).Error)
		})
	}

	// Rejected reviews leave the schedule untouched.
	w := s.do(t, http.MethodGet, cardPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[api.CardResponse](t, w).Schedule.ReviewCount)
}

func TestNextCardOrdersByNextReview(t *testing.T) {
	s := newTestServer(t)
	deck := s.createDeck(t, "Capitals")
	first := s.createCards(t, deck.ID, "France")[0]

	s.clock.Advance(time.Hour)
	second := s.createCards(t, deck.ID, "Peru")[0]

	// Review the older card with Again so it is due again tomorrow, then
	// step past that point: the reviewed card outranks the newer one.
	w := s.do(t, http.MethodPost, "/api/cards/"+first.ID.String()+"/review", map[string]int{"quality": 0})
	require.Equal(t, http.StatusOK, w.Code)
	s.clock.Advance(48 * time.Hour)

	w = s.do(t, http.MethodGet, "/api/cards/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, second.ID, decode[api.CardResponse](t, w).ID,
		"new card became due earlier than the reviewed card's next review")
}
