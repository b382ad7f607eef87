package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/api"
	"github.com/phrazzld/scry-study/internal/api/shared"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/platform/clock"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/platform/memory"
	"github.com/phrazzld/scry-study/internal/service"
	"github.com/phrazzld/scry-study/internal/service/card_review"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitReview_StorageFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name: "conflict after retries",
			err: card_review.NewSubmitReviewError("retries exhausted",
				store.NewStoreError("transaction", "run_in_tx", "commit failed", store.ErrConflict)),
			status:  http.StatusConflict,
			message: "Concurrent update, please retry",
		},
		{
			name: "storage unreachable",
			err: card_review.NewSubmitReviewError("failed to submit review",
				store.NewStoreError("card", "get_for_update", "dial postgres://scry:pw@db/scry", store.ErrUnavailable)),
			status:  http.StatusServiceUnavailable,
			message: "Storage temporarily unavailable",
		},
		{
			name:    "unexpected",
			err:     card_review.NewSubmitReviewError("boom", nil),
			status:  http.StatusInternalServerError,
			message: "Failed to submit review",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log, buf := logger.GetTestLogger(t)
			repo := memory.NewRepository()
			clk := clock.NewManual(now)
			scheduler := srs.NewDefaultService()

			var gotQuality int
			reviews := &card_review.MockCardReviewService{
				SubmitRawReviewFunc: func(_ context.Context, _ uuid.UUID, raw int) (*card_review.ReviewResult, error) {
					gotQuality = raw
					return nil, tc.err
				},
			}

			cardSvc, err := service.NewCardService(repo, scheduler, clk, log)
			require.NoError(t, err)
			studySvc := study.NewService(repo, scheduler, clk, study.Options{}, log)
			s := &testServer{
				handler: api.NewRouter(
					api.NewDeckHandler(cardSvc, studySvc, log),
					api.NewCardHandler(reviews, cardSvc, studySvc, clk, log),
					log,
				),
				clock: clk,
				logs:  buf,
			}

			w := s.do(t, http.MethodPost, "/api/cards/"+uuid.NewString()+"/review",
				map[string]int{"quality": int(domain.ReviewQualityGood)})

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.message, decode[shared.ErrorResponse](t, w).Error)
			assert.Equal(t, int(domain.ReviewQualityGood), gotQuality)
			assert.NotContains(t, buf.String(), "scry:pw")
		})
	}
}
