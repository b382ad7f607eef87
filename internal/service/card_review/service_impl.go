package card_review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/platform/clock"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/sethvargo/go-retry"
)

// Default retry policy for transient storage failures.
const (
	DefaultMaxRetries     = 3
	DefaultRetryBaseDelay = 20 * time.Millisecond
)

// RetryOptions bounds how often a review transaction is retried.
type RetryOptions struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64
	// BaseDelay is the first backoff delay; later delays double.
	BaseDelay time.Duration
}

// Verify interface compliance at compile time
var _ CardReviewService = (*cardReviewServiceImpl)(nil)

// cardReviewServiceImpl implements the CardReviewService interface.
type cardReviewServiceImpl struct {
	repo       store.Repository
	srsService srs.Service
	clock      clock.Clock
	retry      RetryOptions
	locks      *deckLocks
	logger     *slog.Logger
}

// NewCardReviewService creates a new CardReviewService implementation.
// A zero RetryOptions.BaseDelay selects the defaults.
func NewCardReviewService(
	repo store.Repository,
	srsService srs.Service,
	clk clock.Clock,
	retryOpts RetryOptions,
	logger *slog.Logger,
) CardReviewService {
	// Validate inputs
	if repo == nil {
		panic("repo cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if clk == nil {
		clk = clock.System{}
	}
	if retryOpts.BaseDelay <= 0 {
		retryOpts = RetryOptions{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultRetryBaseDelay}
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &cardReviewServiceImpl{
		repo:       repo,
		srsService: srsService,
		clock:      clk,
		retry:      retryOpts,
		locks:      newDeckLocks(),
		logger:     logger.With(slog.String("component", "card_review_service")),
	}
}

// SubmitRawReview implements CardReviewService.SubmitRawReview.
func (s *cardReviewServiceImpl) SubmitRawReview(
	ctx context.Context,
	cardID uuid.UUID,
	rawQuality int,
) (*ReviewResult, error) {
	quality, err := domain.ParseReviewQuality(rawQuality)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("invalid review quality",
			slog.String("card_id", cardID.String()),
			slog.Int("quality", rawQuality))
		return nil, err
	}
	return s.SubmitReview(ctx, cardID, quality)
}

// SubmitReview implements CardReviewService.SubmitReview.
func (s *cardReviewServiceImpl) SubmitReview(
	ctx context.Context,
	cardID uuid.UUID,
	quality domain.ReviewQuality,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !quality.IsValid() {
		log.Warn("invalid review quality",
			slog.String("card_id", cardID.String()),
			slog.Int("quality", int(quality)))
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuality, int(quality))
	}

	now := s.clock.Now()
	log.Debug("processing review",
		slog.String("card_id", cardID.String()),
		slog.String("quality", quality.String()),
		slog.Time("reviewed_at", now))

	var result *ReviewResult
	err := s.runSerialized(ctx, "submit_review", cardID,
		func(ctx context.Context, cards store.CardStore, decks store.DeckStore) error {
			card, err := cards.GetForUpdate(ctx, cardID)
			if err != nil {
				return err
			}

			next, err := s.srsService.Schedule(card.State, quality, now)
			if err != nil {
				return err
			}

			updated := card.WithState(next, now)
			if err := cards.UpdateSchedule(ctx, updated); err != nil {
				return err
			}

			deck, err := study.UpdateDeckMastery(ctx, cards, decks, s.srsService, card.DeckID, now)
			if err != nil {
				return err
			}

			result = &ReviewResult{Card: updated, Deck: deck}
			return nil
		})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) || errors.Is(err, ErrInvalidQuality) {
			return nil, err
		}
		log.Error("failed to submit review",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, NewSubmitReviewError("failed to record review", err)
	}

	log.Info("review recorded",
		slog.String("card_id", cardID.String()),
		slog.String("quality", quality.String()),
		slog.Float64("easiness_factor", result.Card.State.EasinessFactor),
		slog.Int("interval", result.Card.State.Interval),
		slog.Time("next_review_at", result.Card.State.NextReviewAt),
		slog.Float64("deck_mastery", result.Deck.Mastery))
	return result, nil
}

// PostponeCard implements CardReviewService.PostponeCard.
func (s *cardReviewServiceImpl) PostponeCard(
	ctx context.Context,
	cardID uuid.UUID,
	days int,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if days < 1 {
		return nil, ErrInvalidDays
	}

	now := s.clock.Now()
	var postponed *domain.Card
	err := s.runSerialized(ctx, "postpone_card", cardID,
		func(ctx context.Context, cards store.CardStore, _ store.DeckStore) error {
			card, err := cards.GetForUpdate(ctx, cardID)
			if err != nil {
				return err
			}

			next, err := s.srsService.PostponeReview(card.State, days)
			if err != nil {
				return err
			}

			postponed = card.WithState(next, now)
			return cards.UpdateSchedule(ctx, postponed)
		})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) || errors.Is(err, ErrInvalidDays) {
			return nil, err
		}
		log.Error("failed to postpone card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, NewPostponeCardError("failed to postpone card", err)
	}

	log.Info("card postponed",
		slog.String("card_id", cardID.String()),
		slog.Int("days", days),
		slog.Time("next_review_at", postponed.State.NextReviewAt))
	return postponed, nil
}

// runSerialized runs fn in a transaction while holding the lock of the
// card's deck, retrying the whole transaction on transient storage errors.
// A missing card is reported as ErrCardNotFound.
func (s *cardReviewServiceImpl) runSerialized(
	ctx context.Context,
	operation string,
	cardID uuid.UUID,
	fn store.TxFn,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.repo.Cards().GetByID(ctx, cardID)
	if err != nil {
		return mapNotFound(err)
	}

	unlock := s.locks.lock(card.DeckID)
	defer unlock()

	backoff := retry.WithMaxRetries(s.retry.MaxRetries, retry.NewExponential(s.retry.BaseDelay))
	attempt := 0

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := s.repo.RunInTx(ctx, fn)
		if store.IsTransient(err) {
			log.Warn("transient storage failure, retrying",
				slog.String("operation", operation),
				slog.String("card_id", cardID.String()),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return retry.RetryableError(err)
		}
		return err
	})
	return mapNotFound(err)
}

func mapNotFound(err error) error {
	if errors.Is(err, store.ErrCardNotFound) {
		return ErrCardNotFound
	}
	return err
}
