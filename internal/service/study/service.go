package study

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
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/samber/lo"
)

// DefaultNewCardLimit caps NewCards when the caller passes no limit.
const DefaultNewCardLimit = 10

// ErrNoCardsDue indicates that nothing is due and no new cards remain.
var ErrNoCardsDue = errors.New("no cards due for review")

// Service answers due-set, mastery and session-stats queries.
type Service interface {
	// DueCards returns cards whose next review is at or before now, in
	// review order (see SortDue).
	DueCards(ctx context.Context, deck store.DeckFilter, now time.Time) ([]*domain.Card, error)

	// NewCards returns up to limit never-reviewed cards, oldest first.
	// A limit of zero or less uses the configured default.
	NewCards(ctx context.Context, deck store.DeckFilter, limit int) ([]*domain.Card, error)

	// NextCard returns the first due card, or else the first new card.
	// Returns ErrNoCardsDue when there is neither.
	NextCard(ctx context.Context, deck store.DeckFilter, now time.Time) (*domain.Card, error)

	// RecomputeMastery recomputes the deck's mastery from its cards,
	// persists it and returns it. Returns store.ErrDeckNotFound for an
	// unknown deck.
	RecomputeMastery(ctx context.Context, deckID uuid.UUID) (float64, error)

	// SessionStats summarizes the study session as of now.
	SessionStats(ctx context.Context, deck store.DeckFilter, now time.Time) (domain.StudySessionStats, error)
}

// Options tunes the service.
type Options struct {
	// NewCardLimit is the default NewCards limit, also used for the
	// session's new-card count. Zero means DefaultNewCardLimit.
	NewCardLimit int

	// Location defines calendar days for SessionStats. Nil means UTC.
	Location *time.Location
}

type serviceImpl struct {
	repo     store.Repository
	srs      srs.Service
	clock    clock.Clock
	newLimit int
	loc      *time.Location
	logger   *slog.Logger
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// NewService creates a study Service.
func NewService(
	repo store.Repository,
	srsService srs.Service,
	clk clock.Clock,
	opts Options,
	logger *slog.Logger,
) Service {
	if repo == nil {
		panic("repo cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if clk == nil {
		clk = clock.System{}
	}
	if opts.NewCardLimit <= 0 {
		opts.NewCardLimit = DefaultNewCardLimit
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		repo:     repo,
		srs:      srsService,
		clock:    clk,
		newLimit: opts.NewCardLimit,
		loc:      opts.Location,
		logger:   logger.With(slog.String("component", "study_service")),
	}
}

func (s *serviceImpl) DueCards(
	ctx context.Context,
	deck store.DeckFilter,
	now time.Time,
) ([]*domain.Card, error) {
	cards, err := s.repo.Cards().FetchCardsByDueDate(ctx, deck, now)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to fetch due cards",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch due cards: %w", err)
	}
	SortDue(cards)
	return cards, nil
}

func (s *serviceImpl) NewCards(
	ctx context.Context,
	deck store.DeckFilter,
	limit int,
) ([]*domain.Card, error) {
	if limit <= 0 {
		limit = s.newLimit
	}

	cards, err := s.repo.Cards().FetchCardsByReviewCount(ctx, deck, 0)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to fetch new cards",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch new cards: %w", err)
	}
	SortNew(cards)
	if len(cards) > limit {
		cards = cards[:limit]
	}
	return cards, nil
}

func (s *serviceImpl) NextCard(
	ctx context.Context,
	deck store.DeckFilter,
	now time.Time,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	due, err := s.DueCards(ctx, deck, now)
	if err != nil {
		return nil, err
	}
	if len(due) > 0 {
		log.Debug("next card is due", slog.String("card_id", due[0].ID.String()))
		return due[0], nil
	}

	fresh, err := s.NewCards(ctx, deck, 1)
	if err != nil {
		return nil, err
	}
	if len(fresh) > 0 {
		log.Debug("next card is new", slog.String("card_id", fresh[0].ID.String()))
		return fresh[0], nil
	}

	log.Debug("no cards to study")
	return nil, ErrNoCardsDue
}

func (s *serviceImpl) RecomputeMastery(ctx context.Context, deckID uuid.UUID) (float64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var mastery float64
	err := s.repo.RunInTx(ctx, func(ctx context.Context, cards store.CardStore, decks store.DeckStore) error {
		deck, err := UpdateDeckMastery(ctx, cards, decks, s.srs, deckID, s.clock.Now())
		if err != nil {
			return err
		}
		mastery = deck.Mastery
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return 0, err
		}
		log.Error("failed to recompute mastery",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return 0, fmt.Errorf("failed to recompute mastery: %w", err)
	}

	log.Info("deck mastery recomputed",
		slog.String("deck_id", deckID.String()),
		slog.Float64("mastery", mastery))
	return mastery, nil
}

// SessionStats derives every count from a single read of the deck's cards,
// so due, new, total and reviewed-today describe the same repository state.
func (s *serviceImpl) SessionStats(
	ctx context.Context,
	deck store.DeckFilter,
	now time.Time,
) (domain.StudySessionStats, error) {
	var stats domain.StudySessionStats

	all, err := s.repo.Cards().FetchCards(ctx, deck)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to gather session stats",
			slog.String("error", err.Error()))
		return stats, fmt.Errorf("failed to gather session stats: %w", err)
	}

	start := StartOfDay(now, s.loc)
	end := start.AddDate(0, 0, 1)

	stats.DueCards = lo.CountBy(all, func(c *domain.Card) bool {
		return !c.State.NextReviewAt.After(now)
	})
	stats.NewCards = min(lo.CountBy(all, func(c *domain.Card) bool {
		return c.State.ReviewCount == 0
	}), s.newLimit)
	stats.TotalCards = len(all)
	stats.ReviewedToday = lo.CountBy(all, func(c *domain.Card) bool {
		last := c.State.LastReviewedAt
		return !last.IsZero() && !last.Before(start) && last.Before(end)
	})
	return stats, nil
}

// StartOfDay returns midnight of now's calendar day in loc.
func StartOfDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
