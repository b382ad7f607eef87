package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/platform/clock"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/store"
)

// CardInput is the content of a card to create.
type CardInput struct {
	Front string `json:"front" validate:"required,max=4000"`
	Back  string `json:"back" validate:"max=4000"`
}

// CardService manages decks and the cards in them.
type CardService interface {
	// CreateDeck creates an empty deck.
	CreateDeck(ctx context.Context, name string) (*domain.Deck, error)

	// ListDecks returns all decks, oldest first.
	ListDecks(ctx context.Context) ([]*domain.Deck, error)

	// GetDeck retrieves a deck by its ID.
	GetDeck(ctx context.Context, deckID uuid.UUID) (*domain.Deck, error)

	// CreateCards adds cards to a deck in a single transaction and
	// recomputes the deck's mastery.
	CreateCards(ctx context.Context, deckID uuid.UUID, inputs []CardInput) ([]*domain.Card, error)

	// GetCard retrieves a card by its ID.
	GetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)

	// DeleteCard removes a card and recomputes its deck's mastery.
	DeleteCard(ctx context.Context, cardID uuid.UUID) error
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	repo       store.Repository
	srsService srs.Service
	clock      clock.Clock
	logger     *slog.Logger
}

// NewCardService creates a new CardService
// It returns an error if any of the required dependencies are nil.
func NewCardService(
	repo store.Repository,
	srsService srs.Service,
	clk clock.Clock,
	logger *slog.Logger,
) (CardService, error) {
	// Validate dependencies
	if repo == nil {
		return nil, NewCardServiceError("new", "repo cannot be nil", domain.ErrValidation)
	}
	if srsService == nil {
		return nil, NewCardServiceError("new", "srsService cannot be nil", domain.ErrValidation)
	}
	if clk == nil {
		clk = clock.System{}
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		repo:       repo,
		srsService: srsService,
		clock:      clk,
		logger:     logger.With(slog.String("component", "card_service")),
	}, nil
}

// CreateDeck implements CardService.CreateDeck
func (s *cardServiceImpl) CreateDeck(ctx context.Context, name string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(name, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Decks().Create(ctx, deck); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create deck",
			slog.String("error", err.Error()))
		return nil, NewCardServiceError("create_deck", "failed to save deck", err)
	}
	return deck, nil
}

// ListDecks implements CardService.ListDecks
func (s *cardServiceImpl) ListDecks(ctx context.Context) ([]*domain.Deck, error) {
	decks, err := s.repo.Decks().List(ctx)
	if err != nil {
		return nil, NewCardServiceError("list_decks", "failed to list decks", err)
	}
	return decks, nil
}

// GetDeck implements CardService.GetDeck
func (s *cardServiceImpl) GetDeck(ctx context.Context, deckID uuid.UUID) (*domain.Deck, error) {
	deck, err := s.repo.Decks().GetByID(ctx, deckID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrDeckNotFound
		}
		return nil, NewCardServiceError("get_deck", "failed to retrieve deck", err)
	}
	return deck, nil
}

// CreateCards implements CardService.CreateCards
// It creates every card and refreshes the deck's mastery in a single transaction.
func (s *cardServiceImpl) CreateCards(
	ctx context.Context,
	deckID uuid.UUID,
	inputs []CardInput,
) ([]*domain.Card, error) {
	// Get logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(inputs) == 0 {
		return nil, ErrNoCards
	}

	now := s.clock.Now()
	cards := make([]*domain.Card, 0, len(inputs))
	for _, in := range inputs {
		card, err := domain.NewCard(deckID, in.Front, in.Back, now)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	log.Debug("creating cards in transaction",
		slog.String("deck_id", deckID.String()),
		slog.Int("card_count", len(cards)))

	// Run all operations in a single transaction for atomicity
	err := s.repo.RunInTx(ctx, func(ctx context.Context, txCards store.CardStore, txDecks store.DeckStore) error {
		if _, err := txDecks.GetForUpdate(ctx, deckID); err != nil {
			return err
		}

		for _, card := range cards {
			if err := txCards.Create(ctx, card); err != nil {
				log.Error("failed to create card in transaction",
					slog.String("error", err.Error()),
					slog.String("card_id", card.ID.String()))
				return err
			}
		}

		_, err := study.UpdateDeckMastery(ctx, txCards, txDecks, s.srsService, deckID, now)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, NewCardServiceError("create_cards", "failed to save cards", err)
	}

	log.Info("successfully created cards in transaction",
		slog.String("deck_id", deckID.String()),
		slog.Int("card_count", len(cards)))
	return cards, nil
}

// GetCard implements CardService.GetCard
// It retrieves a card by its ID
func (s *cardServiceImpl) GetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving card", slog.String("card_id", cardID.String()))

	card, err := s.repo.Cards().GetByID(ctx, cardID)
	if err != nil {
		// Check for specific error types
		if store.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}

		log.Error("failed to retrieve card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, NewCardServiceError("get_card", "failed to retrieve card", err)
	}

	return card, nil
}

// DeleteCard implements CardService.DeleteCard
func (s *cardServiceImpl) DeleteCard(ctx context.Context, cardID uuid.UUID) error {
	now := s.clock.Now()

	err := s.repo.RunInTx(ctx, func(ctx context.Context, cards store.CardStore, decks store.DeckStore) error {
		card, err := cards.GetForUpdate(ctx, cardID)
		if err != nil {
			return err
		}
		if err := cards.Delete(ctx, cardID); err != nil {
			return err
		}
		_, err = study.UpdateDeckMastery(ctx, cards, decks, s.srsService, card.DeckID, now)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			return ErrCardNotFound
		}
		return NewCardServiceError("delete_card", "failed to delete card", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("card deleted",
		slog.String("card_id", cardID.String()))
	return nil
}
