package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-study/internal/api"
	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/platform/clock"
	"github.com/phrazzld/scry-study/internal/service"
	"github.com/phrazzld/scry-study/internal/service/card_review"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	clock  clock.Clock

	srsService        srs.Service
	cardService       service.CardService
	studyService      study.Service
	cardReviewService card_review.CardReviewService
}

// newApplication wires the services on top of repo.
func newApplication(cfg *config.Config, logger *slog.Logger, repo store.Repository, clk clock.Clock) (*application, error) {
	if clk == nil {
		clk = clock.System{}
	}

	app := &application{
		config:     cfg,
		logger:     logger,
		clock:      clk,
		srsService: srs.NewDefaultService(),
	}

	var err error
	app.cardService, err = service.NewCardService(repo, app.srsService, clk, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	app.studyService = study.NewService(repo, app.srsService, clk, study.Options{
		NewCardLimit: cfg.Study.NewCardLimit,
		Location:     cfg.Study.Location(),
	}, logger)

	app.cardReviewService = card_review.NewCardReviewService(repo, app.srsService, clk, card_review.RetryOptions{
		MaxRetries: cfg.Review.MaxRetries,
		BaseDelay:  cfg.Review.RetryBaseDelay,
	}, logger)

	logger.Info("application initialized")
	return app, nil
}

// router builds the HTTP handler tree.
func (app *application) router() http.Handler {
	return api.NewRouter(
		api.NewDeckHandler(app.cardService, app.studyService, app.logger),
		api.NewCardHandler(app.cardReviewService, app.cardService, app.studyService, app.clock, app.logger),
		app.logger,
	)
}
