package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/spf13/cobra"
)

// cliState is filled by the root command before any subcommand runs.
type cliState struct {
	configPath string
	config     *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	state := &cliState{}

	rootCmd := &cobra.Command{
		Use:           "scry-study",
		Short:         "Spaced-repetition study server",
		Long:          "scry-study schedules flashcard reviews with an SM-2 variant and tracks deck mastery.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&state.configPath, "config", "",
		"Path to a config file (defaults to ./config.yaml when present)")

	rootCmd.AddCommand(newServeCmd(state))
	rootCmd.AddCommand(newMigrateCmd(state))
	rootCmd.AddCommand(newStatsCmd(state))
	return rootCmd
}

// load reads the configuration and installs the logger.
func (s *cliState) load() error {
	cfg, err := config.LoadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Debug("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("timezone", cfg.Study.Timezone))

	s.config = cfg
	s.logger = log
	return nil
}
