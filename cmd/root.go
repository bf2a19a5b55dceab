package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/psds-microservice/support-console/internal/application"
	"github.com/psds-microservice/support-console/internal/config"
	"github.com/psds-microservice/support-console/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "support-console",
	Short: "Support console: ticket inbox, live chat and user administration",
	RunE:  runAPI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(auditCmd)
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.AppEnv, cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// newCore builds the services for a one-shot command. Pollers are never
// started here.
func newCore(ctx context.Context) (*application.Core, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	core, err := application.NewCore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	return core, nil
}
