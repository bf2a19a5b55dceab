package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/psds-microservice/support-console/internal/application"
	"github.com/spf13/cobra"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the console HTTP API with ticket polling",
	RunE:  runAPI,
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := application.NewAPI(ctx, cfg, logger)
	if err != nil {
		logger.Error("init failed", "error", err)
		return err
	}
	return app.Run(ctx)
}
