package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zostay/emledit/internal/server"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP editing service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// the service logs to stdout like any other daemon
			logger := newLogger(a.cfg.Logging.Level, cmd.OutOrStdout())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := a.translateService(ctx)
			if err != nil {
				return err
			}

			logger.Info("starting emledit",
				"listen", a.cfg.Server.Listen,
				"translate_provider", a.cfg.Translate.Provider,
				"max_upload_size", a.cfg.Server.MaxUploadSize,
			)

			err = server.New(a.cfg, svc, logger).ListenAndServe(ctx)
			if err != nil {
				logger.Error("server error", "error", err)
				return err
			}

			logger.Info("emledit stopped")
			return nil
		},
	}
}
