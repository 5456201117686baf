package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spigell/interview-readiness/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assessment API over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8000)")
	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func serve(cmd *cobra.Command) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.log.Sync() //nolint:errcheck

	e.log.Info("starting the interview-readiness server",
		zap.String("version", version),
		zap.String("provider", e.config.AI.Provider),
		zap.String("model", e.generator.Model()),
		zap.Bool("resume_guard_disabled", e.config.Resume.GuardDisabled),
	)

	srv := server.New(server.Config{
		Listen:         e.config.Listen,
		WriteTimeout:   e.config.WriteTimeout,
		Provider:       e.config.AI.Provider,
		MaxUploadBytes: e.config.Resume.MaxUploadBytes,
		MetricsEnabled: e.config.Metrics.Enabled,
	}, server.Deps{
		Pipeline:  e.pipeline,
		Generator: e.generator,
		Logger:    e.log,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}
