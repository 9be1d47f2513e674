package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/leapml/internal/api"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the LeapML HTTP API",
		Long: `Start the HTTP API used by the LeapML frontend.

Endpoints:
- POST /upload, /preprocess, /split, /train
- GET /models, /artifacts, /artifacts/{id}/lineage, /runs`,
		Example: `  # Start on the default port (5000)
  leapml serve

  # Start on a custom port with a custom data directory
  leapml serve --port 8080 --data-dir ./uploads`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 5000)")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	server, err := api.NewServer(api.Config{
		Engine:        cmdCtx.Engine,
		Port:          cfg.Server.Port,
		SessionSecret: cfg.Server.SessionSecret,
		CORSOrigins:   cfg.Server.CORSOrigins,
		MaxUploadMB:   cfg.Server.MaxUploadMB,
		Logger:        cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	r := cmdCtx.Renderer
	r.Println(fmt.Sprintf("Starting LeapML API on http://localhost:%d", cfg.Server.Port))
	r.Muted(fmt.Sprintf("Data directory: %s", cfg.DataDir))
	r.Muted("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
