package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cvfeed/internal/server"
	"github.com/jonathan/cvfeed/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the presentation server",
	Long:  `Start an HTTP server with candidate pages (/candidate/{id}, /candidates) and JSON APIs (/api/candidates, /api/jobs).`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "Port to listen on (default $PORT or 3000)")
	mustBind("server.port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signalContext()
	defer stop()

	database, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	limits := ratelimit.DefaultConfig()
	limits.Enabled = cfg.RateLimit.Enabled
	limits.PerMinute = cfg.RateLimit.PerMinute
	limits.Burst = cfg.RateLimit.Burst

	srv := server.New(database, server.Config{Addr: cfg.Server.Addr(), RateLimit: limits}, log)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
