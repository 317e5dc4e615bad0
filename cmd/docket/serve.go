package main

import (
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agenthands/docket/internal/config"
	"github.com/agenthands/docket/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scans, reports and entity resolution over HTTP",
	RunE:  runServe,
}

var (
	servePort string
	serveHost string
)

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Interface to bind (overrides config, default 127.0.0.1)")
}

// applyServeFlags overrides cfg with the flags set on the command and
// validates the result.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := applyServeFlags(cmd, cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.NewServer(a.pipeline, scanOptions(cfg), logger)
	srv.AllowMove = cfg.Server.AllowMove
	srv.APIToken = cfg.Server.APIToken
	if srv.APIToken == "" && cfg.Server.Host != "127.0.0.1" && cfg.Server.Host != "localhost" {
		logger.Warn().Str("host", cfg.Server.Host).Msg("serving without an API token on a non-loopback interface")
	}
	return srv.Run(ctx, net.JoinHostPort(cfg.Server.Host, cfg.Server.Port))
}
