package cli

import (
	"context"
	"fmt"
	"time"

	"resumescan/internal/common"
	"resumescan/internal/observability"
	"resumescan/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis server",
	Long: `Start an HTTP server that analyzes uploaded resumes.

Available endpoints:
- POST /analyze: multipart form with a "resume" file (.pdf or .docx) and an
  optional "job_description" text field
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled or server
- Use --cert-file and --key-file for TLS certificates`,
	RunE: runServe,
}

var serveFlags struct {
	port     string
	host     string
	tlsMode  string
	certFile string
	keyFile  string
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.port, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.host, "host", "", "Host to bind to (default from config)")
	serveCmd.Flags().StringVar(&serveFlags.tlsMode, "tls-mode", "", "TLS mode: disabled or server (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.certFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.keyFile, "key-file", "", "Server private key file (PEM, overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	applyOverride(&cfg.Server.Port, serveFlags.port)
	applyOverride(&cfg.Server.Host, serveFlags.host)
	applyOverride(&cfg.Server.TLS.Mode, serveFlags.tlsMode)
	applyOverride(&cfg.Server.TLS.CertFile, serveFlags.certFile)
	applyOverride(&cfg.Server.TLS.KeyFile, serveFlags.keyFile)

	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(ctx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	rt, err := common.NewRuntime(cfg, logger, om.GetMetrics())
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.StartRulesWatcher(); err != nil {
		return err
	}

	deps := server.Dependencies{
		Analyzer:   rt.Analyzer,
		Lemmatizer: rt.Lemmatizer,
		Summaries:  rt.Summaries,
	}
	if rt.RulesWatcher != nil {
		deps.RulesWatcher = rt.RulesWatcher
	}

	srv := server.NewServer(cfg, server.NewServerConfig(cfg, Version), deps, om, logger)
	return srv.Start(cmd.Context())
}

func applyOverride(target *string, value string) {
	if value != "" {
		*target = value
	}
}
