package cli

import (
	"fmt"

	"resumescore/internal/config"
	"resumescore/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for resume scoring",
	Long: `Start an HTTP server that provides REST API endpoints for resume scoring.

Available endpoints:
- POST /analyze: Score a resume for ATS compatibility
- GET /roles: List available target roles
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	RunE: runServe,
}

// serveFlags maps each serve flag to the viper key it overrides.
var serveFlags = []struct {
	flag, usage, key string
}{
	{"port", "Port to listen on (default from config)", "server.port"},
	{"host", "Host to bind to (default from config)", "server.host"},
	{"tls-mode", "TLS mode: disabled, server, mutual (overrides config)", "server.tls.mode"},
	{"cert-file", "Server certificate file (PEM, overrides config)", "server.tls.certfile"},
	{"key-file", "Server private key file (PEM, overrides config)", "server.tls.keyfile"},
	{"ca-file", "CA certificate file for client cert verification (PEM, overrides config)", "server.tls.cafile"},
}

func init() {
	for _, f := range serveFlags {
		if f.flag == "port" {
			serveCmd.Flags().StringP(f.flag, "p", "", f.usage)
		} else {
			serveCmd.Flags().String(f.flag, "", f.usage)
		}
		if err := viper.BindPFlag(f.key, serveCmd.Flags().Lookup(f.flag)); err != nil {
			panic(err)
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	// Vault-held secrets land in the config before the server reads it.
	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return fmt.Errorf("failed to apply Vault secrets: %w", err)
	}

	// Flag overrides may have changed the TLS setup; re-validate.
	effective := &config.Config{Server: cfg.Server}
	if err := effective.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	return server.NewServer(cfg, server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: int64(cfg.App.MaxFileSize),
		RateLimit:      &cfg.Server.RateLimit,
	}, logger).Start()
}
