package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resumescore/internal/observability"
)

const shutdownTimeout = 30 * time.Second

// Start brings up observability, TLS, and the HTTP listener, then
// blocks until the server exits or a shutdown signal arrives.
func (s *Server) Start() error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(ctx); err != nil {
			s.Logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	mux := s.setupRoutes(om)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:      om.HTTPMiddleware()(mux),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}

	vaultClient, err := s.initializeVaultClient()
	if err != nil {
		return err
	}

	if err := s.configureTLS(httpServer, vaultClient, om); err != nil {
		return err
	}

	s.displayServerInfo()

	return s.serveUntilSignal(httpServer)
}

// initializeObservability builds the observability manager from the
// application configuration.
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	obsConfig := observability.GetObservabilityConfig(s.AppConfig, s.Version)
	om, err := observability.NewObservabilityManager(obsConfig, s.AppConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	return om, nil
}

// serveUntilSignal runs the listener and drains it cleanly on SIGINT
// or SIGTERM.
func (s *Server) serveUntilSignal(server *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		s.Logger.Info("Scoring API server starting",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		if err := s.listen(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Shutdown signal received", "signal", sig.String())
		return s.shutdown(server)
	}
}

// listen starts serving. With certificate content loaded (Vault), the
// key material already lives in the TLS config, so the file arguments
// stay empty.
func (s *Server) listen(server *http.Server) error {
	if server.TLSConfig == nil {
		return server.ListenAndServe()
	}
	if s.TLSConfig.CertContent != "" || s.TLSConfig.KeyContent != "" {
		return server.ListenAndServeTLS("", "")
	}
	return server.ListenAndServeTLS(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
}

// shutdown drains in-flight requests and stops the background
// components.
func (s *Server) shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.CertificateManager != nil {
		if err := s.CertificateManager.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop certificate manager")
		}
	}

	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter stopped")
	}

	s.Logger.Info("Draining HTTP server...")
	if err := server.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Graceful shutdown failed, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed")
	return nil
}
