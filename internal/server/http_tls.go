package server

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"

	"resumescore/internal/config"
	"resumescore/internal/observability"
)

// cipherSuiteIDs maps configuration names to TLS cipher suite IDs.
// Unknown names are skipped rather than rejected.
var cipherSuiteIDs = map[string]uint16{
	"TLS_AES_128_GCM_SHA256":                  tls.TLS_AES_128_GCM_SHA256,
	"TLS_AES_256_GCM_SHA384":                  tls.TLS_AES_256_GCM_SHA384,
	"TLS_CHACHA20_POLY1305_SHA256":            tls.TLS_CHACHA20_POLY1305_SHA256,
	"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256": tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384": tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256":   tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384":   tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305":  tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
	"TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305":    tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
}

// configureTLS prepares the listener for the configured TLS mode:
// plain HTTP, server-only TLS, or mutual TLS for deployments where
// analysis clients present certificates.
func (s *Server) configureTLS(httpServer *http.Server, vaultClient VaultClientInterface, om *observability.ObservabilityManager) error {
	addr := httpServer.Addr

	switch s.TLSConfig.Mode {
	case "disabled":
		fmt.Printf("Scoring API listening on http://%s (TLS disabled)\n", addr)
		return nil
	case "server":
		fmt.Printf("Scoring API listening on https://%s (server-only TLS)\n", addr)
	case "mutual":
		fmt.Printf("Scoring API listening on https://%s (mutual TLS, client certificates required)\n", addr)
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	if err := s.setupCertificateManager(vaultClient, om); err != nil {
		return err
	}

	tlsConfig, err := s.buildTLSConfig()
	if err != nil {
		return fmt.Errorf("failed to set up TLS: %w", err)
	}
	httpServer.TLSConfig = tlsConfig
	return nil
}

// setupCertificateManager brings up certificate auto-reload when it is
// enabled in configuration.
func (s *Server) setupCertificateManager(vaultClient VaultClientInterface, om *observability.ObservabilityManager) error {
	if !s.TLSConfig.AutoReload.Enabled {
		return nil
	}

	cm := NewCertificateManager(&s.TLSConfig, &s.TLSConfig.AutoReload, vaultClient, om, s.Logger)
	if err := cm.Start(); err != nil {
		return fmt.Errorf("failed to start certificate manager: %w", err)
	}
	s.CertificateManager = cm

	cm.AddReloadCallback(func(success bool, err error) {
		if success {
			s.Logger.Info("TLS certificates reloaded successfully")
		} else {
			s.Logger.LogError(err, "Failed to reload TLS certificates")
		}
	})

	fmt.Println("TLS auto-reload: ENABLED")
	if s.TLSConfig.AutoReload.FileWatcher.Enabled {
		fmt.Println("  - watching certificate files")
	}
	if s.TLSConfig.AutoReload.VaultWatcher.Enabled {
		fmt.Println("  - watching Vault secret")
	}
	return nil
}

// initializeVaultClient creates a Vault client when the Vault watcher
// needs one; otherwise TLS runs purely off local files.
func (s *Server) initializeVaultClient() (VaultClientInterface, error) {
	if !s.TLSConfig.AutoReload.VaultWatcher.Enabled {
		return nil, nil
	}

	vc, err := config.NewVaultClient(s.AppConfig.Vault, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Vault client: %w", err)
	}
	return vc, nil
}

// buildTLSConfig assembles the tls.Config for the listener.
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion: s.minTLSVersion(),
	}

	if s.CertificateManager != nil {
		// Dynamic loading: every handshake asks the manager, so
		// rotated certificates apply without a restart.
		tlsConfig.GetCertificate = s.CertificateManager.GetServerCertificate
		if s.TLSConfig.Mode == "mutual" {
			tlsConfig.GetClientCertificate = func(*tls.CertificateRequestInfo) (*tls.Certificate, error) {
				return s.CertificateManager.GetClientCertificate()
			}
			tlsConfig.VerifyPeerCertificate = s.CertificateManager.VerifyPeerCertificate
		}
	} else {
		cert, err := s.loadStaticCertificate()
		if err != nil {
			return nil, err
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if suites := s.configuredCipherSuites(); len(suites) > 0 {
		tlsConfig.CipherSuites = suites
	}

	if err := s.configureClientAuth(tlsConfig); err != nil {
		return nil, err
	}

	if s.TLSConfig.InsecureSkipVerify {
		tlsConfig.InsecureSkipVerify = true
		fmt.Println("WARNING: TLS certificate verification is disabled (insecureSkipVerify=true)")
	}
	if s.TLSConfig.ServerName != "" {
		tlsConfig.ServerName = s.TLSConfig.ServerName
	}

	return tlsConfig, nil
}

func (s *Server) minTLSVersion() uint16 {
	if s.TLSConfig.MinVersion == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

// loadStaticCertificate loads the server key pair once, for setups
// without auto-reload. Content takes precedence over files because it
// is what Vault-sourced configs populate.
func (s *Server) loadStaticCertificate() (tls.Certificate, error) {
	if s.TLSConfig.CertContent != "" && s.TLSConfig.KeyContent != "" {
		cert, err := tls.X509KeyPair([]byte(s.TLSConfig.CertContent), []byte(s.TLSConfig.KeyContent))
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from content: %w", err)
		}
		return cert, nil
	}

	if s.TLSConfig.CertFile != "" && s.TLSConfig.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(s.TLSConfig.CertFile, s.TLSConfig.KeyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from files: %w", err)
		}
		return cert, nil
	}

	return tls.Certificate{}, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
}

func (s *Server) configuredCipherSuites() []uint16 {
	suites := make([]uint16, 0, len(s.TLSConfig.CipherSuites))
	for _, name := range s.TLSConfig.CipherSuites {
		if id, ok := cipherSuiteIDs[name]; ok {
			suites = append(suites, id)
		}
	}
	return suites
}

// configureClientAuth sets up client certificate verification for
// mutual TLS.
func (s *Server) configureClientAuth(tlsConfig *tls.Config) error {
	if s.TLSConfig.Mode != "mutual" {
		tlsConfig.ClientAuth = tls.NoClientCert
		return nil
	}

	caPEM, err := s.loadCAPEM()
	if err != nil {
		return err
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return fmt.Errorf("failed to append CA cert")
	}
	tlsConfig.ClientCAs = pool

	switch s.TLSConfig.ClientAuthPolicy {
	case "request":
		tlsConfig.ClientAuth = tls.RequestClientCert
	case "verify":
		tlsConfig.ClientAuth = tls.VerifyClientCertIfGiven
	default:
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return nil
}

func (s *Server) loadCAPEM() ([]byte, error) {
	if s.TLSConfig.CAContent != "" {
		return []byte(s.TLSConfig.CAContent), nil
	}
	if s.TLSConfig.CAFile != "" {
		caPEM, err := os.ReadFile(s.TLSConfig.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		return caPEM, nil
	}
	return nil, fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
}
