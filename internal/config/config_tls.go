package config

import "fmt"

// ValidateTLSConfig checks the listener's TLS settings before the
// server starts, so misconfiguration fails fast instead of at the
// first handshake.
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	switch tls.Mode {
	case "disabled":
		// Nothing to check; certificate fields are ignored.
	case "server":
		if err := checkServerKeyPair(tls, "server mode"); err != nil {
			return err
		}
	case "mutual":
		if err := checkServerKeyPair(tls, "mutual mode"); err != nil {
			return err
		}
		if err := checkClientCA(tls); err != nil {
			return err
		}
		if err := checkClientAuthPolicy(tls.ClientAuthPolicy); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}

	return checkMinTLSVersion(tls.MinVersion)
}

// checkServerKeyPair verifies the server certificate and key are each
// supplied from exactly one source (file or inline content).
func checkServerKeyPair(tls TLSConfig, mode string) error {
	if (tls.CertFile == "" && tls.CertContent == "") || (tls.KeyFile == "" && tls.KeyContent == "") {
		return fmt.Errorf("TLS certificate and key are required for %s (provide either files or content)", mode)
	}
	if tls.CertFile != "" && tls.CertContent != "" {
		return fmt.Errorf("cannot specify both certFile and certContent - choose one")
	}
	if tls.KeyFile != "" && tls.KeyContent != "" {
		return fmt.Errorf("cannot specify both keyFile and keyContent - choose one")
	}
	return nil
}

// checkClientCA verifies the CA used to verify client certificates in
// mutual mode comes from exactly one source.
func checkClientCA(tls TLSConfig) error {
	if tls.CAFile == "" && tls.CAContent == "" {
		return fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
	}
	if tls.CAFile != "" && tls.CAContent != "" {
		return fmt.Errorf("cannot specify both caFile and caContent - choose one")
	}
	return nil
}

// checkClientAuthPolicy accepts the known policies; empty defaults to
// require.
func checkClientAuthPolicy(policy string) error {
	switch policy {
	case "", "require", "request", "verify":
		return nil
	default:
		return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", policy)
	}
}

// checkMinTLSVersion accepts 1.2 and 1.3; empty defaults to 1.2.
func checkMinTLSVersion(version string) error {
	switch version {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", version)
	}
}
