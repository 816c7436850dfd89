package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tlsCertPath = "/etc/resumescore/tls/server.crt"
	tlsKeyPath  = "/etc/resumescore/tls/server.key"
	tlsCAPath   = "/etc/resumescore/tls/clients-ca.crt"
)

func tlsTestConfig(tls TLSConfig) Config {
	return Config{Server: ServerConfig{TLS: tls}}
}

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name    string
		tls     TLSConfig
		wantErr string
	}{
		{
			name: "disabled mode ignores certificate fields",
			tls:  TLSConfig{Mode: "disabled"},
		},
		{
			name: "server mode with certificate files",
			tls: TLSConfig{
				Mode:     "server",
				CertFile: tlsCertPath,
				KeyFile:  tlsKeyPath,
			},
		},
		{
			name: "server mode with inline content from Vault",
			tls: TLSConfig{
				Mode:        "server",
				CertContent: "cert-pem",
				KeyContent:  "key-pem",
			},
		},
		{
			name: "server mode with mixed sources",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   tlsCertPath,
				KeyContent: "key-pem",
			},
		},
		{
			name: "mutual mode with files and policy",
			tls: TLSConfig{
				Mode:             "mutual",
				CertFile:         tlsCertPath,
				KeyFile:          tlsKeyPath,
				CAFile:           tlsCAPath,
				ClientAuthPolicy: "require",
				MinVersion:       "1.3",
			},
		},
		{
			name:    "unknown mode",
			tls:     TLSConfig{Mode: "starttls"},
			wantErr: "invalid TLS mode: starttls",
		},
		{
			name: "server mode without a certificate",
			tls: TLSConfig{
				Mode:    "server",
				KeyFile: tlsKeyPath,
			},
			wantErr: "TLS certificate and key are required for server mode",
		},
		{
			name: "server mode without a key",
			tls: TLSConfig{
				Mode:     "server",
				CertFile: tlsCertPath,
			},
			wantErr: "TLS certificate and key are required for server mode",
		},
		{
			name: "certificate from two sources",
			tls: TLSConfig{
				Mode:        "server",
				CertFile:    tlsCertPath,
				CertContent: "cert-pem",
				KeyFile:     tlsKeyPath,
			},
			wantErr: "cannot specify both certFile and certContent",
		},
		{
			name: "key from two sources",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   tlsCertPath,
				KeyFile:    tlsKeyPath,
				KeyContent: "key-pem",
			},
			wantErr: "cannot specify both keyFile and keyContent",
		},
		{
			name: "mutual mode without a CA",
			tls: TLSConfig{
				Mode:     "mutual",
				CertFile: tlsCertPath,
				KeyFile:  tlsKeyPath,
			},
			wantErr: "CA certificate is required for mutual TLS mode",
		},
		{
			name: "CA from two sources",
			tls: TLSConfig{
				Mode:      "mutual",
				CertFile:  tlsCertPath,
				KeyFile:   tlsKeyPath,
				CAFile:    tlsCAPath,
				CAContent: "ca-pem",
			},
			wantErr: "cannot specify both caFile and caContent",
		},
		{
			name: "unknown client auth policy",
			tls: TLSConfig{
				Mode:             "mutual",
				CertFile:         tlsCertPath,
				KeyFile:          tlsKeyPath,
				CAFile:           tlsCAPath,
				ClientAuthPolicy: "optional",
			},
			wantErr: "invalid clientAuthPolicy: optional",
		},
		{
			name: "unsupported minimum TLS version",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   tlsCertPath,
				KeyFile:    tlsKeyPath,
				MinVersion: "1.0",
			},
			wantErr: "invalid TLS minVersion: 1.0",
		},
		{
			name: "minimum version checked even when TLS is disabled",
			tls: TLSConfig{
				Mode:       "disabled",
				MinVersion: "ssl3",
			},
			wantErr: "invalid TLS minVersion: ssl3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tlsTestConfig(tt.tls)
			err := cfg.ValidateTLSConfig()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheckClientAuthPolicy(t *testing.T) {
	for _, policy := range []string{"", "require", "request", "verify"} {
		assert.NoError(t, checkClientAuthPolicy(policy), "policy %q", policy)
	}

	err := checkClientAuthPolicy("mandatory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be 'require', 'request', or 'verify'")
}

func TestCheckMinTLSVersion(t *testing.T) {
	for _, version := range []string{"", "1.2", "1.3"} {
		assert.NoError(t, checkMinTLSVersion(version), "version %q", version)
	}

	err := checkMinTLSVersion("1.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be '1.2' or '1.3'")
}
