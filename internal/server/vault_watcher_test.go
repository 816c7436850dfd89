package server

import (
	"fmt"
	"testing"
	"time"

	"resumescore/internal/config"
)

// fakeVaultClient serves canned secrets for watcher tests.
type fakeVaultClient struct {
	secrets map[string]*config.VaultSecret
}

func (f *fakeVaultClient) GetSecretV2(path string) (*config.VaultSecret, error) {
	if secret, ok := f.secrets[path]; ok {
		return secret, nil
	}
	return nil, fmt.Errorf("secret not found at path: %s", path)
}

func (f *fakeVaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := f.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	if v, ok := secret.Data[key].(string); ok {
		return v, nil
	}
	return "", fmt.Errorf("key %q not found in secret %s", key, path)
}

func (f *fakeVaultClient) GetStringSliceSecret(path, key string) ([]string, error) {
	secret, err := f.GetSecretV2(path)
	if err != nil {
		return nil, err
	}
	if v, ok := secret.Data[key].([]string); ok {
		return v, nil
	}
	return nil, fmt.Errorf("key %q not found in secret %s", key, path)
}

func newTestVaultWatcher(client VaultClientInterface, path string, cb VaultReloadCallback) *VaultWatcher {
	if cb == nil {
		cb = func(*CertificateData, error) {}
	}
	return NewVaultWatcher(client, path, time.Minute, cb, nil)
}

func TestVaultWatcherFetchCertificateData(t *testing.T) {
	client := &fakeVaultClient{
		secrets: map[string]*config.VaultSecret{
			"secret/data/resumescore/tls": {
				Data: map[string]any{
					"cert": "rotated-cert-pem",
					"key":  "rotated-key-pem",
					"ca":   "rotated-ca-pem",
				},
				Version: 1,
			},
		},
	}

	vw := newTestVaultWatcher(client, "secret/data/resumescore/tls", nil)

	data, err := vw.fetchCertificateData()
	if err != nil {
		t.Fatalf("fetchCertificateData failed: %v", err)
	}

	if data.CertContent != "rotated-cert-pem" {
		t.Errorf("CertContent = %q, want %q", data.CertContent, "rotated-cert-pem")
	}
	if data.KeyContent != "rotated-key-pem" {
		t.Errorf("KeyContent = %q, want %q", data.KeyContent, "rotated-key-pem")
	}
	if data.CAContent != "rotated-ca-pem" {
		t.Errorf("CAContent = %q, want %q", data.CAContent, "rotated-ca-pem")
	}
}

func TestVaultWatcherFetchCertificateDataPartialSecret(t *testing.T) {
	client := &fakeVaultClient{
		secrets: map[string]*config.VaultSecret{
			"secret/data/resumescore/tls": {
				Data:    map[string]any{"cert": "only-the-cert"},
				Version: 1,
			},
		},
	}

	vw := newTestVaultWatcher(client, "secret/data/resumescore/tls", nil)

	data, err := vw.fetchCertificateData()
	if err != nil {
		t.Fatalf("fetchCertificateData failed: %v", err)
	}
	if data.CertContent != "only-the-cert" {
		t.Errorf("CertContent = %q, want %q", data.CertContent, "only-the-cert")
	}
	if data.KeyContent != "" || data.CAContent != "" {
		t.Errorf("missing fields should stay empty, got key=%q ca=%q", data.KeyContent, data.CAContent)
	}
}

func TestVaultWatcherCheckForUpdates(t *testing.T) {
	client := &fakeVaultClient{
		secrets: map[string]*config.VaultSecret{
			"secret/data/resumescore/tls": {
				Data:    map[string]any{},
				Version: 3,
			},
		},
	}

	vw := newTestVaultWatcher(client, "secret/data/resumescore/tls", nil)

	// First check sees version 3 for the first time.
	changed, err := vw.checkForUpdates()
	if err != nil {
		t.Fatalf("checkForUpdates failed: %v", err)
	}
	if !changed {
		t.Error("expected first check to report a change")
	}

	// Same version again: no change.
	changed, err = vw.checkForUpdates()
	if err != nil {
		t.Fatalf("checkForUpdates failed: %v", err)
	}
	if changed {
		t.Error("expected no change while version is unchanged")
	}

	// A rotated secret bumps the version.
	client.secrets["secret/data/resumescore/tls"].Version = 4
	changed, err = vw.checkForUpdates()
	if err != nil {
		t.Fatalf("checkForUpdates failed: %v", err)
	}
	if !changed {
		t.Error("expected version bump to report a change")
	}
}

func TestVaultWatcherStatus(t *testing.T) {
	vw := newTestVaultWatcher(&fakeVaultClient{}, "secret/data/resumescore/tls", nil)

	status := vw.Status()
	if status["running"] != false {
		t.Errorf("running = %v before Start", status["running"])
	}
	if status["secret_path"] != "secret/data/resumescore/tls" {
		t.Errorf("secret_path = %v", status["secret_path"])
	}
}
