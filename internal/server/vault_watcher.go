package server

import (
	"fmt"
	"sync"
	"time"

	"resumescore/internal/config"
	"resumescore/internal/errors"
)

// VaultClientInterface is the subset of the Vault client the server
// needs, kept small so tests can substitute a fake.
type VaultClientInterface interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
	GetStringSecret(path, key string) (string, error)
	GetStringSliceSecret(path, key string) ([]string, error)
}

// CertificateData is the PEM material held in the TLS secret.
type CertificateData struct {
	CertContent string
	KeyContent  string
	CAContent   string
}

// VaultReloadCallback receives freshly fetched certificate data, or
// the error that prevented the fetch.
type VaultReloadCallback func(data *CertificateData, err error)

// VaultWatcher polls a KVv2 secret and pushes new certificate material
// to its callback whenever the secret version advances.
type VaultWatcher struct {
	mu sync.RWMutex

	client         VaultClientInterface
	secretPath     string
	pollInterval   time.Duration
	reloadCallback VaultReloadCallback
	logger         *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
}

// NewVaultWatcher creates a watcher for the TLS secret at secretPath.
func NewVaultWatcher(client VaultClientInterface, secretPath string, pollInterval time.Duration, reloadCallback VaultReloadCallback, logger *errors.Logger) *VaultWatcher {
	return &VaultWatcher{
		client:         client,
		secretPath:     secretPath,
		pollInterval:   pollInterval,
		reloadCallback: reloadCallback,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the polling loop.
func (vw *VaultWatcher) Start() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()

	if vw.running {
		return fmt.Errorf("vault watcher is already running")
	}
	vw.running = true
	go vw.pollLoop()

	if vw.logger != nil {
		vw.logger.Info("Vault watcher started",
			"secret_path", vw.secretPath,
			"poll_interval", vw.pollInterval)
	}
	return nil
}

// Stop ends the polling loop.
func (vw *VaultWatcher) Stop() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()

	if !vw.running {
		return nil
	}
	close(vw.stopChan)
	vw.running = false

	if vw.logger != nil {
		vw.logger.Info("Vault watcher stopped")
	}
	return nil
}

func (vw *VaultWatcher) pollLoop() {
	ticker := time.NewTicker(vw.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			vw.poll()
		case <-vw.stopChan:
			return
		}
	}
}

// poll checks the secret version and, if it advanced, delivers the new
// certificate material to the callback.
func (vw *VaultWatcher) poll() {
	changed, err := vw.checkForUpdates()
	if err != nil {
		if vw.logger != nil {
			vw.logger.LogError(err, "Failed to check Vault for certificate updates")
		}
		return
	}
	if !changed {
		return
	}

	data, err := vw.fetchCertificateData()
	if err != nil {
		if vw.logger != nil {
			vw.logger.LogError(err, "Failed to fetch rotated certificates from Vault")
		}
		vw.reloadCallback(nil, err)
		return
	}

	if vw.logger != nil {
		vw.logger.Info("Rotated certificates fetched from Vault, triggering reload",
			"secret_path", vw.secretPath)
	}
	vw.reloadCallback(data, nil)
}

// checkForUpdates reports whether the secret version moved past the
// last one seen.
func (vw *VaultWatcher) checkForUpdates() (bool, error) {
	secret, err := vw.client.GetSecretV2(vw.secretPath)
	if err != nil {
		return false, fmt.Errorf("failed to read secret: %w", err)
	}

	if secret.Version > vw.lastVersion {
		vw.lastVersion = secret.Version
		return true, nil
	}
	return false, nil
}

// fetchCertificateData reads the PEM fields out of the TLS secret.
// Missing fields stay empty so partial rotations only replace what
// actually changed.
func (vw *VaultWatcher) fetchCertificateData() (*CertificateData, error) {
	secret, err := vw.client.GetSecretV2(vw.secretPath)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch TLS data from vault: %w", err)
	}

	data := &CertificateData{}
	if v, ok := secret.Data["cert"].(string); ok {
		data.CertContent = v
	}
	if v, ok := secret.Data["key"].(string); ok {
		data.KeyContent = v
	}
	if v, ok := secret.Data["ca"].(string); ok {
		data.CAContent = v
	}
	return data, nil
}

// Status reports watcher state for the health endpoint.
func (vw *VaultWatcher) Status() map[string]any {
	vw.mu.RLock()
	defer vw.mu.RUnlock()

	return map[string]any{
		"running":       vw.running,
		"poll_interval": vw.pollInterval.String(),
		"secret_path":   vw.secretPath,
		"last_version":  vw.lastVersion,
	}
}
