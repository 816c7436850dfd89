package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"resumescore/internal/config"
	"resumescore/internal/errors"
	"resumescore/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ReloadCallback is notified after every certificate reload attempt.
type ReloadCallback func(success bool, err error)

// CertificateMetrics is a snapshot of reload activity, surfaced by the
// health endpoint.
type CertificateMetrics struct {
	ReloadCount        int64
	ReloadSuccessCount int64
	ReloadFailureCount int64
	LastReloadTime     time.Time
	LastReloadSuccess  bool
	LastReloadError    string
}

// CertificateManager serves TLS certificates to the API listener and
// hot-swaps them when the backing files or Vault secret rotate. All
// certificate reads go through it once auto-reload is enabled.
type CertificateManager struct {
	mu sync.RWMutex

	serverCert *tls.Certificate
	clientCert *tls.Certificate
	caCertPool *x509.CertPool

	serverCertExpiry time.Time
	clientCertExpiry time.Time
	lastReloadTime   time.Time

	fileWatcher  *CertWatcher
	vaultWatcher *VaultWatcher

	config           *config.TLSConfig
	autoReloadConfig *config.AutoReloadConfig
	vaultClient      VaultClientInterface

	reloadCallbacks []ReloadCallback
	logger          *errors.Logger

	observabilityManager *observability.ObservabilityManager

	reloadCount        int64
	reloadSuccessCount int64
	reloadFailureCount int64
	lastReloadSuccess  bool
	lastReloadError    string
}

// NewCertificateManager creates a manager over the given TLS settings.
// Start must be called before it can serve certificates.
func NewCertificateManager(tlsConfig *config.TLSConfig, autoReloadConfig *config.AutoReloadConfig, vaultClient VaultClientInterface, om *observability.ObservabilityManager, logger *errors.Logger) *CertificateManager {
	return &CertificateManager{
		config:               tlsConfig,
		autoReloadConfig:     autoReloadConfig,
		vaultClient:          vaultClient,
		logger:               logger,
		observabilityManager: om,
	}
}

// Start loads the initial certificates and brings up whichever
// watchers the auto-reload configuration enables.
func (cm *CertificateManager) Start() error {
	if err := cm.loadCertificates(); err != nil {
		return fmt.Errorf("failed to load initial certificates: %w", err)
	}

	cm.startExpiryMonitoring()

	if err := cm.startFileWatcher(); err != nil {
		return err
	}
	return cm.startVaultWatcher()
}

// Stop shuts down both watchers.
func (cm *CertificateManager) Stop() error {
	if cm.fileWatcher != nil {
		if err := cm.fileWatcher.Stop(); err != nil {
			if cm.logger != nil {
				cm.logger.LogError(err, "Failed to stop certificate file watcher")
			}
			return err
		}
	}
	if cm.vaultWatcher != nil {
		if err := cm.vaultWatcher.Stop(); err != nil {
			if cm.logger != nil {
				cm.logger.LogError(err, "Failed to stop Vault watcher")
			}
			return err
		}
	}
	if cm.logger != nil {
		cm.logger.Info("Certificate manager stopped")
	}
	return nil
}

// startFileWatcher watches the PEM files on disk. It is a no-op when
// file watching is disabled or the certificates come from Vault
// content instead of files.
func (cm *CertificateManager) startFileWatcher() error {
	if cm.autoReloadConfig == nil || !cm.autoReloadConfig.FileWatcher.Enabled {
		return nil
	}
	if cm.config.CertFile == "" && cm.config.KeyFile == "" && cm.config.CAFile == "" {
		return nil
	}

	watcher, err := NewCertWatcher(
		cm.config.CertFile,
		cm.config.KeyFile,
		cm.config.CAFile,
		cm.autoReloadConfig.FileWatcher.DebounceDelay,
		cm.reloadFromWatcher,
		cm.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	cm.fileWatcher = watcher

	if cm.logger != nil {
		cm.logger.Info("Watching certificate files for rotation",
			"cert_file", cm.config.CertFile,
			"key_file", cm.config.KeyFile,
			"ca_file", cm.config.CAFile)
	}
	return nil
}

// startVaultWatcher polls the Vault TLS secret. It is a no-op unless
// Vault watching is enabled and the certificates were loaded as
// content.
func (cm *CertificateManager) startVaultWatcher() error {
	if cm.autoReloadConfig == nil || !cm.autoReloadConfig.VaultWatcher.Enabled {
		return nil
	}
	if cm.config.CertContent == "" && cm.config.KeyContent == "" && cm.config.CAContent == "" {
		return nil
	}
	if cm.vaultClient == nil {
		if cm.logger != nil {
			cm.logger.Warn("Vault watcher enabled but no Vault client is configured")
		}
		return nil
	}

	vw := NewVaultWatcher(
		cm.vaultClient,
		cm.autoReloadConfig.VaultWatcher.SecretPath,
		cm.autoReloadConfig.VaultWatcher.PollInterval,
		cm.applyVaultCertificates,
		cm.logger,
	)
	if err := vw.Start(); err != nil {
		return fmt.Errorf("failed to start Vault watcher: %w", err)
	}
	cm.vaultWatcher = vw

	if cm.logger != nil {
		cm.logger.Info("Watching Vault secret for certificate rotation",
			"secret_path", cm.autoReloadConfig.VaultWatcher.SecretPath,
			"poll_interval", cm.autoReloadConfig.VaultWatcher.PollInterval)
	}
	return nil
}

// applyVaultCertificates swaps rotated PEM content into the TLS
// settings and reloads.
func (cm *CertificateManager) applyVaultCertificates(data *CertificateData, err error) {
	if err != nil {
		if cm.logger != nil {
			cm.logger.LogError(err, "Failed to fetch rotated certificates from Vault")
		}
		return
	}

	cm.mu.Lock()
	if data.CertContent != "" {
		cm.config.CertContent = data.CertContent
	}
	if data.KeyContent != "" {
		cm.config.KeyContent = data.KeyContent
	}
	if data.CAContent != "" {
		cm.config.CAContent = data.CAContent
	}
	cm.mu.Unlock()

	cm.reloadFromWatcher()
}

// GetServerCertificate hands the current server certificate to TLS
// handshakes. Expired certificates are refused rather than served.
func (cm *CertificateManager) GetServerCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCert == nil {
		return nil, fmt.Errorf("no server certificate available")
	}

	if time.Now().After(cm.serverCertExpiry) {
		if cm.logger != nil {
			cm.logger.LogError(fmt.Errorf("server certificate expired"), "Refusing handshake with expired server certificate",
				"expiry", cm.serverCertExpiry,
				"server_name", hello.ServerName)
		}
		return nil, fmt.Errorf("server certificate expired")
	}

	if cm.autoReloadConfig != nil && cm.autoReloadConfig.PreemptiveRenewal > 0 {
		renewAt := cm.serverCertExpiry.Add(-cm.autoReloadConfig.PreemptiveRenewal)
		if time.Now().After(renewAt) {
			go cm.reloadFromWatcher()
		}
	}

	return cm.serverCert, nil
}

// GetClientCertificate returns the client certificate for outbound
// mutual TLS.
func (cm *CertificateManager) GetClientCertificate() (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.clientCert == nil {
		return nil, fmt.Errorf("no client certificate available")
	}
	if time.Now().After(cm.clientCertExpiry) {
		if cm.logger != nil {
			cm.logger.LogError(fmt.Errorf("client certificate expired"), "Refusing expired client certificate",
				"expiry", cm.clientCertExpiry)
		}
		return nil, fmt.Errorf("client certificate expired")
	}
	return cm.clientCert, nil
}

// GetCACertPool returns the pool used to verify client certificates.
func (cm *CertificateManager) GetCACertPool() *x509.CertPool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.caCertPool
}

// VerifyPeerCertificate validates a peer chain against the current CA
// pool. Installed as the TLS VerifyPeerCertificate hook so rotated CA
// material takes effect without a listener restart.
func (cm *CertificateManager) VerifyPeerCertificate(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return fmt.Errorf("no peer certificates provided")
	}

	cert, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return fmt.Errorf("failed to parse peer certificate: %w", err)
	}

	pool := cm.GetCACertPool()
	if pool == nil {
		return fmt.Errorf("no CA certificate pool available")
	}

	if _, err := cert.Verify(x509.VerifyOptions{Roots: pool}); err != nil {
		return fmt.Errorf("peer certificate verification failed: %w", err)
	}
	return nil
}

// ReloadCertificates reloads synchronously, for manual or test use.
func (cm *CertificateManager) ReloadCertificates() error {
	return cm.loadCertificates()
}

// AddReloadCallback registers a callback for reload outcomes.
func (cm *CertificateManager) AddReloadCallback(callback ReloadCallback) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.reloadCallbacks = append(cm.reloadCallbacks, callback)
}

// CheckExpiry returns how long until the earliest loaded certificate
// expires.
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	var earliest time.Time
	for _, expiry := range []time.Time{cm.serverCertExpiry, cm.clientCertExpiry} {
		if expiry.IsZero() {
			continue
		}
		if earliest.IsZero() || expiry.Before(earliest) {
			earliest = expiry
		}
	}

	if earliest.IsZero() {
		return 0, fmt.Errorf("no certificates loaded")
	}
	return time.Until(earliest), nil
}

// GetMetrics returns a snapshot of reload activity.
func (cm *CertificateManager) GetMetrics() *CertificateMetrics {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return &CertificateMetrics{
		ReloadCount:        cm.reloadCount,
		ReloadSuccessCount: cm.reloadSuccessCount,
		ReloadFailureCount: cm.reloadFailureCount,
		LastReloadTime:     cm.lastReloadTime,
		LastReloadSuccess:  cm.lastReloadSuccess,
		LastReloadError:    cm.lastReloadError,
	}
}

// loadCertificates replaces the served certificates with whatever the
// current configuration points at. The swap is atomic under the lock.
func (cm *CertificateManager) loadCertificates() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	serverCert, err := cm.readServerCertificate()
	if err != nil {
		return err
	}

	caPool, err := cm.readCAPool()
	if err != nil {
		return err
	}

	cm.serverCert = serverCert
	cm.clientCert = nil
	cm.caCertPool = caPool
	cm.lastReloadTime = time.Now()

	cm.reloadCount++
	cm.reloadSuccessCount++
	cm.lastReloadSuccess = true
	cm.lastReloadError = ""
	cm.recordReloadMetric(true, nil)
	cm.notifyCallbacks(cm.reloadCallbacks, true, nil)

	if cm.logger != nil {
		cm.logger.Info("Certificates loaded",
			"server_cert_expiry", cm.serverCertExpiry,
			"reload_time", cm.lastReloadTime)
	}
	return nil
}

// readServerCertificate loads the server key pair from content when
// present (Vault), otherwise from files, and records its expiry.
func (cm *CertificateManager) readServerCertificate() (*tls.Certificate, error) {
	var (
		cert tls.Certificate
		err  error
	)

	switch {
	case cm.config.CertContent != "" && cm.config.KeyContent != "":
		cert, err = tls.X509KeyPair([]byte(cm.config.CertContent), []byte(cm.config.KeyContent))
	case cm.config.CertFile != "" && cm.config.KeyFile != "":
		cert, err = tls.LoadX509KeyPair(cm.config.CertFile, cm.config.KeyFile)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if len(cert.Certificate) > 0 {
		leaf, err := x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return nil, fmt.Errorf("failed to parse server certificate: %w", err)
		}
		cm.serverCertExpiry = leaf.NotAfter
	}

	return &cert, nil
}

// readCAPool builds the client-verification pool for mutual TLS.
func (cm *CertificateManager) readCAPool() (*x509.CertPool, error) {
	if cm.config.Mode != "mutual" {
		return nil, nil
	}

	var caPEM []byte
	switch {
	case cm.config.CAContent != "":
		caPEM = []byte(cm.config.CAContent)
	case cm.config.CAFile != "":
		var err error
		caPEM, err = os.ReadFile(cm.config.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
	default:
		return nil, nil
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}
	return pool, nil
}

// reloadFromWatcher handles reload requests from either watcher.
func (cm *CertificateManager) reloadFromWatcher() {
	if cm.logger != nil {
		cm.logger.Info("Certificate reload triggered")
	}

	if err := cm.loadCertificates(); err != nil {
		cm.recordReloadFailure(err)
	}
}

// recordReloadFailure counts a failed reload and notifies callbacks.
func (cm *CertificateManager) recordReloadFailure(err error) {
	cm.mu.Lock()
	cm.reloadCount++
	cm.reloadFailureCount++
	cm.lastReloadSuccess = false
	cm.lastReloadError = err.Error()
	callbacks := make([]ReloadCallback, len(cm.reloadCallbacks))
	copy(callbacks, cm.reloadCallbacks)
	cm.mu.Unlock()

	cm.recordReloadMetric(false, err)

	if cm.logger != nil {
		cm.logger.LogError(err, "Failed to reload certificates")
	}

	cm.notifyCallbacks(callbacks, false, err)
}

func (cm *CertificateManager) notifyCallbacks(callbacks []ReloadCallback, success bool, err error) {
	for _, cb := range callbacks {
		go cb(success, err)
	}
}

// recordReloadMetric emits the reload counter and refreshes the expiry
// gauges.
func (cm *CertificateManager) recordReloadMetric(success bool, err error) {
	metrics := cm.otelMetrics()
	if metrics == nil {
		return
	}

	ctx := context.Background()
	attrs := []attribute.KeyValue{
		attribute.String("cert_type", "server"),
	}
	if success {
		attrs = append(attrs, attribute.String("status", "success"))
	} else {
		attrs = append(attrs, attribute.String("status", "failure"))
		if err != nil {
			attrs = append(attrs, attribute.String("error", err.Error()))
		}
	}
	metrics.CertReloadCount.Add(ctx, 1, metric.WithAttributes(attrs...))

	cm.recordExpiryGauges()
}

// recordExpiryGauges publishes seconds-to-expiry for the loaded
// certificates.
func (cm *CertificateManager) recordExpiryGauges() {
	metrics := cm.otelMetrics()
	if metrics == nil {
		return
	}

	ctx := context.Background()
	now := time.Now()

	if !cm.serverCertExpiry.IsZero() {
		metrics.CertExpiryTime.Record(ctx, cm.serverCertExpiry.Sub(now).Seconds(),
			metric.WithAttributes(attribute.String("cert_type", "server")))
	}
	if !cm.clientCertExpiry.IsZero() {
		metrics.CertExpiryTime.Record(ctx, cm.clientCertExpiry.Sub(now).Seconds(),
			metric.WithAttributes(attribute.String("cert_type", "client")))
	}
}

func (cm *CertificateManager) otelMetrics() *observability.Metrics {
	if cm.observabilityManager == nil {
		return nil
	}
	return cm.observabilityManager.GetMetrics()
}

// startExpiryMonitoring refreshes the expiry gauges once a minute so
// dashboards track certificate age between reloads.
func (cm *CertificateManager) startExpiryMonitoring() {
	if cm.observabilityManager == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			cm.mu.RLock()
			cm.recordExpiryGauges()
			cm.mu.RUnlock()
		}
	}()

	if cm.logger != nil {
		cm.logger.Info("Certificate expiry monitoring started")
	}
}
