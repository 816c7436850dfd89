package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"resumescore/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection settings.
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets names the KVv2 paths the scoring API reads at startup.
type VaultSecrets struct {
	// APIKeys points at a secret whose "keys" field holds a
	// comma-separated list of accepted API keys.
	APIKeys string `mapstructure:"apiKeys"`
	// TLSCerts points at a secret with "cert", "key", and "ca" PEM
	// fields.
	TLSCerts string `mapstructure:"tlsCerts"`
}

// VaultSecret is a secret read from a KVv2 engine, with the version
// the watcher uses to detect rotation.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// VaultClient wraps the Vault API client with logging and KVv2
// parsing.
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *errors.Logger
}

// NewVaultClient connects to Vault and verifies the connection.
// Returns (nil, nil) when Vault integration is disabled.
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !cfg.Enabled {
		if logger != nil {
			logger.Debug("Vault integration disabled")
		}
		return nil, nil
	}

	if logger != nil {
		logger.Debug("Initializing Vault client",
			"address", cfg.Address,
			"namespace", cfg.Namespace,
			"token_file", cfg.TokenFile,
			"has_token", cfg.Token != "")
	}

	apiConfig := api.DefaultConfig()
	if cfg.Address != "" {
		apiConfig.Address = cfg.Address
	}

	client, err := api.NewClient(apiConfig)
	if err != nil {
		if logger != nil {
			logger.LogError(err, "Failed to create Vault client")
		}
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg, logger)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		if logger != nil {
			logger.LogError(err, "Failed to connect to Vault", "address", cfg.Address)
		}
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	if logger != nil {
		logger.Info("Connected to Vault",
			"address", cfg.Address,
			"version", health.Version,
			"sealed", health.Sealed,
			"cluster_name", health.ClusterName)
	}

	return &VaultClient{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

// resolveVaultToken returns the token from config, falling back to the
// token file. The file content is trimmed since agent-written token
// files usually end in a newline.
func resolveVaultToken(cfg VaultConfig, logger *errors.Logger) (string, error) {
	token := cfg.Token

	if token == "" && cfg.TokenFile != "" {
		raw, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			if logger != nil {
				logger.LogError(err, "Failed to read Vault token file", "file", cfg.TokenFile)
			}
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(raw))
	}

	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// GetSecretV2 reads and parses a KVv2 secret.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	if vc.logger != nil {
		vc.logger.Debug("Reading secret from Vault", "path", path)
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		if vc.logger != nil {
			vc.logger.LogError(err, "Failed to read secret from Vault", "path", path)
		}
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		if vc.logger != nil {
			vc.logger.Warn("Secret not found at path", "path", path)
		}
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	return parseKVv2Secret(secret, path)
}

// parseKVv2Secret unwraps the data/metadata envelope of a KVv2 read.
func parseKVv2Secret(secret *api.Secret, path string) (*VaultSecret, error) {
	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}

	metadata, ok := secret.Data["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	versionRaw, ok := metadata["version"]
	if !ok {
		return nil, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	}

	version, err := parseSecretVersion(versionRaw, path)
	if err != nil {
		return nil, err
	}

	return &VaultSecret{Data: data, Version: version}, nil
}

// parseSecretVersion normalizes the version, which arrives as
// json.Number-ish types depending on the transport.
func parseSecretVersion(raw any, path string) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, raw)
	}
}

// GetStringSecret reads one string field from a secret.
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}

	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	strValue, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}

	if vc.logger != nil {
		vc.logger.Debug("String secret retrieved from Vault",
			"path", path,
			"key", key,
			"masked_value", maskSecretValue(strValue))
	}
	return strValue, nil
}

// GetStringSliceSecret reads a comma-separated field as a slice.
func (vc *VaultClient) GetStringSliceSecret(path, key string) ([]string, error) {
	value, err := vc.GetStringSecret(path, key)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return []string{}, nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, len(parts))
	for i, part := range parts {
		result[i] = strings.TrimSpace(part)
	}
	return result, nil
}

// maskSecretValue keeps only the edges of a secret for log output.
func maskSecretValue(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "****" + value[len(value)-4:]
}

// ApplyVaultSecrets overlays Vault-held secrets (API keys, TLS
// certificates) onto the loaded configuration. Vault wins over file
// and environment values.
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		if logger != nil {
			logger.Debug("Vault integration disabled, skipping secret loading")
		}
		return nil
	}

	if logger != nil {
		logger.Info("Loading secrets from Vault",
			"api_keys_path", config.Vault.Secrets.APIKeys,
			"tls_certs_path", config.Vault.Secrets.TLSCerts)
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}
	if client == nil {
		return nil
	}

	if err := applyAPIKeysFromVault(client, config, logger); err != nil {
		return err
	}
	if err := applyTLSCertsFromVault(client, config, logger); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("Finished applying secrets from Vault")
	}
	return nil
}

// applyAPIKeysFromVault replaces the configured API keys with the ones
// held in Vault.
func applyAPIKeysFromVault(client *VaultClient, config *Config, logger *errors.Logger) error {
	path := config.Vault.Secrets.APIKeys
	if path == "" {
		return nil
	}

	apiKeys, err := client.GetStringSliceSecret(path, "keys")
	if err != nil {
		return fmt.Errorf("failed to load API keys from vault: %w", err)
	}

	if len(apiKeys) == 0 {
		if logger != nil {
			logger.Warn("No API keys found in Vault", "path", path)
		}
		return nil
	}

	config.Server.APIKeys = apiKeys
	if logger != nil {
		logger.Info("API keys loaded from Vault", "count", len(apiKeys))
	}
	return nil
}

// applyTLSCertsFromVault loads PEM content for the listener out of the
// TLS secret.
func applyTLSCertsFromVault(client *VaultClient, config *Config, logger *errors.Logger) error {
	path := config.Vault.Secrets.TLSCerts
	if path == "" {
		return nil
	}

	tlsData, err := client.GetSecretV2(path)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificates from vault: %w", err)
	}

	loaded := 0
	loaded += applyCertField(tlsData, "cert", &config.Server.TLS.CertContent)
	loaded += applyCertField(tlsData, "key", &config.Server.TLS.KeyContent)
	loaded += applyCertField(tlsData, "ca", &config.Server.TLS.CAContent)

	if err := rejectFilePathCertFields(tlsData); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("TLS certificates loaded from Vault", "certificates_loaded", loaded)
	}
	return nil
}

// applyCertField copies one PEM field into the config if present,
// returning 1 when something was loaded.
func applyCertField(tlsData *VaultSecret, key string, target *string) int {
	if content, ok := tlsData.Data[key].(string); ok && content != "" {
		*target = content
		return 1
	}
	return 0
}

// rejectFilePathCertFields fails on the legacy *_file fields: the
// Vault secret must hold certificate content, not paths into someone
// else's filesystem.
func rejectFilePathCertFields(tlsData *VaultSecret) error {
	for _, field := range []string{"cert_file", "key_file", "ca_file"} {
		if _, present := tlsData.Data[field]; present {
			return fmt.Errorf("vault TLS configuration error: '%s' field is no longer supported. Store certificate content in '%s' field instead",
				field, strings.TrimSuffix(field, "_file"))
		}
	}
	return nil
}
