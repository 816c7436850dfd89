package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks fills in values viper cannot derive on its own:
// comma-separated API keys from the environment, mode-dependent TLS
// defaults, and a host-derived service instance ID.
func (c *Config) applyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		if raw := os.Getenv("RESUMESCORE_SERVER_APIKEYS"); raw != "" {
			keys := strings.Split(raw, ",")
			for i := range keys {
				keys[i] = strings.TrimSpace(keys[i])
			}
			c.Server.APIKeys = keys
		}
	}

	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}

	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = serviceInstanceID(c.Observability.ServiceName)
	}
}

// serviceInstanceID derives an instance ID from the hostname.
func serviceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// watchedEnvVars are the overrides surfaced in the startup summary.
var watchedEnvVars = []string{
	"RESUMESCORE_SERVER_PORT",
	"RESUMESCORE_SERVER_HOST",
	"RESUMESCORE_SERVER_APIKEYS",
	"RESUMESCORE_APP_LOGLEVEL",
	"RESUMESCORE_ENGINE_DEFAULTROLE",
	"RESUMESCORE_VAULT_ENABLED",
}

// logConfigurationSources summarizes where the effective configuration
// came from, masking anything key-like.
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	log.Println("[CONFIG] Environment variables:")
	found := false
	for _, name := range watchedEnvVars {
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(name), "key") {
			log.Printf("[CONFIG]   %s=***MASKED***", name)
		} else {
			log.Printf("[CONFIG]   %s=%s", name, value)
		}
		found = true
	}
	if !found {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] Default Role: %s", c.Engine.DefaultRole)
	log.Printf("[CONFIG] TLS Mode: %s", c.Server.TLS.Mode)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	if len(c.Server.APIKeys) > 0 {
		log.Printf("[CONFIG] API Keys: %d configured", len(c.Server.APIKeys))
	} else {
		log.Println("[CONFIG] API Keys: none (authentication disabled)")
	}
	log.Println("[CONFIG] =====================================")
}
