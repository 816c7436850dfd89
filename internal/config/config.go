package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root of the resolved configuration. Sources are
// layered, strongest first: Vault secrets, the config file,
// RESUMESCORE_* environment variables, built-in defaults.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Engine        EngineConfig        `mapstructure:"engine"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// EngineConfig tunes the scoring engine. The suggestion and
// missing-keyword caps are fixed engine constants, so only the
// fallback role lives here.
type EngineConfig struct {
	DefaultRole string `mapstructure:"defaultRole"` // taxonomy used when the caller names none
}

// ServerConfig shapes the HTTPS scoring API.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	TLS TLSConfig `mapstructure:"tls"`

	// Requests must present one of these as a Bearer token or
	// X-API-Key header. Empty disables authentication.
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig covers plain TLS and mutual TLS. Certificates come either
// from files on disk or as PEM content injected from Vault; the two
// sources are mutually exclusive per certificate.
type TLSConfig struct {
	Mode     string `mapstructure:"mode"` // disabled, server, mutual
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
	CAFile   string `mapstructure:"caFile"` // client CA, mutual mode only

	CertContent string `mapstructure:"certContent"`
	KeyContent  string `mapstructure:"keyContent"`
	CAContent   string `mapstructure:"caContent"`

	MinVersion       string   `mapstructure:"minVersion"`   // "1.2" or "1.3"
	CipherSuites     []string `mapstructure:"cipherSuites"` // optional allow-list
	ClientAuthPolicy string   `mapstructure:"clientAuthPolicy"`

	InsecureSkipVerify bool   `mapstructure:"insecureSkipVerify"` // dev only
	ServerName         string `mapstructure:"serverName"`

	AutoReload AutoReloadConfig `mapstructure:"autoReload"`
}

// AutoReloadConfig controls zero-downtime certificate rotation.
type AutoReloadConfig struct {
	Enabled           bool               `mapstructure:"enabled"`
	CheckInterval     time.Duration      `mapstructure:"checkInterval"`     // expiry check cadence
	PreemptiveRenewal time.Duration      `mapstructure:"preemptiveRenewal"` // reload this long before expiry
	MaxRetries        int                `mapstructure:"maxRetries"`
	RetryDelay        time.Duration      `mapstructure:"retryDelay"`
	FileWatcher       FileWatcherConfig  `mapstructure:"fileWatcher"`
	VaultWatcher      VaultWatcherConfig `mapstructure:"vaultWatcher"`
}

// FileWatcherConfig controls fsnotify-based certificate watching.
type FileWatcherConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// VaultWatcherConfig controls poll-based watching of the Vault TLS secret.
type VaultWatcherConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	PollInterval   time.Duration `mapstructure:"pollInterval"`
	AutoRenew      bool          `mapstructure:"autoRenew"`
	RenewThreshold time.Duration `mapstructure:"renewThreshold"`
	SecretPath     string        `mapstructure:"secretPath"`
}

// RateLimitConfig shapes the token-bucket limiter on the API.
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RequestsPerMin int  `mapstructure:"requestsPerMin"`
	BurstCapacity  int  `mapstructure:"burstCapacity"`
	ByIP           bool `mapstructure:"byIP"`
	ByAPIKey       bool `mapstructure:"byAPIKey"`
}

// AppConfig holds CLI-facing settings.
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds the tracing and metrics settings.
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
	HealthCheck     HealthCheckConfig   `mapstructure:"healthCheck"`
}

type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig gates the service's own instruments, grouped by
// concern so operators can turn off whole families at once.
type CustomMetricsConfig struct {
	Analysis        AnalysisMetricsConfig       `mapstructure:"analysis"`
	BusinessMetrics BusinessMetricsConfig       `mapstructure:"businessMetrics"`
	Infrastructure  InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// AnalysisMetricsConfig gates the per-run scoring engine instruments.
type AnalysisMetricsConfig struct {
	Enabled            bool `mapstructure:"enabled"`
	TrackDuration      bool `mapstructure:"trackDuration"`
	TrackScores        bool `mapstructure:"trackScores"`
	TrackRoleBreakdown bool `mapstructure:"trackRoleBreakdown"`
}

type BusinessMetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	TrackSuccessRates bool `mapstructure:"trackSuccessRates"`
	TrackContentSizes bool `mapstructure:"trackContentSizes"`
}

type InfrastructureMetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	TrackRateLimits bool `mapstructure:"trackRateLimits"`
	TrackCertExpiry bool `mapstructure:"trackCertExpiry"`
}

type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

type HealthCheckConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig resolves the layered configuration and validates it.
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Loading configuration")

	v := newViper()

	configFile := ""
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment")
	} else {
		configFile = v.ConfigFileUsed()
		log.Printf("[CONFIG] Loaded config file: %s", configFile)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFile)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// newViper prepares defaults, the RESUMESCORE_* environment binding
// and the config file search path.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RESUMESCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/resumescore/")
	v.AddConfigPath("$HOME/.resumescore")
	v.AddConfigPath(".")
	return v
}

// Validate rejects configurations the server or CLI cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	supported := false
	for _, format := range c.App.SupportedFormats {
		if format == c.App.DefaultFormat {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if c.Engine.DefaultRole == "" {
		return fmt.Errorf("engine default role is required")
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}
	return nil
}

// GlobalConfig is set once by InitConfig and read by the CLI commands.
var GlobalConfig *Config

func InitConfig() error {
	config, err := LoadConfig()
	if err != nil {
		return err
	}
	GlobalConfig = config
	return nil
}
