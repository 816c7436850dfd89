package server

import (
	"time"

	"resumescore/internal/config"
	resumescoreErrors "resumescore/internal/errors"
	"resumescore/internal/types"
)

// AnalyzeRequest is the /analyze request body. TargetRole is optional;
// the configured default role applies when it is empty.
type AnalyzeRequest struct {
	Resume     types.Resume `json:"resume"`
	TargetRole string       `json:"targetRole,omitempty"`
}

// RolesResponse is the /roles response body.
type RolesResponse struct {
	Roles []string `json:"roles"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server is the scoring API. It owns the listener configuration plus
// the long-lived pieces: rate limiter, certificate manager, logger.
type Server struct {
	Host    string
	Port    string
	Version string

	AppConfig *config.Config

	TLSConfig          config.TLSConfig
	CertificateManager *CertificateManager

	// Key set for auth; empty means authentication is off.
	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Logger *resumescoreErrors.Logger
}

// ServerConfig bundles the NewServer parameters.
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer builds a Server. The rate limiter is only constructed when
// limiting is enabled; a nil limiter disables the middleware.
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *resumescoreErrors.Logger) *Server {
	apiKeys := make(map[string]bool, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeys[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeys,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
