package server

import (
	"net/http"
	"strings"

	"resumescore/internal/observability"
)

// setupRoutes builds the route table. The scoring endpoints sit behind
// rate limiting and authentication; health and stats stay open so
// monitoring works without credentials.
func (s *Server) setupRoutes(om *observability.ObservabilityManager) *http.ServeMux {
	rateLimited := s.createRateLimitMiddleware(om)
	sizeLimited := s.requestSizeLimitMiddleware()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/stats", s.statsHandler)
	mux.HandleFunc("/analyze",
		rateLimited(s.authMiddleware(sizeLimited(s.createAnalyzeHandler(om)))))
	mux.HandleFunc("/roles",
		rateLimited(s.authMiddleware(s.createRolesHandler(om))))
	return mux
}

// requestAPIKey pulls the credential from X-API-Key, falling back to
// an Authorization Bearer token.
func requestAPIKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	return ""
}

// authMiddleware enforces API key authentication. With no keys
// configured the check is disabled entirely.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.APIKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", r.RemoteAddr)
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if !s.APIKeys[apiKey] {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", r.RemoteAddr,
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"client_ip", r.RemoteAddr,
			"api_key_prefix", maskAPIKey(apiKey))
		next(w, r)
	}
}

// requestSizeLimitMiddleware caps request bodies at MaxRequestSize so
// oversized resumes fail with a decode error instead of exhausting
// memory.
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}
			next(w, r)
		}
	}
}

// maskAPIKey keeps at most the first 8 characters for log output.
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
