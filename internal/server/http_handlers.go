package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"resumescore/internal/ats"
	"resumescore/internal/types"
)

// Certificate expiry thresholds for the health report.
const (
	certCriticalThreshold = 24 * time.Hour
	certWarningThreshold  = 7 * 24 * time.Hour
)

// healthHandler reports service health. The engine is exercised
// against the built-in sample resume; certificate state is included
// when TLS is active. A failing engine or expired certificate flips
// the status to degraded with a 503.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	engineStatus := s.checkEngineHealth()
	certStatus := s.checkCertificateHealth()

	response := map[string]any{
		"status":  "healthy",
		"service": "resumescore",
		"version": s.Version,
		"engine":  engineStatus,
	}
	if certStatus != nil {
		response["certificates"] = certStatus
	}

	if engineStatus["available"] == false || (certStatus != nil && certStatus["healthy"] == false) {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	writeJSON(w, response)
}

// checkEngineHealth scores the sample resume under the configured
// health check timeout and sanity-checks the result.
func (s *Server) checkEngineHealth() map[string]any {
	timeout := s.AppConfig.Observability.HealthCheck.Timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan types.AnalysisResult, 1)
	go func() {
		sample := types.SampleResume()
		done <- ats.Analyze(&sample, s.AppConfig.Engine.DefaultRole)
	}()

	select {
	case result := <-done:
		healthy := result.OverallScore >= 0 && result.OverallScore <= 100 && len(result.Rules) > 0
		status := map[string]any{
			"available":    healthy,
			"rule_count":   len(result.Rules),
			"sample_score": result.OverallScore,
			"role_count":   len(ats.Roles()),
		}
		if !healthy {
			status["error"] = "engine produced an invalid result"
		}
		return status
	case <-ctx.Done():
		return map[string]any{
			"available": false,
			"error":     fmt.Sprintf("engine health check timed out after %s", timeout),
		}
	}
}

// checkCertificateHealth summarizes certificate expiry, watcher state
// and reload counters. Returns nil when no certificate manager runs.
func (s *Server) checkCertificateHealth() map[string]any {
	cm := s.CertificateManager
	if cm == nil {
		return nil
	}

	timeToExpiry, err := cm.CheckExpiry()
	if err != nil {
		return map[string]any{
			"healthy": false,
			"error":   fmt.Sprintf("Failed to check certificate expiry: %v", err),
		}
	}

	certStatus := map[string]any{
		"time_to_expiry_hours": int(timeToExpiry.Hours()),
		"time_to_expiry":       timeToExpiry.String(),
	}

	switch {
	case timeToExpiry <= 0:
		certStatus["healthy"] = false
		certStatus["status"] = "expired"
		certStatus["message"] = "Certificate has expired"
	case timeToExpiry <= certCriticalThreshold:
		certStatus["healthy"] = false
		certStatus["status"] = "critical"
		certStatus["message"] = "Certificate expires within 24 hours"
	case timeToExpiry <= certWarningThreshold:
		certStatus["healthy"] = true
		certStatus["status"] = "warning"
		certStatus["message"] = "Certificate expires within 7 days"
	default:
		certStatus["healthy"] = true
		certStatus["status"] = "ok"
		certStatus["message"] = "Certificate is valid"
	}

	certStatus["auto_reload"] = s.autoReloadStatus(cm)

	if metrics := cm.GetMetrics(); metrics != nil {
		certStatus["metrics"] = map[string]any{
			"reload_count":         metrics.ReloadCount,
			"reload_success_count": metrics.ReloadSuccessCount,
			"reload_failure_count": metrics.ReloadFailureCount,
			"last_reload_time":     metrics.LastReloadTime,
			"last_reload_success":  metrics.LastReloadSuccess,
			"last_reload_error":    metrics.LastReloadError,
		}
	}

	return certStatus
}

// autoReloadStatus reports the certificate watchers' runtime state.
func (s *Server) autoReloadStatus(cm *CertificateManager) map[string]any {
	if !s.TLSConfig.AutoReload.Enabled {
		return map[string]any{"enabled": false}
	}

	status := map[string]any{
		"enabled":               true,
		"file_watcher_enabled":  s.TLSConfig.AutoReload.FileWatcher.Enabled,
		"vault_watcher_enabled": s.TLSConfig.AutoReload.VaultWatcher.Enabled,
	}
	if cm.fileWatcher != nil {
		status["file_watcher_running"] = cm.fileWatcher.IsRunning()
		status["watched_files"] = cm.fileWatcher.GetWatchedFiles()
	}
	if cm.vaultWatcher != nil {
		status["vault_watcher_status"] = cm.vaultWatcher.Status()
	}
	return status
}

// statsHandler exposes engine constants and rate limiter state for
// dashboards.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "resumescore",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"engine": map[string]any{
			"rule_count":           len(ats.RuleDescriptions()),
			"role_count":           len(ats.Roles()),
			"default_role":         s.AppConfig.Engine.DefaultRole,
			"max_suggestions":      ats.MaxSuggestions,
			"max_missing_keywords": ats.MaxMissingKeywords,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	writeJSON(w, response)
}

// parseJSONRequest decodes the request body, translating the
// MaxBytesReader overflow into a caller-friendly message.
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, response any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeErrorResponse emits the standard JSON error envelope.
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: error, Message: message}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
