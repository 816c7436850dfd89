package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"resumescore/internal/ats"
	"resumescore/internal/observability"
	"resumescore/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createAnalyzeHandler wraps the analyze handler with observability
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumescore.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		// Parse request
		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		targetRole := strings.TrimSpace(req.TargetRole)
		if targetRole == "" {
			targetRole = s.AppConfig.Engine.DefaultRole
		}

		// Add request attributes to span
		span.SetAttributes(
			attribute.String("request.target_role", targetRole),
			attribute.Bool("request.known_role", ats.KnownRole(targetRole)),
			attribute.Int("request.experience_entries", len(req.Resume.Experience)),
			attribute.String("operation", "analyze"),
		)

		// Track the engine run with observability
		metrics := om.GetMetrics()
		var result types.AnalysisResult
		err := metrics.TrackAnalysis(ctx, targetRole, func(ctx context.Context) *observability.AnalysisOperationResult {
			result = ats.Analyze(&req.Resume, targetRole)
			return &observability.AnalysisOperationResult{
				OverallScore: result.OverallScore,
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "analysis"))
			metrics.RecordBusinessMetric(ctx, "resume_analyzed", false, om,
				attribute.String("error", err.Error()))
			writeErrorResponse(w, "Failed to analyze resume", err.Error(), http.StatusInternalServerError)
			return
		}

		// Record success metrics
		metrics.RecordBusinessMetric(ctx, "resume_analyzed", true, om,
			attribute.String("role", targetRole),
			attribute.Int("analysis.score", result.OverallScore),
			attribute.String("analysis.strength", result.StrengthLevel))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("analysis.score", result.OverallScore),
			attribute.String("analysis.strength", result.StrengthLevel),
			attribute.Int("analysis.suggestions", len(result.Suggestions)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createRolesHandler wraps the roles handler with observability
func (s *Server) createRolesHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		tracer := om.Tracer("resumescore.api")
		_, span := tracer.Start(ctx, "api.roles")
		defer span.End()

		roles := ats.Roles()
		span.SetAttributes(
			attribute.String("operation", "roles"),
			attribute.Int("response.role_count", len(roles)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(RolesResponse{Roles: roles}); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Check if this request was rate limited by examining the response
			// We'll wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
