package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resumescore/internal/ats"
	"resumescore/internal/config"
	"resumescore/internal/errors"
	"resumescore/internal/observability"
	"resumescore/internal/types"
)

func newTestServer(t *testing.T, apiKeys []string) (*Server, *observability.ObservabilityManager) {
	t.Helper()

	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	appCfg := &config.Config{
		Engine: config.EngineConfig{DefaultRole: "general"},
	}
	appCfg.Observability.HealthCheck.Timeout = 5 * time.Second

	srv := NewServer(appCfg, ServerConfig{
		Host:           "localhost",
		Port:           "8080",
		Version:        "test",
		APIKeys:        apiKeys,
		MaxRequestSize: 1 << 20,
	}, logger)

	// Disabled observability keeps handlers on the no-op tracer path
	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, appCfg)
	if err != nil {
		t.Fatalf("failed to create observability manager: %v", err)
	}

	return srv, om
}

func TestAnalyzeHandler(t *testing.T) {
	srv, om := newTestServer(t, nil)
	handler := srv.createAnalyzeHandler(om)

	body, err := json.Marshal(AnalyzeRequest{
		Resume:     types.SampleResume(),
		TargetRole: "software-engineer",
	})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.OverallScore < 0 || result.OverallScore > 100 {
		t.Errorf("overall score out of range: %d", result.OverallScore)
	}
	if len(result.Rules) == 0 {
		t.Error("expected rule results in response")
	}
	if result.StrengthLevel == "" {
		t.Error("expected a strength level in response")
	}
}

func TestAnalyzeHandlerEmptyResumeStillScores(t *testing.T) {
	srv, om := newTestServer(t, nil)
	handler := srv.createAnalyzeHandler(om)

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader([]byte(`{"resume":{}}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.StrengthLevel != types.StrengthNeedsWork {
		t.Errorf("expected needs-work for empty resume, got %s", result.StrengthLevel)
	}
}

func TestAnalyzeHandlerRejectsWrongContentType(t *testing.T) {
	srv, om := newTestServer(t, nil)
	handler := srv.createAnalyzeHandler(om)

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader([]byte(`{"resume":{}}`)))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestAnalyzeHandlerRejectsMalformedJSON(t *testing.T) {
	srv, om := newTestServer(t, nil)
	handler := srv.createAnalyzeHandler(om)

	req := httptest.NewRequest(http.MethodPost, "/analyze", bytes.NewReader([]byte(`{not json`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error == "" {
		t.Error("expected error field in response")
	}
}

func TestRolesHandler(t *testing.T) {
	srv, om := newTestServer(t, nil)
	handler := srv.createRolesHandler(om)

	req := httptest.NewRequest(http.MethodGet, "/roles", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp RolesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Roles) == 0 {
		t.Error("expected at least one role")
	}

	found := false
	for _, role := range resp.Roles {
		if role == "general" {
			found = true
		}
	}
	if !found {
		t.Error("expected general role in list")
	}
}

func TestRolesHandlerRejectsPost(t *testing.T) {
	srv, om := newTestServer(t, nil)
	handler := srv.createRolesHandler(om)

	req := httptest.NewRequest(http.MethodPost, "/roles", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv, _ := newTestServer(t, []string{"secret-key-12345"})

	next := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	handler := srv.authMiddleware(next)

	tests := []struct {
		name       string
		apiKey     string
		authHeader string
		wantStatus int
	}{
		{"missing key", "", "", http.StatusUnauthorized},
		{"invalid key", "wrong-key", "", http.StatusUnauthorized},
		{"valid key", "secret-key-12345", "", http.StatusOK},
		{"valid bearer token", "", "Bearer secret-key-12345", http.StatusOK},
		{"invalid bearer token", "", "Bearer wrong-key", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestAuthMiddlewareDisabledWithoutKeys(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	next := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	handler := srv.authMiddleware(next)

	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 with no keys configured, got %d", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	srv.healthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", resp["status"])
	}

	engine, ok := resp["engine"].(map[string]any)
	if !ok {
		t.Fatal("expected engine section in health response")
	}
	if engine["available"] != true {
		t.Errorf("expected engine to be available, got %v", engine["available"])
	}
}

func TestStatsHandlerReportsEngineLimits(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	srv.statsHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	engine, ok := resp["engine"].(map[string]any)
	if !ok {
		t.Fatal("expected engine section in stats response")
	}
	if got := engine["max_suggestions"]; got != float64(ats.MaxSuggestions) {
		t.Errorf("expected max_suggestions %d, got %v", ats.MaxSuggestions, got)
	}
	if got := engine["max_missing_keywords"]; got != float64(ats.MaxMissingKeywords) {
		t.Errorf("expected max_missing_keywords %d, got %v", ats.MaxMissingKeywords, got)
	}
	if got := engine["default_role"]; got != srv.AppConfig.Engine.DefaultRole {
		t.Errorf("expected default_role %q, got %v", srv.AppConfig.Engine.DefaultRole, got)
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := maskAPIKey("short"); got != "****" {
		t.Errorf("expected fully masked short key, got %s", got)
	}
	if got := maskAPIKey("abcdefgh12345678"); got != "abcdefgh****" {
		t.Errorf("expected prefix-masked key, got %s", got)
	}
}
