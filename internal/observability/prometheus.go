package observability

import (
	"fmt"
	"net/http"
	"time"

	"resumescore/internal/config"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusConfig controls the scrape endpoint for engine and server
// metrics.
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string
}

const (
	defaultPrometheusEndpoint = "/metrics"
	defaultPrometheusPort     = "9090"
)

// SetupPrometheusExporter builds an OTel metric reader backed by the
// Prometheus client registry, plus the mux that serves the scrape
// endpoint. Returns nils when the exporter is disabled.
func SetupPrometheusExporter(cfg PrometheusConfig) (metric.Reader, *http.ServeMux, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultPrometheusEndpoint
	}

	// The OTel exporter registers into the default Prometheus registry,
	// so the stock promhttp handler picks up every analysis metric.
	mux := http.NewServeMux()
	mux.Handle(endpoint, promhttp.Handler())

	return exporter, mux, nil
}

// StartPrometheusServer serves the scrape endpoint on its own port so
// metrics stay reachable independent of the API listener's TLS mode.
func StartPrometheusServer(mux *http.ServeMux, port string) error {
	if mux == nil {
		return nil
	}
	if port == "" {
		port = defaultPrometheusPort
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	fmt.Printf("Prometheus scrape endpoint listening on http://localhost%s/metrics\n", srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Prometheus server error: %v\n", err)
		}
	}()

	return nil
}

// GetPrometheusConfig maps application configuration onto the exporter
// settings, falling back to a local scrape setup when no config is
// loaded.
func GetPrometheusConfig(cfg *config.Config) PrometheusConfig {
	if cfg == nil {
		return PrometheusConfig{
			Enabled:  true,
			Endpoint: defaultPrometheusEndpoint,
			Port:     defaultPrometheusPort,
		}
	}

	return PrometheusConfig{
		Enabled:  cfg.Observability.Prometheus.Enabled,
		Endpoint: cfg.Observability.Prometheus.Endpoint,
		Port:     cfg.Observability.Prometheus.Port,
	}
}
