package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"label-service/internal/catalog"
	"label-service/internal/config"
	"label-service/internal/convert"
	"label-service/internal/discovery"
	"label-service/internal/middleware"
	"label-service/internal/service"
)

type staticScanner struct{}

func (staticScanner) Scan(ctx context.Context) ([]*discovery.DiscoveredDevice, error) {
	return []*discovery.DiscoveredDevice{{URI: "tcp://10.0.0.5:9100", Model: "QL-720NW", Confidence: 0.9}}, nil
}

func (staticScanner) GetScannerType() string { return "tcp" }

func (staticScanner) IsAvailable() bool { return true }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		App:      config.AppConfig{Name: "label-service", Environment: "test"},
		Security: config.SecurityConfig{AllowedOrigins: []string{"*"}},
		Printer:  config.PrinterConfig{Model: "QL-700", Label: "62"},
		Conversion: config.ConversionConfig{
			Rotate:    "auto",
			Threshold: 70,
		},
	}
	logger := zap.NewNop()
	registry := catalog.MustLoadBuiltin()
	printService := service.NewPrintService(convert.NewConverter(registry, logger), registry, cfg, logger)
	discoveryService := service.NewDiscoveryServiceWithScanners(registry, cfg, logger, staticScanner{})

	return NewRouter(cfg, logger, registry, printService, discoveryService).SetupRouter()
}

func TestRoutesRegistered(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/live", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/api/v1/labels", http.StatusOK},
		{http.MethodGet, "/api/v1/labels/62", http.StatusOK},
		{http.MethodGet, "/api/v1/models", http.StatusOK},
		{http.MethodGet, "/api/v1/models/ql_810w", http.StatusOK},
		{http.MethodGet, "/api/v1/discovery", http.StatusOK},
		{http.MethodGet, "/api/v1/discovery/scan?type=tcp", http.StatusOK},
		{http.MethodGet, "/api/v1/discovery/scan?timeout=soon", http.StatusBadRequest},
		{http.MethodGet, "/api/v1/discovery/scanners", http.StatusOK},
		{http.MethodGet, "/api/v1/printer/status", http.StatusBadRequest},
		{http.MethodGet, "/swagger/index.html", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestRequestIDPropagated(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set(middleware.RequestIDHeader, "job-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get(middleware.RequestIDHeader); got != "job-42" {
		t.Errorf("%s = %q, want job-42", middleware.RequestIDHeader, got)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("no request id assigned")
	}
}
