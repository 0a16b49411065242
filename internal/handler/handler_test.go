package handler

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"label-service/internal/catalog"
	"label-service/internal/config"
	"label-service/internal/convert"
	"label-service/internal/service"
	"label-service/internal/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "label-service", Version: "test"},
		Server: config.ServerConfig{MaxUploadBytes: 1 << 20},
		Printer: config.PrinterConfig{
			Model: "QL-700",
			Label: "62",
		},
		Conversion: config.ConversionConfig{
			Cut:       true,
			Rotate:    "auto",
			HQ:        true,
			Threshold: 70,
		},
	}
}

func setupRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	registry := catalog.MustLoadBuiltin()
	printService := service.NewPrintService(convert.NewConverter(registry, logger), registry, cfg, logger)

	health := NewHealthHandler(registry, cfg, logger)
	catalogHandler := NewCatalogHandler(registry, logger)
	printHandler := NewPrintHandler(printService, cfg.Server.MaxUploadBytes, logger)

	router := gin.New()
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	api := router.Group("/api/v1")
	api.GET("/labels", catalogHandler.ListLabels)
	api.GET("/labels/:label_id", catalogHandler.GetLabel)
	api.GET("/models", catalogHandler.ListModels)
	api.GET("/models/:model_id", catalogHandler.GetModel)
	api.POST("/convert", printHandler.ConvertImages)
	api.POST("/preview", printHandler.PreviewImage)
	api.POST("/print", printHandler.PrintImages)
	api.GET("/printer/status", printHandler.GetPrinterStatus)
	return router
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path string, fields map[string]string, images ...[]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for i, data := range images {
		fw, err := mw.CreateFormFile(imageField, "page"+string(rune('a'+i))+".png")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) utils.APIResponse {
	t.Helper()
	var resp utils.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v: %s", err, w.Body.String())
	}
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	router := setupRouter(testConfig())

	for _, path := range []string{"/health", "/ready", "/live"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			if w.Code != http.StatusOK {
				t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestCatalogEndpoints(t *testing.T) {
	router := setupRouter(testConfig())

	tests := []struct {
		name string
		path string
		want int
	}{
		{"all labels", "/api/v1/labels", http.StatusOK},
		{"endless labels", "/api/v1/labels?kind=endless", http.StatusOK},
		{"labels for model", "/api/v1/labels?model=QL-810W", http.StatusOK},
		{"bad kind", "/api/v1/labels?kind=round", http.StatusBadRequest},
		{"labels for unknown model", "/api/v1/labels?model=QL-1", http.StatusNotFound},
		{"one label", "/api/v1/labels/62x29", http.StatusOK},
		{"unknown label", "/api/v1/labels/nope", http.StatusNotFound},
		{"all models", "/api/v1/models", http.StatusOK},
		{"two-color models", "/api/v1/models?capability=two_color", http.StatusOK},
		{"one model", "/api/v1/models/QL-810W", http.StatusOK},
		{"unknown model", "/api/v1/models/QL-1", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestGetLabelDots(t *testing.T) {
	router := setupRouter(testConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/labels/62x29", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	data, ok := decodeResponse(t, w).Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data is %T", decodeResponse(t, w).Data)
	}
	tests := []struct {
		field string
		want  []float64
	}{
		{"dots_printable", []float64{696, 271}},
		{"dots_total", []float64{732, 341}},
	}
	for _, tt := range tests {
		got, _ := data[tt.field].([]interface{})
		if len(got) != 2 || got[0] != tt.want[0] || got[1] != tt.want[1] {
			t.Errorf("%s = %v, want %v", tt.field, data[tt.field], tt.want)
		}
	}
}

func TestConvertEndpoint(t *testing.T) {
	router := setupRouter(testConfig())
	page := pngBytes(t, 696, 20, color.White)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/api/v1/convert", map[string]string{"cut": "false"}, page, page))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get(HeaderPages); got != "2" {
		t.Errorf("%s = %q, want 2", HeaderPages, got)
	}
	if got := w.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Errorf("Content-Type = %q", got)
	}
	data := w.Body.Bytes()
	if len(data) == 0 || data[len(data)-1] != 0x1A {
		t.Error("body is not a finished instruction stream")
	}
}

func TestConvertEndpointErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxUploadBytes = 4096
	router := setupRouter(cfg)
	page := pngBytes(t, 696, 20, color.White)

	tests := []struct {
		name   string
		fields map[string]string
		images [][]byte
		want   int
	}{
		{"no images", nil, nil, http.StatusBadRequest},
		{"not an image", nil, [][]byte{[]byte("hello")}, http.StatusBadRequest},
		{"unknown model", map[string]string{"model": "QL-1"}, [][]byte{page}, http.StatusNotFound},
		{"incompatible label", map[string]string{"label": "62red"}, [][]byte{page}, http.StatusConflict},
		{"two-color on single-color model", map[string]string{"red": "true"}, [][]byte{page}, http.StatusUnprocessableEntity},
		{"bad threshold", map[string]string{"threshold": "150"}, [][]byte{page}, http.StatusUnprocessableEntity},
		{"bad flag", map[string]string{"cut": "maybe"}, [][]byte{page}, http.StatusUnprocessableEntity},
		{"wrong die-cut size", map[string]string{"label": "62x29"}, [][]byte{pngBytes(t, 100, 100, color.Black)}, http.StatusUnprocessableEntity},
		{"too large", nil, [][]byte{make([]byte, 8192)}, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartRequest(t, "/api/v1/convert", tt.fields, tt.images...))
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			if resp := decodeResponse(t, w); resp.Success || resp.Error == nil {
				t.Errorf("expected an error envelope, got %+v", resp)
			}
		})
	}
}

func TestPreviewEndpoint(t *testing.T) {
	router := setupRouter(testConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, "/api/v1/preview", nil, pngBytes(t, 696, 10, color.Black)))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatalf("preview is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 720 {
		t.Errorf("preview width = %d, want 720", img.Bounds().Dx())
	}
}

func TestPrintEndpointErrors(t *testing.T) {
	router := setupRouter(testConfig())
	page := pngBytes(t, 696, 10, color.White)

	tests := []struct {
		name   string
		fields map[string]string
		want   int
	}{
		{"no printer configured", nil, http.StatusBadRequest},
		{"bad uri", map[string]string{"uri": "lpr://printer"}, http.StatusBadRequest},
		{"unreachable printer", map[string]string{"uri": "tcp://127.0.0.1:1"}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, multipartRequest(t, "/api/v1/print", tt.fields, page))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestPrinterStatusWithoutPrinter(t *testing.T) {
	router := setupRouter(testConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/printer/status", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
