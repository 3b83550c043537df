package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/threadintel/backend/internal/engine"
	"github.com/threadintel/backend/internal/models"
	"github.com/threadintel/backend/internal/service"
)

func testHandler() *Handler {
	gin.SetMode(gin.TestMode)
	return &Handler{
		Service: &service.AnalysisService{
			Engine: engine.New(engine.DefaultKeywords(), nil, nil, engine.Options{}, zerolog.Nop()),
			Logger: zerolog.Nop(),
		},
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
	}
}

func testRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.POST("/api/analyze", h.Analyze)
	r.POST("/api/analyze/batch", h.AnalyzeBatch)
	r.GET("/api/analyses", h.AnalysesList)
	r.GET("/api/runs/latest", h.RunsLatest)
	return r
}

func analyzeBody(t *testing.T) []byte {
	t.Helper()
	req := AnalyzeRequest{
		ThreadName: "Load 4411",
		Messages: []models.Message{
			{Sender: "Ana", Subject: "Load 4411", Body: "Urgent: the delivery is delayed at customs.", ReceivedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)},
			{Sender: "Marko", Subject: "Re: Load 4411", Body: "Can you send the clearance documents?", ReceivedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)},
		},
	}
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return b
}

func TestAnalyzeEndpoint(t *testing.T) {
	h := testHandler()
	r := testRouter(h)

	req, _ := http.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(analyzeBody(t)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var analysis models.ThreadAnalysis
	if err := json.Unmarshal(w.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if analysis.ThreadName != "Load 4411" {
		t.Fatalf("unexpected thread name %q", analysis.ThreadName)
	}
	if !analysis.Triage.Escalate {
		t.Fatalf("expected escalation for urgent delayed thread, got %+v", analysis.Triage)
	}
}

func TestAnalyzeEndpointWithDigest(t *testing.T) {
	h := testHandler()
	r := testRouter(h)

	req, _ := http.NewRequest(http.MethodPost, "/api/analyze?digest=1", bytes.NewReader(analyzeBody(t)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Analysis models.ThreadAnalysis `json:"analysis"`
		Digest   string                `json:"digest"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Digest == "" || resp.Analysis.ThreadName != "Load 4411" {
		t.Fatalf("expected analysis plus digest, got %s", w.Body.String())
	}
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	h := testHandler()
	r := testRouter(h)

	req, _ := http.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader([]byte(`{"thread_name":"x","messages":[]}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty messages, got %d", w.Code)
	}
	var resp map[string]map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if resp["error"]["code"] != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error envelope %s", w.Body.String())
	}
}

func TestAnalyzeBatchEndpoint(t *testing.T) {
	h := testHandler()
	r := testRouter(h)

	body := fmt.Sprintf(`{"threads":[%s]}`, analyzeBody(t))
	req, _ := http.NewRequest(http.MethodPost, "/api/analyze/batch", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Analyses []models.ThreadAnalysis `json:"analyses"`
		Summary  service.RunSummary      `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Analyses) != 1 {
		t.Fatalf("expected 1 analysis, got %d", len(resp.Analyses))
	}
	if resp.Summary.Counts["threads_total"] != float64(1) {
		t.Fatalf("unexpected summary counts %+v", resp.Summary.Counts)
	}
}

func TestPersistenceEndpointsWithoutStore(t *testing.T) {
	h := testHandler()
	r := testRouter(h)

	for _, path := range []string{"/api/analyses", "/api/runs/latest"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected 503 without a store, got %d", path, w.Code)
		}
	}
}
