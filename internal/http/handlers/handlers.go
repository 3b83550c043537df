package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/threadintel/backend/internal/db"
	"github.com/threadintel/backend/internal/digest"
	"github.com/threadintel/backend/internal/engine"
	"github.com/threadintel/backend/internal/models"
	"github.com/threadintel/backend/internal/service"
)

type Handler struct {
	Store     *db.Store
	Service   *service.AnalysisService
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string
}

type AnalyzeRequest struct {
	ThreadName     string              `json:"thread_name" validate:"required"`
	ConversationID string              `json:"conversation_id"`
	Messages       []models.Message    `json:"messages" validate:"required,min=1"`
	Keywords       map[string][]string `json:"keywords"`
}

type BatchRequest struct {
	Threads []AnalyzeRequest `json:"threads" validate:"required,min=1,dive"`
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
}

// @Summary Analyze one email thread
// @Description Runs the full pipeline over the supplied messages and returns the analysis record
// @Tags analyze
// @Accept json
// @Produce json
// @Param request body AnalyzeRequest true "thread"
// @Param digest query string false "set to 1 to include a markdown digest"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/analyze [post]
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	table := h.Service.Engine.Keywords()
	if len(req.Keywords) > 0 {
		table = engine.KeywordTable(req.Keywords)
	}
	meta := engine.BuildMetadata(req.ThreadName, req.ConversationID, req.Messages, table)
	analysis := h.Service.Engine.AnalyzeThread(c.Request.Context(), req.Messages, meta, time.Now().UTC())

	if c.Query("digest") == "1" {
		c.JSON(http.StatusOK, gin.H{"analysis": analysis, "digest": digest.Markdown(analysis)})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// @Summary Analyze a batch of threads
// @Description Analyzes each thread independently; one failing thread yields a fallback record
// @Tags analyze
// @Accept json
// @Produce json
// @Param request body BatchRequest true "threads"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/analyze/batch [post]
func (h *Handler) AnalyzeBatch(c *gin.Context) {
	req, ok := h.bindBatch(c)
	if !ok {
		return
	}

	// read-only variant: no persistence even when a store is configured
	svc := *h.Service
	svc.Store = nil
	analyses, summary := svc.AnalyzeBatch(c.Request.Context(), req, time.Now().UTC())
	c.JSON(http.StatusOK, gin.H{"analyses": analyses, "summary": summary})
}

// @Summary Run a persisted batch
// @Tags runs
// @Accept json
// @Produce json
// @Param request body BatchRequest true "threads"
// @Success 200 {object} map[string]any
// @Router /api/runs [post]
func (h *Handler) RunsCreate(c *gin.Context) {
	if h.Store == nil {
		writeError(c, http.StatusServiceUnavailable, "PERSISTENCE_DISABLED", "No database configured", nil)
		return
	}
	req, ok := h.bindBatch(c)
	if !ok {
		return
	}

	startedAt := time.Now().UTC()
	analyses, summary := h.Service.AnalyzeBatch(c.Request.Context(), req, startedAt)
	if err := h.Service.RecordRun(c.Request.Context(), startedAt, summary); err != nil {
		h.Logger.Error().Err(err).Msg("failed to record run")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to record run", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyzed": len(analyses), "summary": summary})
}

// @Summary Latest run
// @Tags runs
// @Produce json
// @Success 200 {object} models.Run
// @Router /api/runs/latest [get]
func (h *Handler) RunsLatest(c *gin.Context) {
	if h.Store == nil {
		writeError(c, http.StatusServiceUnavailable, "PERSISTENCE_DISABLED", "No database configured", nil)
		return
	}
	run, err := h.Store.LatestRun(c.Request.Context())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "No runs found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load run", err.Error())
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *Handler) AnalysesList(c *gin.Context) {
	if h.Store == nil {
		writeError(c, http.StatusServiceUnavailable, "PERSISTENCE_DISABLED", "No database configured", nil)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := h.Store.ListAnalyses(c.Request.Context(), limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list analyses", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit})
}

func (h *Handler) AnalysisGet(c *gin.Context) {
	if h.Store == nil {
		writeError(c, http.StatusServiceUnavailable, "PERSISTENCE_DISABLED", "No database configured", nil)
		return
	}
	record, err := h.Store.GetAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Analysis not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get analysis", err.Error())
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) bindBatch(c *gin.Context) ([]service.ThreadInput, bool) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return nil, false
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return nil, false
	}
	inputs := make([]service.ThreadInput, 0, len(req.Threads))
	for _, t := range req.Threads {
		inputs = append(inputs, service.ThreadInput{
			ThreadName:     t.ThreadName,
			ConversationID: t.ConversationID,
			Messages:       t.Messages,
		})
	}
	return inputs, true
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
