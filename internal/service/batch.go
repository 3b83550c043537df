package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/threadintel/backend/internal/db"
	"github.com/threadintel/backend/internal/engine"
	"github.com/threadintel/backend/internal/models"
	"github.com/threadintel/backend/internal/utils"
)

const (
	RunStatusOK    = "OK"
	RunStatusError = "ERROR"
)

// AnalysisService runs the engine over batches of threads. Store is
// optional; when nil the service is analysis-only.
type AnalysisService struct {
	Engine *engine.Engine
	Store  *db.Store
	Logger zerolog.Logger
}

// ThreadInput is one conversation to analyze: raw messages plus naming.
// Metadata is derived here, not supplied by the caller.
type ThreadInput struct {
	ThreadName     string           `json:"thread_name"`
	ConversationID string           `json:"conversation_id,omitempty"`
	Messages       []models.Message `json:"messages"`
}

type RunSummary struct {
	Events []map[string]any `json:"events"`
	Counts map[string]any   `json:"counts"`
}

// AnalyzeBatch analyzes each thread independently; a failure in one
// thread yields a synthetic fallback record and never aborts the batch.
func (s *AnalysisService) AnalyzeBatch(ctx context.Context, inputs []ThreadInput, now time.Time) ([]models.ThreadAnalysis, RunSummary) {
	start := time.Now()
	summary := RunSummary{Counts: map[string]any{}}
	summary.Events = append(summary.Events, map[string]any{
		"type":    "batch_start",
		"message": "Threads ready for analysis",
		"count":   len(inputs),
		"time":    time.Now().UTC(),
	})

	var (
		analyzed    int
		fallbacks   int
		escalations int
		persisted   int
		saveErrors  int
	)

	analyses := make([]models.ThreadAnalysis, 0, len(inputs))
	for _, input := range inputs {
		analysis := s.analyzeOne(ctx, input, now)
		if analysis.Method == engine.MethodFallback {
			fallbacks++
		} else {
			analyzed++
		}
		if analysis.Triage.Escalate {
			escalations++
		}

		if s.Store != nil {
			id := AnalysisID(input.ThreadName, analysis.Metadata.EndDate)
			if err := s.Store.UpsertAnalysis(ctx, id, analysis); err != nil {
				saveErrors++
				s.Logger.Warn().Err(err).Str("thread", input.ThreadName).Msg("failed to persist analysis")
			} else {
				persisted++
			}
		}
		analyses = append(analyses, analysis)
	}

	summary.Events = append(summary.Events, map[string]any{
		"type":        "analysis",
		"analyzed":    analyzed,
		"fallbacks":   fallbacks,
		"escalations": escalations,
		"time":        time.Now().UTC(),
	})
	summary.Events = append(summary.Events, map[string]any{
		"type":       "db_save",
		"persisted":  persisted,
		"errors":     saveErrors,
		"elapsed_ms": time.Since(start).Milliseconds(),
		"time":       time.Now().UTC(),
	})

	summary.Counts["threads_total"] = len(inputs)
	summary.Counts["analyzed"] = analyzed
	summary.Counts["fallbacks"] = fallbacks
	summary.Counts["escalations"] = escalations
	summary.Counts["persisted"] = persisted
	summary.Counts["save_errors"] = saveErrors
	return analyses, summary
}

// analyzeOne is the per-thread error boundary.
func (s *AnalysisService) analyzeOne(ctx context.Context, input ThreadInput, now time.Time) (analysis models.ThreadAnalysis) {
	meta := models.ThreadMetadata{
		ThreadName:     input.ThreadName,
		ConversationID: input.ConversationID,
		EmailCount:     len(input.Messages),
		Participants:   []string{},
	}
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error().Str("thread", input.ThreadName).Any("panic", r).
				Msg("thread analysis failed, recording fallback summary")
			analysis = s.Engine.FallbackAnalysis(meta)
		}
	}()

	for _, msg := range input.Messages {
		if msg.ReceivedAt.IsZero() {
			s.Logger.Warn().Str("thread", input.ThreadName).Str("sender", msg.Sender).
				Msg("message has no timestamp, treated as earliest")
		}
	}

	meta = engine.BuildMetadata(input.ThreadName, input.ConversationID, input.Messages, s.Engine.Keywords())
	return s.Engine.AnalyzeThread(ctx, input.Messages, meta, now)
}

// RecordRun persists the batch outcome when a store is configured.
func (s *AnalysisService) RecordRun(ctx context.Context, startedAt time.Time, summary RunSummary) error {
	if s.Store == nil {
		return nil
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	status := RunStatusOK
	if errs, ok := summary.Counts["save_errors"].(int); ok && errs > 0 {
		status = RunStatusError
	}
	run := models.Run{
		ID:         fmt.Sprintf("run_%d", startedAt.UnixNano()),
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
		Status:     status,
		Summary:    payload,
	}
	return s.Store.InsertRun(ctx, run)
}

// AnalysisID is a stable identifier for one analyzed thread state.
func AnalysisID(threadName string, endDate time.Time) string {
	h := utils.HashStringToUint64(fmt.Sprintf("%s|%d", threadName, endDate.UnixNano()))
	return fmt.Sprintf("ta_%016x", h)
}
