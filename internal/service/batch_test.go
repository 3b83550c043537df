package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/threadintel/backend/internal/engine"
	"github.com/threadintel/backend/internal/models"
)

func testService(augment engine.Augmenter) *AnalysisService {
	return &AnalysisService{
		Engine: engine.New(engine.DefaultKeywords(), nil, augment, engine.Options{}, zerolog.Nop()),
		Logger: zerolog.Nop(),
	}
}

func batchFixture() []ThreadInput {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	return []ThreadInput{
		{
			ThreadName: "Load 4411",
			Messages: []models.Message{
				{Sender: "Ana", Subject: "Load 4411", Body: "Urgent: the delivery is delayed at customs.", ReceivedAt: now.Add(-2 * time.Hour)},
				{Sender: "Marko", Subject: "Re: Load 4411", Body: "Can you send the clearance documents?", ReceivedAt: now.Add(-time.Hour)},
			},
		},
		{
			ThreadName: "Quiet thread",
			Messages: []models.Message{
				{Sender: "Iva", Subject: "FYI", Body: "All fine here, nothing to report.", ReceivedAt: now.Add(-3 * time.Hour)},
			},
		},
	}
}

func TestAnalyzeBatchCounts(t *testing.T) {
	s := testService(nil)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	analyses, summary := s.AnalyzeBatch(context.Background(), batchFixture(), now)
	if len(analyses) != 2 {
		t.Fatalf("expected 2 analyses, got %d", len(analyses))
	}
	if summary.Counts["threads_total"] != 2 || summary.Counts["analyzed"] != 2 {
		t.Fatalf("unexpected counts %+v", summary.Counts)
	}
	if summary.Counts["fallbacks"] != 0 {
		t.Fatalf("expected no fallbacks, got %+v", summary.Counts)
	}
	if summary.Counts["escalations"] != 1 {
		t.Fatalf("expected 1 escalation (urgent thread), got %+v", summary.Counts)
	}
	if analyses[0].ThreadName != "Load 4411" || !analyses[0].Triage.Escalate {
		t.Fatalf("expected urgent thread to escalate, got %+v", analyses[0].Triage)
	}
	if len(summary.Events) != 3 {
		t.Fatalf("expected batch_start, analysis and db_save events, got %+v", summary.Events)
	}
}

func TestAnalyzeBatchRecoversPerThread(t *testing.T) {
	s := testService(func(ctx context.Context, text string) (string, error) {
		panic("summarizer backend exploded")
	})
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	analyses, summary := s.AnalyzeBatch(context.Background(), batchFixture(), now)
	if len(analyses) != 2 {
		t.Fatalf("expected a record per thread even on panic, got %d", len(analyses))
	}
	if summary.Counts["fallbacks"] != 2 {
		t.Fatalf("expected 2 fallbacks, got %+v", summary.Counts)
	}
	for _, a := range analyses {
		if a.Method != engine.MethodFallback {
			t.Fatalf("expected fallback method, got %+v", a)
		}
	}
}

func TestAnalysisIDStable(t *testing.T) {
	end := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	a := AnalysisID("Load 4411", end)
	b := AnalysisID("Load 4411", end)
	if a != b {
		t.Fatalf("expected stable id, got %s and %s", a, b)
	}
	if a == AnalysisID("Load 4412", end) {
		t.Fatalf("expected distinct ids for distinct threads")
	}
}
