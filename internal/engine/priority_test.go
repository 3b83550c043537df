package engine

import (
	"testing"
	"time"

	"github.com/threadintel/backend/internal/models"
)

func TestScorePriorityUrgentRecentThread(t *testing.T) {
	e := testEngine()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	meta := models.ThreadMetadata{IsUrgent: true}

	got := e.scorePriority(meta, true, now.Add(-time.Hour), now)
	if got.Score != 75 {
		t.Fatalf("expected score 75 (30+25+20), got %d", got.Score)
	}
	if got.Level != PriorityCritical {
		t.Fatalf("expected Critical, got %s", got.Level)
	}
	if len(got.Factors) != 3 || got.Factors[0] != "Urgent keywords flagged (+30)" {
		t.Fatalf("unexpected factors %v", got.Factors)
	}
}

func TestScorePriorityDormantPenalty(t *testing.T) {
	e := testEngine()
	now := time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)

	got := e.scorePriority(models.ThreadMetadata{}, false, now.AddDate(0, 0, -14), now)
	if got.Score != 0 {
		t.Fatalf("expected clamp to 0 after -10 penalty, got %d", got.Score)
	}
	if got.Level != PriorityLow {
		t.Fatalf("expected Low, got %s", got.Level)
	}
	if len(got.Factors) != 1 || got.Factors[0] != "No activity for over 7 days (-10)" {
		t.Fatalf("expected only the recency penalty factor, got %v", got.Factors)
	}
}

func TestScorePriorityUrgentFloor(t *testing.T) {
	e := testEngine()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	got := e.scorePriority(models.ThreadMetadata{IsUrgent: true}, false, time.Time{}, now)
	if got.Score < 30 {
		t.Fatalf("urgent flag must push the score to at least 30, got %d", got.Score)
	}
	if got.Level == PriorityLow {
		t.Fatalf("urgent flag must lift the level above Low, got %s", got.Level)
	}
}

func TestScorePriorityAllSignals(t *testing.T) {
	e := testEngine()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	meta := models.ThreadMetadata{
		IsUrgent:         true,
		HasDelay:         true,
		IsTransport:      true,
		IsCustoms:        true,
		ParticipantCount: 5,
		EmailCount:       12,
	}

	got := e.scorePriority(meta, true, now.Add(-time.Hour), now)
	if got.Score != 100 {
		t.Fatalf("expected clamp at 100, got %d", got.Score)
	}
	if len(got.Factors) != 8 {
		t.Fatalf("expected 8 contributing factors, got %v", got.Factors)
	}
}
