package engine

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/threadintel/backend/internal/models"
)

func testEngine() *Engine {
	return New(DefaultKeywords(), nil, nil, Options{}, zerolog.Nop())
}

func TestScoreUrgencyKeywords(t *testing.T) {
	e := testEngine()
	got := e.scoreUrgency("URGENT: shipment delayed, please respond ASAP!!!")

	// asap+urgent+delayed (26) + 3 exclamations (9) + 2 caps words (6) + synergy (15)
	if got.Score != 56 {
		t.Fatalf("expected score 56, got %d", got.Score)
	}
	if got.Level != UrgencyHigh {
		t.Fatalf("expected high level, got %s", got.Level)
	}
	want := []string{"asap", "urgent", "delayed"}
	if len(got.KeywordsFound) != len(want) {
		t.Fatalf("expected keywords %v, got %v", want, got.KeywordsFound)
	}
	for i, kw := range want {
		if got.KeywordsFound[i] != kw {
			t.Fatalf("expected keywords %v, got %v", want, got.KeywordsFound)
		}
	}
}

func TestScoreUrgencyClamped(t *testing.T) {
	e := testEngine()
	got := e.scoreUrgency("URGENT EMERGENCY CRITICAL asap immediately overdue deadline escalate important priority today delayed tomorrow!!!!!!")
	if got.Score != 100 {
		t.Fatalf("expected clamp at 100, got %d", got.Score)
	}
	if got.Level != UrgencyCritical {
		t.Fatalf("expected critical level, got %s", got.Level)
	}
}

func TestScoreUrgencyNeutralText(t *testing.T) {
	e := testEngine()
	got := e.scoreUrgency("Thanks for the update, everything looks fine.")
	if got.Score != 0 || got.Level != UrgencyLow {
		t.Fatalf("expected zero low score, got %d %s", got.Score, got.Level)
	}
	if len(got.KeywordsFound) != 0 {
		t.Fatalf("expected no keywords, got %v", got.KeywordsFound)
	}
}

func TestUrgencyLevelBoundaries(t *testing.T) {
	e := testEngine()
	cases := []struct {
		score int
		level string
	}{
		{0, UrgencyLow}, {29, UrgencyLow},
		{30, UrgencyMedium}, {49, UrgencyMedium},
		{50, UrgencyHigh}, {69, UrgencyHigh},
		{70, UrgencyCritical}, {100, UrgencyCritical},
	}
	for _, c := range cases {
		if got := e.urgencyLevel(c.score); got != c.level {
			t.Fatalf("score %d: expected %s, got %s", c.score, c.level, got)
		}
	}
}

func TestAggregateUrgencyMaxDominates(t *testing.T) {
	e := testEngine()
	agg := e.aggregateUrgency([]models.UrgencyScore{
		{Score: 10, KeywordsFound: []string{"today"}},
		{Score: 60, KeywordsFound: []string{"urgent", "today"}},
	})
	if agg.MaxScore != 60 {
		t.Fatalf("expected max 60, got %d", agg.MaxScore)
	}
	if agg.AverageScore != 35.0 {
		t.Fatalf("expected average 35.0, got %v", agg.AverageScore)
	}
	if agg.Level != UrgencyHigh {
		t.Fatalf("expected high level from max, got %s", agg.Level)
	}
	if len(agg.Keywords) != 2 || agg.Keywords[0] != "today" || agg.Keywords[1] != "urgent" {
		t.Fatalf("expected deduplicated keywords [today urgent], got %v", agg.Keywords)
	}
}

func TestAggregateUrgencyEmpty(t *testing.T) {
	e := testEngine()
	agg := e.aggregateUrgency(nil)
	if agg.MaxScore != 0 || agg.Level != UrgencyLow {
		t.Fatalf("expected zero low aggregate, got %+v", agg)
	}
	if agg.Keywords == nil {
		t.Fatalf("expected empty keyword slice, got nil")
	}
}
