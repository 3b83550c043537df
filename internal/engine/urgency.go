package engine

import (
	"regexp"
	"strings"

	"github.com/threadintel/backend/internal/models"
)

// Fixed order so keywords_found is deterministic across runs.
var urgencyKeywords = []struct {
	term   string
	weight int
}{
	{"asap", 10}, {"urgent", 10}, {"immediately", 10}, {"emergency", 10},
	{"critical", 9}, {"overdue", 9}, {"past due", 9},
	{"deadline", 8}, {"eod", 8}, {"end of day", 8}, {"escalate", 8}, {"escalation", 8},
	{"important", 7}, {"priority", 7},
	{"today", 6}, {"tonight", 6}, {"late", 6}, {"delayed", 6},
	{"tomorrow", 5}, {"by monday", 5}, {"need your", 5}, {"waiting for", 5},
	{"please confirm", 4}, {"by friday", 4},
}

var highImpactTerms = []string{"asap", "urgent", "immediately", "critical", "emergency"}

var allCapsPattern = regexp.MustCompile(`\b[A-Z]{3,}\b`)

const (
	UrgencyLow      = "low"
	UrgencyMedium   = "medium"
	UrgencyHigh     = "high"
	UrgencyCritical = "critical"
)

// scoreUrgency rates a single message's subject+body text.
func (e *Engine) scoreUrgency(text string) models.UrgencyScore {
	lowered := strings.ToLower(text)

	score := 0
	found := []string{}
	for _, kw := range urgencyKeywords {
		if strings.Contains(lowered, kw.term) {
			score += kw.weight
			found = append(found, kw.term)
		}
	}

	if n := strings.Count(text, "!") * 3; n > 15 {
		score += 15
	} else {
		score += n
	}
	if n := len(allCapsPattern.FindAllString(text, -1)) * 3; n > 15 {
		score += 15
	} else {
		score += n
	}

	// Synergy bonus when several high-impact terms co-occur.
	highImpact := 0
	for _, term := range highImpactTerms {
		if strings.Contains(lowered, term) {
			highImpact++
		}
	}
	if highImpact >= 2 {
		score += 15
	} else if highImpact == 1 {
		score += 5
	}

	score = clampScore(score)
	return models.UrgencyScore{
		Score:         score,
		Level:         e.urgencyLevel(score),
		KeywordsFound: found,
	}
}

func (e *Engine) urgencyLevel(score int) string {
	switch {
	case score >= e.opts.CriticalThreshold:
		return UrgencyCritical
	case score >= e.opts.HighThreshold:
		return UrgencyHigh
	case score >= e.opts.MediumThreshold:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// aggregateUrgency combines per-message scores; the thread level follows
// the maximum, not the average.
func (e *Engine) aggregateUrgency(scores []models.UrgencyScore) models.ThreadUrgency {
	agg := models.ThreadUrgency{Level: UrgencyLow, Keywords: []string{}}
	if len(scores) == 0 {
		return agg
	}

	total := 0
	seen := map[string]struct{}{}
	for _, s := range scores {
		if s.Score > agg.MaxScore {
			agg.MaxScore = s.Score
		}
		total += s.Score
		for _, kw := range s.KeywordsFound {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			agg.Keywords = append(agg.Keywords, kw)
		}
	}
	agg.AverageScore = round1(float64(total) / float64(len(scores)))
	agg.Level = e.urgencyLevel(agg.MaxScore)
	return agg
}

func round1(v float64) float64 {
	return float64(int(v*10+sign(v)*0.5)) / 10
}

func round3(v float64) float64 {
	return float64(int(v*1000+sign(v)*0.5)) / 1000
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
