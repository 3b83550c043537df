package engine

import (
	"time"

	"github.com/threadintel/backend/internal/models"
)

const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// scorePriority combines thread metadata and the response signal into a
// single 0-100 score. Factors record every condition that fired, in
// evaluation order; downstream formatting surfaces them verbatim.
func (e *Engine) scorePriority(meta models.ThreadMetadata, responseNeeded bool, lastAt time.Time, now time.Time) models.PriorityScore {
	score := 0
	factors := []string{}
	add := func(points int, reason string) {
		score += points
		factors = append(factors, reason)
	}

	if meta.IsUrgent {
		add(30, "Urgent keywords flagged (+30)")
	}
	if responseNeeded {
		add(25, "Response needed on last message (+25)")
	}
	if !lastAt.IsZero() {
		age := now.Sub(lastAt)
		if age < 48*time.Hour {
			add(20, "Recent activity within 2 days (+20)")
		} else if age > 7*24*time.Hour {
			add(-10, "No activity for over 7 days (-10)")
		}
	}
	if meta.ParticipantCount > 3 {
		add(10, "More than 3 participants (+10)")
	}
	if meta.HasDelay {
		add(15, "Delay keywords flagged (+15)")
	}
	if meta.EmailCount > 10 {
		add(10, "High message volume (+10)")
	}
	if meta.IsTransport {
		add(5, "Transport topic (+5)")
	}
	if meta.IsCustoms {
		add(5, "Customs topic (+5)")
	}

	score = clampScore(score)
	return models.PriorityScore{
		Score:   score,
		Level:   e.priorityLevel(score),
		Factors: factors,
	}
}

func (e *Engine) priorityLevel(score int) string {
	switch {
	case score >= e.opts.CriticalThreshold:
		return PriorityCritical
	case score >= e.opts.HighThreshold:
		return PriorityHigh
	case score >= e.opts.MediumThreshold:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
