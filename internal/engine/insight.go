package engine

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/threadintel/backend/internal/lexical"
	"github.com/threadintel/backend/internal/models"
)

const (
	flowWindow       = 5
	previewLen       = 150
	waitingSnippet   = 100
	maxKeyPoints     = 5
	maxKeyPointLen   = 150
	dormantAfterDays = 7
)

var responseIndicators = []string{
	"?", "please confirm", "can you", "could you", "would you",
	"need your", "waiting for", "please provide", "please send",
}

var waitingPhrases = []string{"waiting for", "waiting on", "pending", "awaiting"}

var keyPointTerms = []string{
	"decision", "agreed", "confirmed", "approved", "rejected",
	"issue", "problem", "solution", "action", "deadline",
}

// buildInsight inspects the most recent messages to decide whether a
// reply is owed, who owes it, and what happens next. Messages must be
// chronologically sorted and non-empty.
func buildInsight(sorted []models.Message, now time.Time) models.ConversationInsight {
	insight := models.ConversationInsight{
		KeyPoints:        []string{},
		ConversationFlow: []models.FlowEntry{},
	}
	if len(sorted) == 0 {
		insight.NextAction = "Monitor - no immediate action required"
		return insight
	}

	last := sorted[len(sorted)-1]
	insight.LastResponder = last.Sender
	lastBody := strings.ToLower(last.Body)

	flowStart := len(sorted) - flowWindow
	if flowStart < 0 {
		flowStart = 0
	}
	for _, msg := range sorted[flowStart:] {
		insight.ConversationFlow = append(insight.ConversationFlow, models.FlowEntry{
			Date:    msg.ReceivedAt,
			Sender:  msg.Sender,
			Subject: msg.Subject,
			Preview: preview(msg.Body, previewLen),
		})
	}

	for _, indicator := range responseIndicators {
		if strings.Contains(lastBody, indicator) {
			insight.ResponseNeeded = true
			insight.NextAction = "Response required - question or request in last email"
			break
		}
	}

	if !insight.ResponseNeeded {
		for _, phrase := range waitingPhrases {
			if idx := strings.Index(lastBody, phrase); idx >= 0 {
				insight.WaitingOn = strings.TrimSpace(lexical.TruncateRunes(lastBody[idx:], waitingSnippet))
				insight.NextAction = "Waiting on external party"
				break
			}
		}
	}

	insight.KeyPoints = extractKeyPoints(sorted)

	if insight.NextAction == "" {
		daysSince := int(now.Sub(last.ReceivedAt).Hours() / 24)
		switch {
		case daysSince > dormantAfterDays:
			insight.NextAction = fmt.Sprintf("Follow up - no activity for %d days", daysSince)
		case insight.ResponseNeeded:
			insight.NextAction = "Review and respond to last email"
		default:
			insight.NextAction = "Monitor - no immediate action required"
		}
	}
	return insight
}

// extractKeyPoints pulls short sentences mentioning decision/issue terms,
// deduplicated by normalized text and capped.
func extractKeyPoints(sorted []models.Message) []string {
	points := []string{}
	seen := map[string]struct{}{}
	for _, msg := range sorted {
		bodyLower := strings.ToLower(msg.Body)
		for _, term := range keyPointTerms {
			if !strings.Contains(bodyLower, term) {
				continue
			}
			for _, sent := range lexical.SplitSentences(msg.Body) {
				if utf8.RuneCountInString(sent) >= maxKeyPointLen || !strings.Contains(strings.ToLower(sent), term) {
					continue
				}
				point := fmt.Sprintf("[%s] %s", msg.Sender, sent)
				key := strings.ToLower(point)
				if _, dup := seen[key]; !dup {
					seen[key] = struct{}{}
					points = append(points, point)
				}
				break
			}
			if len(points) >= maxKeyPoints {
				return points
			}
		}
	}
	return points
}

func preview(body string, limit int) string {
	flattened := strings.Join(strings.Fields(strings.ReplaceAll(body, "\n", " ")), " ")
	cut := lexical.TruncateRunes(flattened, limit)
	if len(cut) == len(flattened) {
		return flattened
	}
	return strings.TrimSpace(cut) + "..."
}
