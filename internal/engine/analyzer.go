package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/threadintel/backend/internal/models"
)

const (
	MethodExtractive = "extractive"
	MethodAugmented  = "augmented"
	MethodFallback   = "fallback"
)

// AnalyzeThread runs the full pipeline over one conversation. It is pure
// given (messages, meta, now) except for the optional augmenter, which is
// invoked with a bounded timeout and silently replaced by the extractive
// summary on any failure.
func (e *Engine) AnalyzeThread(ctx context.Context, messages []models.Message, meta models.ThreadMetadata, now time.Time) models.ThreadAnalysis {
	if len(messages) == 0 {
		return e.emptyAnalysis(meta)
	}

	sorted := sortMessages(messages)
	last := sorted[len(sorted)-1]

	urgencies := make([]models.UrgencyScore, 0, len(sorted))
	sentiments := make([]models.SentimentScore, 0, len(sorted))
	for _, msg := range sorted {
		text := msg.Subject + " " + msg.Body
		urgencies = append(urgencies, e.scoreUrgency(text))
		sentiments = append(sentiments, e.messageSentiment(text))
	}

	insight := buildInsight(sorted, now)
	priority := e.scorePriority(meta, insight.ResponseNeeded, last.ReceivedAt, now)
	triage := e.buildTriage(sorted, meta, insight, now)

	summary, method := e.executiveSummary(ctx, sorted, meta)

	return models.ThreadAnalysis{
		ThreadName:       meta.ThreadName,
		Metadata:         meta,
		ExecutiveSummary: summary,
		Status:           threadStatus(last.ReceivedAt, meta.IsUrgent, now),
		Stakeholders:     stakeholders(sorted),
		Priority:         priority,
		Insight:          insight,
		Triage:           triage,
		Urgency:          e.aggregateUrgency(urgencies),
		Sentiment:        aggregateSentiment(sentiments),
		Method:           method,
	}
}

// executiveSummary builds the rule-based overview plus extractive
// sentences, then lets the augmenter replace the text when configured
// and still within deadline.
func (e *Engine) executiveSummary(ctx context.Context, sorted []models.Message, meta models.ThreadMetadata) (string, string) {
	parts := []string{overviewSentence(meta)}
	parts = append(parts, e.extractiveSummary(sorted)...)
	extractive := strings.Join(parts, " ")

	if e.augment == nil {
		return extractive, MethodExtractive
	}
	if ctx.Err() != nil {
		// deadline already passed; do not start the augmenter
		return extractive, MethodExtractive
	}

	augCtx, cancel := context.WithTimeout(ctx, e.opts.AugmentTimeout)
	defer cancel()
	text, err := e.augment(augCtx, prepareThreadText(sorted))
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			e.logger.Warn().Err(err).Msg("abstractive summarizer failed, using extractive summary")
		}
		return extractive, MethodExtractive
	}
	return strings.TrimSpace(text), MethodAugmented
}

func overviewSentence(meta models.ThreadMetadata) string {
	s := fmt.Sprintf("Email thread '%s' with %d emails over %d days involving %d participants.",
		meta.ThreadName, meta.EmailCount, meta.DurationDays, meta.ParticipantCount)
	if meta.IsUrgent {
		s += " Thread contains URGENT items."
	}
	if meta.HasDelay {
		s += " Thread discusses delays."
	}
	return s
}

// prepareThreadText flattens the thread for the abstractive backend.
func prepareThreadText(sorted []models.Message) string {
	var b strings.Builder
	for i, msg := range sorted {
		fmt.Fprintf(&b, "Email %d [%s] From %s: %s. ",
			i+1, msg.ReceivedAt.Format("2006-01-02 15:04"), msg.Sender, msg.Subject)
		b.WriteString(preview(msg.Body, 300))
		b.WriteString(" ")
	}
	return strings.TrimSpace(b.String())
}

func threadStatus(lastAt time.Time, urgent bool, now time.Time) string {
	days := int(now.Sub(lastAt).Hours() / 24)
	var status string
	switch {
	case days <= 0:
		status = "Active today"
	case days == 1:
		status = "Active yesterday"
	case days < 7:
		status = fmt.Sprintf("Active %d days ago", days)
	default:
		status = fmt.Sprintf("Last activity %d days ago", days)
	}
	if urgent {
		status += " - URGENT"
	}
	return status
}

// stakeholders ranks participants by message count, ties by first
// appearance.
func stakeholders(sorted []models.Message) []string {
	counts := map[string]int{}
	order := []string{}
	for _, msg := range sorted {
		if _, ok := counts[msg.Sender]; !ok {
			order = append(order, msg.Sender)
		}
		counts[msg.Sender]++
	}
	firstSeen := map[string]int{}
	for i, sender := range order {
		firstSeen[sender] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] == counts[order[j]] {
			return firstSeen[order[i]] < firstSeen[order[j]]
		}
		return counts[order[i]] > counts[order[j]]
	})
	out := make([]string, 0, len(order))
	for _, sender := range order {
		out = append(out, fmt.Sprintf("%s (%d emails)", sender, counts[sender]))
	}
	return out
}

func (e *Engine) emptyAnalysis(meta models.ThreadMetadata) models.ThreadAnalysis {
	a := e.FallbackAnalysis(meta)
	a.ExecutiveSummary = fmt.Sprintf("Email thread '%s' contains 0 emails.", meta.ThreadName)
	a.Method = MethodExtractive
	a.Status = "No messages"
	return a
}

// FallbackAnalysis is the synthetic minimal record callers use at the
// per-thread boundary when analysis itself fails.
func (e *Engine) FallbackAnalysis(meta models.ThreadMetadata) models.ThreadAnalysis {
	return models.ThreadAnalysis{
		ThreadName:       meta.ThreadName,
		Metadata:         meta,
		ExecutiveSummary: fmt.Sprintf("Email thread '%s' with %d emails.", meta.ThreadName, meta.EmailCount),
		Status:           "Unable to analyze",
		Stakeholders:     []string{},
		Priority:         models.PriorityScore{Level: PriorityLow, Factors: []string{}},
		Insight: models.ConversationInsight{
			NextAction:       "Monitor - no immediate action required",
			KeyPoints:        []string{},
			ConversationFlow: []models.FlowEntry{},
		},
		Triage: models.TriageResult{
			Actions:           []models.TriageAction{},
			Escalate:          meta.IsUrgent || meta.HasDelay,
			SuggestedNextStep: "Monitor thread",
		},
		Urgency:   models.ThreadUrgency{Level: UrgencyLow, Keywords: []string{}},
		Sentiment: models.ThreadSentiment{Label: SentimentNeutral, Trend: TrendStable},
		Method:    MethodFallback,
	}
}
