// Package digest renders a ThreadAnalysis for humans. It is a formatting
// collaborator; the engine itself defines no wire format.
package digest

import (
	"fmt"
	"strings"

	"github.com/threadintel/backend/internal/models"
)

const dateFormat = "2006-01-02 15:04"

// Markdown renders the analysis as a markdown digest.
func Markdown(a models.ThreadAnalysis) string {
	var b strings.Builder
	meta := a.Metadata

	fmt.Fprintf(&b, "# %s\n\n", a.ThreadName)

	b.WriteString("## Thread Information\n\n")
	fmt.Fprintf(&b, "- **Emails**: %d\n", meta.EmailCount)
	fmt.Fprintf(&b, "- **Participants**: %d\n", meta.ParticipantCount)
	fmt.Fprintf(&b, "- **Date Range**: %s to %s\n", meta.StartDate.Format(dateFormat), meta.EndDate.Format(dateFormat))
	fmt.Fprintf(&b, "- **Duration**: %d days\n\n", meta.DurationDays)

	if flags := flagLine(meta); flags != "" {
		fmt.Fprintf(&b, "**Flags**: %s\n\n", flags)
	}

	fmt.Fprintf(&b, "## Priority: %s (%d/100)\n\n", a.Priority.Level, a.Priority.Score)
	for _, factor := range a.Priority.Factors {
		fmt.Fprintf(&b, "- %s\n", factor)
	}
	if len(a.Priority.Factors) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "%s\n\n", a.ExecutiveSummary)

	b.WriteString("## Current Status\n\n")
	fmt.Fprintf(&b, "%s\n\n", a.Status)

	writeInsight(&b, a.Insight)
	writeTriage(&b, a.Triage)

	if len(a.Stakeholders) > 0 {
		b.WriteString("## Stakeholders\n\n")
		for _, s := range a.Stakeholders {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n---\n*Summary generated using %s method*\n", a.Method)
	return b.String()
}

func flagLine(meta models.ThreadMetadata) string {
	var flags []string
	if meta.IsUrgent {
		flags = append(flags, "URGENT")
	}
	if meta.HasDelay {
		flags = append(flags, "DELAY")
	}
	if meta.IsTransport {
		flags = append(flags, "TRANSPORT")
	}
	if meta.IsCustoms {
		flags = append(flags, "CUSTOMS")
	}
	return strings.Join(flags, " | ")
}

func writeInsight(b *strings.Builder, insight models.ConversationInsight) {
	b.WriteString("## Conversation Insights\n\n")
	if insight.ResponseNeeded {
		b.WriteString("### Response Needed\n")
	}
	fmt.Fprintf(b, "**Next Action**: %s\n\n", insight.NextAction)
	if insight.LastResponder != "" {
		fmt.Fprintf(b, "**Last Response From**: %s\n\n", insight.LastResponder)
	}
	if insight.WaitingOn != "" {
		fmt.Fprintf(b, "**Waiting On**: %s\n\n", insight.WaitingOn)
	}

	if len(insight.ConversationFlow) > 0 {
		b.WriteString("### Recent Conversation Flow\n\n")
		for _, entry := range insight.ConversationFlow {
			fmt.Fprintf(b, "**%s** - %s\n", entry.Date.Format(dateFormat), entry.Sender)
			fmt.Fprintf(b, "> %s\n\n", entry.Preview)
		}
	}

	if len(insight.KeyPoints) > 0 {
		b.WriteString("### Key Discussion Points\n\n")
		for _, point := range insight.KeyPoints {
			fmt.Fprintf(b, "- %s\n", point)
		}
		b.WriteString("\n")
	}
}

func writeTriage(b *strings.Builder, triage models.TriageResult) {
	if len(triage.Actions) > 0 {
		b.WriteString("## Action Items\n\n")
		for _, action := range triage.Actions {
			line := action.Description
			if action.DueDate != nil {
				line += fmt.Sprintf(" (due %s)", action.DueDate.Format(dateFormat))
			}
			fmt.Fprintf(b, "- [ ] %s\n", line)
		}
		b.WriteString("\n")
	}
	if triage.Escalate || triage.DueSoon {
		b.WriteString("## Triage\n\n")
		if triage.Escalate {
			b.WriteString("- **Escalation recommended**\n")
		}
		if triage.DueSoon {
			b.WriteString("- Due date within 2 days\n")
		}
		fmt.Fprintf(b, "- Suggested next step: %s\n\n", triage.SuggestedNextStep)
	}
}
