package engine

import (
	"sort"
	"strings"

	"github.com/threadintel/backend/internal/models"
)

// BuildMetadata computes thread metadata from raw messages, deciding the
// four boolean flags from the injected keyword table.
func BuildMetadata(threadName, conversationID string, messages []models.Message, table KeywordTable) models.ThreadMetadata {
	meta := models.ThreadMetadata{
		ThreadName:     threadName,
		ConversationID: conversationID,
		EmailCount:     len(messages),
		Participants:   []string{},
	}
	if len(messages) == 0 {
		return meta
	}

	sorted := sortMessages(messages)
	meta.StartDate = sorted[0].ReceivedAt
	meta.EndDate = sorted[len(sorted)-1].ReceivedAt
	meta.DurationDays = int(meta.EndDate.Sub(meta.StartDate).Hours() / 24)

	seen := map[string]struct{}{}
	var allText strings.Builder
	for _, msg := range sorted {
		if _, ok := seen[msg.Sender]; !ok {
			seen[msg.Sender] = struct{}{}
			meta.Participants = append(meta.Participants, msg.Sender)
		}
		allText.WriteString(strings.ToLower(msg.Subject))
		allText.WriteByte(' ')
		allText.WriteString(strings.ToLower(msg.Body))
		allText.WriteByte(' ')
	}
	meta.ParticipantCount = len(meta.Participants)

	text := allText.String()
	meta.IsUrgent = containsAny(text, table.terms(CategoryUrgent))
	meta.HasDelay = containsAny(text, table.terms(CategoryDelay))
	meta.IsTransport = containsAny(text, table.terms(CategoryTransport))
	meta.IsCustoms = containsAny(text, table.terms(CategoryCustoms))
	return meta
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// sortMessages orders chronologically, ties broken by original sequence.
// Zero timestamps sort earliest.
func sortMessages(messages []models.Message) []models.Message {
	sorted := append([]models.Message(nil), messages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ReceivedAt.Before(sorted[j].ReceivedAt)
	})
	return sorted
}
