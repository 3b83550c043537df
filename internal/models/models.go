package models

import (
	"encoding/json"
	"time"
)

// Message is a single email extracted from whatever mail store holds the
// conversation. Immutable once read; ordering key is ReceivedAt.
type Message struct {
	Sender        string    `json:"sender"`
	SenderAddress string    `json:"sender_address,omitempty"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	Recipients    []string  `json:"recipients,omitempty"`
	ReceivedAt    time.Time `json:"received_at"`
}

// ThreadMetadata is precomputed over the whole thread. The four boolean
// flags are keyword hits over the concatenated subject+body text, decided
// by an injected keyword table.
type ThreadMetadata struct {
	ThreadName       string    `json:"thread_name"`
	ConversationID   string    `json:"conversation_id,omitempty"`
	EmailCount       int       `json:"email_count"`
	Participants     []string  `json:"participants"`
	ParticipantCount int       `json:"participant_count"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	DurationDays     int       `json:"duration_days"`
	IsUrgent         bool      `json:"is_urgent"`
	HasDelay         bool      `json:"has_delay"`
	IsTransport      bool      `json:"is_transport"`
	IsCustoms        bool      `json:"is_customs"`
}

type UrgencyScore struct {
	Score         int      `json:"score"`
	Level         string   `json:"level"`
	KeywordsFound []string `json:"keywords_found"`
}

type ThreadUrgency struct {
	MaxScore     int      `json:"max_score"`
	AverageScore float64  `json:"average_score"`
	Level        string   `json:"level"`
	Keywords     []string `json:"keywords"`
}

type SentimentScore struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
	Label    string  `json:"label"`
}

type ThreadSentiment struct {
	AverageCompound float64 `json:"average_compound"`
	Label           string  `json:"label"`
	Trend           string  `json:"trend"`
	TrendChange     float64 `json:"trend_change"`
}

// FlowEntry is one step of the recent conversation flow, body truncated
// to a short preview.
type FlowEntry struct {
	Date    time.Time `json:"date"`
	Sender  string    `json:"sender"`
	Subject string    `json:"subject"`
	Preview string    `json:"preview"`
}

type ConversationInsight struct {
	ResponseNeeded   bool        `json:"response_needed"`
	NextAction       string      `json:"next_action"`
	WaitingOn        string      `json:"waiting_on,omitempty"`
	LastResponder    string      `json:"last_responder"`
	KeyPoints        []string    `json:"key_points"`
	ConversationFlow []FlowEntry `json:"conversation_flow"`
}

type PriorityScore struct {
	Score   int      `json:"score"`
	Level   string   `json:"level"`
	Factors []string `json:"factors"`
}

type TriageAction struct {
	Description string     `json:"description"`
	OwnerGuess  string     `json:"owner_guess,omitempty"`
	RequestedBy string     `json:"requested_by"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type TriageResult struct {
	Actions           []TriageAction `json:"actions"`
	DueSoon           bool           `json:"due_soon"`
	Escalate          bool           `json:"escalate"`
	SuggestedNextStep string         `json:"suggested_next_step"`
}

// ThreadAnalysis is the merged output of one analysis run. Pure data;
// round-trips through JSON without the engine.
type ThreadAnalysis struct {
	ThreadName       string              `json:"thread_name"`
	Metadata         ThreadMetadata      `json:"metadata"`
	ExecutiveSummary string              `json:"executive_summary"`
	Status           string              `json:"status"`
	Stakeholders     []string            `json:"stakeholders"`
	Priority         PriorityScore       `json:"priority"`
	Insight          ConversationInsight `json:"conversation_insight"`
	Triage           TriageResult        `json:"triage"`
	Urgency          ThreadUrgency       `json:"urgency"`
	Sentiment        ThreadSentiment     `json:"sentiment"`
	Method           string              `json:"method"`
}

// Run records one batch analysis pass.
type Run struct {
	ID         string          `json:"id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Status     string          `json:"status"`
	Summary    json.RawMessage `json:"summary"`
}
