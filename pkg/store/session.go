package store

import (
	"time"

	"hr-assistant-be/pkg/answer"
	"hr-assistant-be/pkg/leave"
	"hr-assistant-be/pkg/schedule"
)

// Query is one inbound utterance. Ephemeral; it lives only inside its
// session's turn history.
type Query struct {
	SessionID string    `json:"session_id"`
	RawText   string    `json:"raw_text"`
	Timestamp time.Time `json:"timestamp"`
}

// Result kinds for a turn.
const (
	ResultAnswer   = "answer"
	ResultSlots    = "slots"
	ResultTemplate = "template"
	ResultMessage  = "message"
)

// TurnResult is the outcome of processing one query: a grounded answer,
// proposed slots, a rendered leave template, or a plain assistant message
// (prompts, fallbacks).
type TurnResult struct {
	Kind    string                   `json:"kind"`
	Answer  *answer.Answer           `json:"answer,omitempty"`
	Slots   []schedule.SlotCandidate `json:"slots,omitempty"`
	Message string                   `json:"message,omitempty"`
}

// Turn pairs a query with its result. Appended atomically; a cancelled turn
// never leaves a half-written pair behind.
type Turn struct {
	Query  Query      `json:"query"`
	Result TurnResult `json:"result"`
}

// Session is the per-conversation state: ordered turn history plus the
// slot-filling scratchpad. Owned exclusively by the session manager.
type Session struct {
	ID           string                `json:"id"`
	Turns        []Turn                `json:"turns"`
	PendingFlow  string                `json:"pending_flow,omitempty"`
	PendingLeave *leave.PartialRequest `json:"pending_leave,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	LastActiveAt time.Time             `json:"last_active_at"`
}
