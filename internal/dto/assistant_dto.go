package dto

import "time"

type TurnRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Text      string `json:"text" validate:"required"`
	// RequesterId names the speaking employee in the availability
	// directory. Optional; identity is owned by the hosting environment.
	RequesterId string `json:"requester_id,omitempty"`
}

type IntentDTO struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

type AnswerDTO struct {
	Text          string   `json:"text"`
	CitedChunkIds []string `json:"cited_chunk_ids,omitempty"`
	Confidence    float64  `json:"confidence"`
	Refused       bool     `json:"refused"`
}

type SlotDTO struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	ParticipantIds []string  `json:"participant_ids"`
	Rank           int       `json:"rank"`
}

type SessionSummaryDTO struct {
	Id           string    `json:"id"`
	Turns        int       `json:"turns"`
	PendingFlow  string    `json:"pending_flow,omitempty"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// TurnResponse carries exactly one of Answer, Slots or Message, selected by
// Kind.
type TurnResponse struct {
	SessionId string            `json:"session_id"`
	Intent    IntentDTO         `json:"intent"`
	Kind      string            `json:"kind"`
	Answer    *AnswerDTO        `json:"answer,omitempty"`
	Slots     []SlotDTO         `json:"slots,omitempty"`
	Message   string            `json:"message,omitempty"`
	Session   SessionSummaryDTO `json:"session"`
}
