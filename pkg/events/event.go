package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CORPUS_INGESTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent gives concrete events their common shape.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewCorpusIngested announces a corpus generation swap to the admin-panel
// collaborator.
func NewCorpusIngested(documents, chunks int) Event {
	return BaseEvent{
		Type: "CORPUS_INGESTED",
		Data: map[string]interface{}{
			"documents": documents,
			"chunks":    chunks,
		},
		OccurredAt: time.Now(),
	}
}

// NewBookingConfirmed announces a confirmed interview slot.
func NewBookingConfirmed(sessionID string, start, end time.Time, participantIDs []string) Event {
	return BaseEvent{
		Type: "BOOKING_CONFIRMED",
		Data: map[string]interface{}{
			"session_id":      sessionID,
			"start":           start,
			"end":             end,
			"participant_ids": participantIDs,
		},
		OccurredAt: time.Now(),
	}
}
