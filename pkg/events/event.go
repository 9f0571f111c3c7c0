package events

import "time"

// Event types forwarded to the operations stream. Fallbacks and out-of-corpus
// citations are the two signals that track grounding quality over time.
const (
	TypeSearchFallback            = "SEARCH_FALLBACK"
	TypeSearchReferencesUnmatched = "SEARCH_REFERENCES_UNMATCHED"
)

// Event is what the NATS publisher ships: a type code that becomes the
// subject suffix, and a flat payload marshalled as the message body.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used for search telemetry; richer
// event types can embed it when they need extra behavior.
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
	if e.OccurredAt.IsZero() {
		return time.Now()
	}
	return e.OccurredAt
}
