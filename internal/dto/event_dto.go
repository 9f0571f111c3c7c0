// FILE: internal/dto/event_dto.go
package dto

import "time"

// SearchEventMessage is the telemetry payload published after every search
// dispatch. Consumers use it for diagnostics; it never feeds back into the
// request path.
type SearchEventMessage struct {
	UserId              string    `json:"user_id"`
	Query               string    `json:"query"`
	Mode                string    `json:"mode"`
	SessionId           string    `json:"session_id,omitempty"`
	Fallback            bool      `json:"fallback"`
	FallbackReason      string    `json:"fallback_reason,omitempty"`
	UnmatchedReferences []string  `json:"unmatched_references,omitempty"`
	InvalidReferences   int       `json:"invalid_references,omitempty"`
	AmbiguousReferences int       `json:"ambiguous_references,omitempty"`
	OccurredAt          time.Time `json:"occurred_at"`
}
