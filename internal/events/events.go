// Package events publishes turn lifecycle events to NATS JetStream.
package events

import "time"

// Stream names.
const (
	StreamEvents = "TRAVELBOT_EVENTS"
)

// Subject constants.
const (
	SubjectPrefix        = "travel.events"
	SubjectTurnCompleted = "travel.events.turn"
)

// TurnCompleted is published once per webhook turn, whether it succeeded or not.
type TurnCompleted struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Channel        string    `json:"channel"`
	Modality       string    `json:"modality"`
	Outcome        string    `json:"outcome"` // "ok" or the failure kind
	SearchRequired bool      `json:"search_required"`
	Searched       bool      `json:"searched"`
	SearchResults  int       `json:"search_results"`
	Degraded       []string  `json:"degraded,omitempty"`
	LatencyMS      int64     `json:"latency_ms"`
	CompletedAt    time.Time `json:"completed_at"`
}
