package domain

import "time"

// EventTypeMetric marks confidence-tracking audit events.
const EventTypeMetric = "METRIC"

// Event is an append-only audit record. Events are written on commit and
// resolve and never read back by any operation.
type Event struct {
	EventID   string                 `json:"eventId"`
	UserID    string                 `json:"userId"`
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt time.Time              `json:"createdAt"`
}
