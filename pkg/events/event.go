package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all engine events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PLAN_SELECTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation most publishers use.
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

// NewPlanSelected describes one routing decision: which strategy a query was
// mapped to and how much budget it was given. Consumed by downstream
// analytics, never by the engine itself.
func NewPlanSelected(query string, complexity string, strategyType string, maxTokens int, documentCount int) BaseEvent {
	return BaseEvent{
		Type: "PLAN_SELECTED",
		Data: map[string]interface{}{
			"event_id":       uuid.New().String(),
			"query_length":   len(query),
			"complexity":     complexity,
			"strategy_type":  strategyType,
			"max_tokens":     maxTokens,
			"document_count": documentCount,
		},
		OccurredAt: time.Now(),
	}
}
