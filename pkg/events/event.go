package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "STATE_CHANGED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
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

const TypeStateChanged = "STATE_CHANGED"

// StateChangedEvent is published whenever a visitor's analysis store moves a
// resource between idle, loading, success and error.
type StateChangedEvent struct {
	VisitorID  string    `json:"visitor_id"`
	SessionID  string    `json:"session_id"`
	Resource   string    `json:"resource"`
	State      string    `json:"state"`
	Generation uint64    `json:"generation"`
	OccurredAt time.Time `json:"occurred_at"`
}

var _ Event = StateChangedEvent{}

func (e StateChangedEvent) EventType() string {
	return TypeStateChanged
}

func (e StateChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"visitor_id": e.VisitorID,
		"session_id": e.SessionID,
		"resource":   e.Resource,
		"state":      e.State,
		"generation": e.Generation,
	}
}

func (e StateChangedEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func (e StateChangedEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func UnmarshalStateChanged(b []byte) (StateChangedEvent, error) {
	var e StateChangedEvent
	if err := json.Unmarshal(b, &e); err != nil {
		return e, fmt.Errorf("unmarshal state changed event: %w", err)
	}
	if e.VisitorID == "" {
		return e, fmt.Errorf("state changed event without visitor_id")
	}
	return e, nil
}
