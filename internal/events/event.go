// Package events describes the marketplace activity published after each
// successful write and consumed by the activity worker.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	JobCreated  Type = "job.created"
	JobReplaced Type = "job.replaced"
	JobDeleted  Type = "job.deleted"
	BidPlaced   Type = "bid.placed"
	BidUpdated  Type = "bid.updated"
)

const ContentType = "application/json"

var ErrInvalidEvent = errors.New("invalid event")

var knownTypes = map[Type]struct{}{
	JobCreated:  {},
	JobReplaced: {},
	JobDeleted:  {},
	BidPlaced:   {},
	BidUpdated:  {},
}

// Event is one marketplace activity record
type Event struct {
	EventID    string                 `json:"event_id"`
	Type       Type                   `json:"type"`
	ActorEmail string                 `json:"actor_email,omitempty"`
	JobID      string                 `json:"job_id,omitempty"`
	BidID      string                 `json:"bid_id,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// New stamps a fresh event id and timestamp
func New(t Type) Event {
	return Event{
		EventID:    uuid.New().String(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
	}
}

func (e Event) Validate() error {
	if _, err := uuid.Parse(e.EventID); err != nil {
		return fmt.Errorf("%w: event_id %q is not a UUID", ErrInvalidEvent, e.EventID)
	}
	if _, ok := knownTypes[e.Type]; !ok {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("%w: occurred_at is required", ErrInvalidEvent)
	}
	return nil
}

// Decode parses and validates a message body
func Decode(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}
