package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened in the domain, recorded after
// the fact. Events are immutable once created.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
}

// BaseDomainEvent carries the envelope every event shares; concrete
// events embed it and add their own payload fields.
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	AggID     uuid.UUID `json:"aggregate_id"`
	AggType   string    `json:"aggregate_type"`
}

func (e *BaseDomainEvent) EventID() uuid.UUID      { return e.ID }
func (e *BaseDomainEvent) EventType() string       { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time   { return e.Timestamp }
func (e *BaseDomainEvent) AggregateID() uuid.UUID  { return e.AggID }
func (e *BaseDomainEvent) AggregateType() string   { return e.AggType }

// NewBaseDomainEvent stamps a new envelope with a fresh ID and the
// current time.
func NewBaseDomainEvent(eventType, aggType string, aggID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		AggID:     aggID,
		AggType:   aggType,
	}
}
