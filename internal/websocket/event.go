package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the kind of change the event describes
type EventType string

const (
	EventTypeCreated     EventType = "created"
	EventTypeUpdated     EventType = "updated"
	EventTypeDeleted     EventType = "deleted"
	EventTypeFinalized   EventType = "finalized"
	EventTypeClosed      EventType = "closed"
	EventTypeReopened    EventType = "reopened"
	EventTypeDeactivated EventType = "deactivated"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeBudget      EntityType = "budget"
	EntityTypeBudgetLine  EntityType = "budget_line"
	EntityTypePeriod      EntityType = "period"
	EntityTypeChangeOrder EntityType = "change_order"
	EntityTypeECOLine     EntityType = "eco_line"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "budget.finalized"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "budget"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// BudgetCreated creates a budget.created event
func BudgetCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeBudget, payload)
}

// BudgetUpdated creates a budget.updated event
func BudgetUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
}

// BudgetDeleted creates a budget.deleted event
func BudgetDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeBudget, payload)
}

// BudgetFinalized creates a budget.finalized event
func BudgetFinalized(payload interface{}) Event {
	return NewEvent(EventTypeFinalized, EntityTypeBudget, payload)
}

// BudgetLineChanged creates a budget_line event for the given change kind
func BudgetLineChanged(eventType EventType, payload interface{}) Event {
	return NewEvent(eventType, EntityTypeBudgetLine, payload)
}

// PeriodClosed creates a period.closed event
func PeriodClosed(payload interface{}) Event {
	return NewEvent(EventTypeClosed, EntityTypePeriod, payload)
}

// PeriodReopened creates a period.reopened event
func PeriodReopened(payload interface{}) Event {
	return NewEvent(EventTypeReopened, EntityTypePeriod, payload)
}

// ChangeOrderCreated creates a change_order.created event
func ChangeOrderCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeChangeOrder, payload)
}

// ECOLineRecorded creates an eco_line.created event
func ECOLineRecorded(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeECOLine, payload)
}

// ECOLineDeactivated creates an eco_line.deactivated event
func ECOLineDeactivated(payload interface{}) Event {
	return NewEvent(EventTypeDeactivated, EntityTypeECOLine, payload)
}
