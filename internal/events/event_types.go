package events

import (
	"time"

	"github.com/spec-kit/query-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketArrived       EventType = "ticket_arrived"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventTicketsCleared      EventType = "tickets_cleared"
	EventTicketsSeeded       EventType = "tickets_seeded"
	EventPersistenceWarning  EventType = "persistence_warning"
)

// Event represents a domain event emitted by the query service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// TicketArrivedPayload payload.
type TicketArrivedPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Topic string `json:"topic"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketsSeededPayload payload.
type TicketsSeededPayload struct {
	Count  int    `json:"count"`
	Reason string `json:"reason"`
}

// PersistenceWarningPayload payload.
type PersistenceWarningPayload struct {
	Operation string `json:"operation"`
	Error     string `json:"error"`
}
