package domain

import "fmt"

// TicketStatus enumerates lifecycle states for customer queries.
type TicketStatus string

const (
	TicketStatusPending TicketStatus = "pending"
	TicketStatusReplied TicketStatus = "replied"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	return s == TicketStatusPending || s == TicketStatusReplied
}

// Ticket is a single customer query. Field names on the wire match the
// persisted layout of the customerQueriesData slot.
type Ticket struct {
	ID        string       `json:"id" validate:"required"`
	QueryTime string       `json:"queryTime" validate:"required"`
	Name      string       `json:"name" validate:"required"`
	Email     string       `json:"email" validate:"required"`
	Topic     string       `json:"topic" validate:"required"`
	Status    TicketStatus `json:"status" validate:"required,oneof=pending replied"`
	Message   string       `json:"message" validate:"required"`
}

// String renders a short identifier for notices and logs.
func (t Ticket) String() string {
	return fmt.Sprintf("%s (%s)", t.ID, t.Name)
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusPending: {TicketStatusReplied},
	TicketStatusReplied: {},
}

// CanTransition reports whether a ticket may move from current to next.
// Writing the current status again is allowed and has no effect.
func CanTransition(current, next TicketStatus) bool {
	if current == next {
		return true
	}
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CloneTickets returns a copy that shares no storage with src.
func CloneTickets(src []Ticket) []Ticket {
	if src == nil {
		return []Ticket{}
	}
	out := make([]Ticket, len(src))
	copy(out, src)
	return out
}

// IndexOf returns the position of the ticket with id, or -1.
func IndexOf(tickets []Ticket, id string) int {
	for i := range tickets {
		if tickets[i].ID == id {
			return i
		}
	}
	return -1
}
