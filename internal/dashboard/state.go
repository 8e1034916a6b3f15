package dashboard

import (
	"time"

	"github.com/spec-kit/query-desk/internal/domain"
)

// Action names a mutating user action on one ticket.
type Action string

const (
	ActionMarkReplied Action = "mark_replied"
	ActionDelete      Action = "delete"
)

// NoticeLevel grades a user-visible notice.
type NoticeLevel string

const (
	NoticeError   NoticeLevel = "error"
	NoticeWarning NoticeLevel = "warning"
)

// Notice is a user-visible message about an action outcome.
type Notice struct {
	Level    NoticeLevel `json:"level"`
	TicketID string      `json:"ticket_id,omitempty"`
	Message  string      `json:"message"`
	At       time.Time   `json:"at"`
}

// State is a render-ready snapshot of the controller.
type State struct {
	Tickets         []domain.Ticket     `json:"tickets"`
	Filter          domain.Filter       `json:"filter"`
	Counts          domain.StatusCounts `json:"counts"`
	Loading         bool                `json:"loading"`
	Error           string              `json:"error,omitempty"`
	InFlight        map[string]Action   `json:"in_flight"`
	Selected        *domain.Ticket      `json:"selected"`
	Notices         []Notice            `json:"notices"`
	LastRefreshedAt *time.Time          `json:"last_refreshed_at,omitempty"`
}
