package dto

import (
	"time"

	"github.com/spec-kit/query-desk/internal/dashboard"
	"github.com/spec-kit/query-desk/internal/domain"
)

// QuerySummary is a single customer query as shown in the table.
type QuerySummary struct {
	ID        string              `json:"id"`
	QueryTime string              `json:"query_time"`
	Name      string              `json:"name"`
	Email     string              `json:"email"`
	Topic     string              `json:"topic"`
	Status    domain.TicketStatus `json:"status"`
	Message   string              `json:"message"`
	Busy      dashboard.Action    `json:"busy,omitempty"`
}

// QueryListResponse wraps a filtered list with its totals.
type QueryListResponse struct {
	Filter domain.Filter       `json:"filter"`
	Items  []QuerySummary      `json:"items"`
	Counts domain.StatusCounts `json:"counts"`
}

// ContactResponse carries the mailto link for a query.
type ContactResponse struct {
	ID   string `json:"id"`
	Link string `json:"link"`
}

// DashboardResponse is the render-ready dashboard view.
type DashboardResponse struct {
	Filter          domain.Filter       `json:"filter"`
	Items           []QuerySummary      `json:"items"`
	Counts          domain.StatusCounts `json:"counts"`
	Loading         bool                `json:"loading"`
	Error           string              `json:"error,omitempty"`
	Selected        *QuerySummary       `json:"selected"`
	Notices         []dashboard.Notice  `json:"notices"`
	LastRefreshedAt *time.Time          `json:"last_refreshed_at,omitempty"`
}

// ClearRequest confirms the administrative wipe. A body without confirm is malformed.
type ClearRequest struct {
	Confirm *bool `json:"confirm" validate:"required"`
}
