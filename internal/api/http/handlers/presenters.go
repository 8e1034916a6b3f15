package handlers

import (
	"github.com/spec-kit/query-desk/internal/api/dto"
	"github.com/spec-kit/query-desk/internal/dashboard"
	"github.com/spec-kit/query-desk/internal/domain"
	apperrors "github.com/spec-kit/query-desk/pkg/util/errorutil"
)

func querySummary(t domain.Ticket, busy map[string]dashboard.Action) dto.QuerySummary {
	return dto.QuerySummary{
		ID:        t.ID,
		QueryTime: t.QueryTime,
		Name:      t.Name,
		Email:     t.Email,
		Topic:     t.Topic,
		Status:    t.Status,
		Message:   t.Message,
		Busy:      busy[t.ID],
	}
}

func querySummaries(tickets []domain.Ticket, busy map[string]dashboard.Action) []dto.QuerySummary {
	items := make([]dto.QuerySummary, 0, len(tickets))
	for _, t := range tickets {
		items = append(items, querySummary(t, busy))
	}
	return items
}

func dashboardResponse(st dashboard.State) dto.DashboardResponse {
	resp := dto.DashboardResponse{
		Filter:          st.Filter,
		Items:           querySummaries(st.Tickets, st.InFlight),
		Counts:          st.Counts,
		Loading:         st.Loading,
		Error:           st.Error,
		Notices:         st.Notices,
		LastRefreshedAt: st.LastRefreshedAt,
	}
	if st.Selected != nil {
		selected := querySummary(*st.Selected, st.InFlight)
		resp.Selected = &selected
	}
	return resp
}

func parseFilter(raw string) (domain.Filter, error) {
	f, ok := domain.ParseFilter(raw)
	if !ok {
		return "", apperrors.NewValidationError("invalid filter", map[string]any{
			"filter":  raw,
			"allowed": []domain.Filter{domain.FilterAll, domain.FilterPending, domain.FilterReplied},
		})
	}
	return f, nil
}
