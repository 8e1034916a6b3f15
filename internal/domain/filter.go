package domain

// Filter selects which tickets the dashboard shows.
type Filter string

const (
	FilterAll     Filter = "all"
	FilterPending Filter = "pending"
	FilterReplied Filter = "replied"
)

// ParseFilter maps user input to a Filter. An empty string means all.
func ParseFilter(raw string) (Filter, bool) {
	switch Filter(raw) {
	case "", FilterAll:
		return FilterAll, true
	case FilterPending:
		return FilterPending, true
	case FilterReplied:
		return FilterReplied, true
	default:
		return "", false
	}
}

// FilterTickets projects tickets through f without touching the source slice.
func FilterTickets(tickets []Ticket, f Filter) []Ticket {
	if f == FilterAll || f == "" {
		return CloneTickets(tickets)
	}
	out := make([]Ticket, 0, len(tickets))
	for _, t := range tickets {
		if string(t.Status) == string(f) {
			out = append(out, t)
		}
	}
	return out
}

// StatusCounts tallies tickets per status.
type StatusCounts struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Replied int `json:"replied"`
}

// CountByStatus computes StatusCounts over tickets.
func CountByStatus(tickets []Ticket) StatusCounts {
	counts := StatusCounts{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case TicketStatusPending:
			counts.Pending++
		case TicketStatusReplied:
			counts.Replied++
		}
	}
	return counts
}
