package domain

import "testing"

func sampleTickets() []Ticket {
	return []Ticket{
		{ID: "a", Status: TicketStatusPending},
		{ID: "b", Status: TicketStatusReplied},
		{ID: "c", Status: TicketStatusPending},
	}
}

func TestFilterTicketsAllReturnsEqualCopy(t *testing.T) {
	src := sampleTickets()
	got := FilterTickets(src, FilterAll)
	if len(got) != len(src) {
		t.Fatalf("expected %d tickets, got %d", len(src), len(got))
	}
	got[0].Status = TicketStatusReplied
	if src[0].Status != TicketStatusPending {
		t.Fatalf("filtering must not share storage with the source")
	}
}

func TestFilterTicketsByStatus(t *testing.T) {
	src := sampleTickets()
	pending := FilterTickets(src, FilterPending)
	if len(pending) != 2 || pending[0].ID != "a" || pending[1].ID != "c" {
		t.Fatalf("unexpected pending projection: %+v", pending)
	}
	replied := FilterTickets(src, FilterReplied)
	if len(replied) != 1 || replied[0].ID != "b" {
		t.Fatalf("unexpected replied projection: %+v", replied)
	}
	if len(src) != 3 {
		t.Fatalf("source mutated")
	}
}

func TestFilterTicketsEmptySource(t *testing.T) {
	if got := FilterTickets(nil, FilterPending); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	if got := FilterTickets(nil, FilterAll); got == nil {
		t.Fatalf("expected non-nil empty slice")
	}
}

func TestParseFilter(t *testing.T) {
	cases := map[string]Filter{"": FilterAll, "all": FilterAll, "pending": FilterPending, "replied": FilterReplied}
	for raw, want := range cases {
		got, ok := ParseFilter(raw)
		if !ok || got != want {
			t.Fatalf("ParseFilter(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}
	if _, ok := ParseFilter("archived"); ok {
		t.Fatalf("expected unknown filter to be rejected")
	}
}

func TestCountByStatus(t *testing.T) {
	counts := CountByStatus(sampleTickets())
	if counts.Total != 3 || counts.Pending != 2 || counts.Replied != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}
