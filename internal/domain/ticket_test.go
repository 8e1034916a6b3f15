package domain

import "testing"

func TestCanTransition(t *testing.T) {
	if !CanTransition(TicketStatusPending, TicketStatusReplied) {
		t.Fatalf("pending -> replied must be allowed")
	}
	if CanTransition(TicketStatusReplied, TicketStatusPending) {
		t.Fatalf("replied -> pending must be rejected")
	}
	if !CanTransition(TicketStatusReplied, TicketStatusReplied) {
		t.Fatalf("same-status write must be allowed")
	}
}

func TestTicketStatusValid(t *testing.T) {
	if !TicketStatusPending.Valid() || !TicketStatusReplied.Valid() {
		t.Fatalf("known statuses must be valid")
	}
	if TicketStatus("closed").Valid() {
		t.Fatalf("unknown status must be invalid")
	}
}

func TestIndexOfAndClone(t *testing.T) {
	src := sampleTickets()
	if IndexOf(src, "c") != 2 {
		t.Fatalf("expected index 2")
	}
	if IndexOf(src, "zzz") != -1 {
		t.Fatalf("expected -1 for unknown id")
	}
	clone := CloneTickets(src)
	clone[1].ID = "changed"
	if src[1].ID != "b" {
		t.Fatalf("clone shares storage")
	}
}
