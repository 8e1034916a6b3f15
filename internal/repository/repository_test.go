package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/query-desk/internal/domain"
	"github.com/spec-kit/query-desk/internal/persistence"
)

const validSlot = `[{"id":"q1","queryTime":"10:00:00","name":"Ann","email":"ann@example.com","topic":"T","status":"pending","message":"M"}]`

func TestTicketRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	repo := NewTicketRepository(kv)

	if _, err := repo.Load(ctx); !errors.Is(err, ErrSlotEmpty) {
		t.Fatalf("expected ErrSlotEmpty, got %v", err)
	}

	want := []domain.Ticket{{
		ID: "q1", QueryTime: "10:00:00", Name: "Ann", Email: "ann@example.com",
		Topic: "T", Status: domain.TicketStatusReplied, Message: "M",
	}}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("unexpected load: %+v", got)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := kv.Get(ctx, TicketsKey); !errors.Is(err, persistence.ErrKeyNotFound) {
		t.Fatalf("expected slot removed, got %v", err)
	}
}

func TestTicketRepositoryUsesPersistedFieldNames(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	if err := kv.Set(ctx, TicketsKey, validSlot); err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	got, err := NewTicketRepository(kv).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got[0].QueryTime != "10:00:00" || got[0].Status != domain.TicketStatusPending {
		t.Fatalf("unexpected decode: %+v", got[0])
	}
}

func TestTicketRepositoryRejectsBadSlots(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", "{{{", ErrSlotUnreadable},
		{"object instead of array", `{"id":"q1"}`, ErrSlotUnreadable},
		{"missing field", `[{"id":"q1","queryTime":"10:00:00","name":"Ann","email":"a@b","topic":"T","status":"pending"}]`, ErrSlotIncompatible},
		{"bad status", `[{"id":"q1","queryTime":"10:00:00","name":"Ann","email":"a@b","topic":"T","status":"closed","message":"M"}]`, ErrSlotIncompatible},
		{"duplicate ids", "[" + validSlot[1:len(validSlot)-1] + "," + validSlot[1:len(validSlot)-1] + "]", ErrSlotIncompatible},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			kv := persistence.NewMemoryKV()
			if err := kv.Set(ctx, TicketsKey, tc.raw); err != nil {
				t.Fatalf("seed slot: %v", err)
			}
			if _, err := NewTicketRepository(kv).Load(ctx); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	repo := NewSessionRepository(kv)

	active, err := repo.IsActive(ctx)
	if err != nil || active {
		t.Fatalf("expected inactive session, got %v, %v", active, err)
	}
	if err := repo.Activate(ctx); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if val, _ := kv.Get(ctx, SessionKey); val != "true" {
		t.Fatalf("expected %s=true, got %q", SessionKey, val)
	}
	if active, _ := repo.IsActive(ctx); !active {
		t.Fatalf("expected active session")
	}
	if err := repo.Deactivate(ctx); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := kv.Get(ctx, SessionKey); !errors.Is(err, persistence.ErrKeyNotFound) {
		t.Fatalf("expected key removed on logout")
	}
}
