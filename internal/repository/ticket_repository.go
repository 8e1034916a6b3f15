package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/query-desk/internal/domain"
	"github.com/spec-kit/query-desk/internal/persistence"
)

// TicketsKey is the slot holding the serialized ticket collection.
const TicketsKey = "customerQueriesData"

var (
	// ErrSlotEmpty means nothing has been persisted yet.
	ErrSlotEmpty = errors.New("ticket slot empty")
	// ErrSlotUnreadable means the slot does not hold a JSON ticket array.
	ErrSlotUnreadable = errors.New("ticket slot unreadable")
	// ErrSlotIncompatible means the slot decoded but does not match the current schema.
	ErrSlotIncompatible = errors.New("ticket slot incompatible with schema")
)

// TicketRepository mirrors the ticket collection into a KV slot.
type TicketRepository interface {
	Load(ctx context.Context) ([]domain.Ticket, error)
	Save(ctx context.Context, tickets []domain.Ticket) error
	Clear(ctx context.Context) error
}

type ticketRepository struct {
	kv       persistence.KV
	validate *validator.Validate
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(kv persistence.KV) TicketRepository {
	return &ticketRepository{kv: kv, validate: validator.New()}
}

func (r *ticketRepository) Load(ctx context.Context) ([]domain.Ticket, error) {
	raw, err := r.kv.Get(ctx, TicketsKey)
	if errors.Is(err, persistence.ErrKeyNotFound) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", TicketsKey, err)
	}

	var tickets []domain.Ticket
	if err := json.Unmarshal([]byte(raw), &tickets); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSlotUnreadable, err)
	}

	seen := make(map[string]struct{}, len(tickets))
	for i := range tickets {
		if err := r.validate.Struct(tickets[i]); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrSlotIncompatible, i, err)
		}
		if _, dup := seen[tickets[i].ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrSlotIncompatible, tickets[i].ID)
		}
		seen[tickets[i].ID] = struct{}{}
	}
	return tickets, nil
}

func (r *ticketRepository) Save(ctx context.Context, tickets []domain.Ticket) error {
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	payload, err := json.Marshal(tickets)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, TicketsKey, string(payload))
}

func (r *ticketRepository) Clear(ctx context.Context) error {
	return r.kv.Delete(ctx, TicketsKey)
}
