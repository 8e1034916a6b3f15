package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/query-desk/internal/domain"
)

type listResult struct {
	tickets []domain.Ticket
	err     error
}

// pendingList is one List call parked until the test releases it.
type pendingList struct {
	release chan listResult
}

type writeCall struct {
	id     string
	status domain.TicketStatus
	result chan error
}

// fakeSource parks every call until the test answers it, so completion
// order is fully controlled by the test.
type fakeSource struct {
	lists  chan *pendingList
	writes chan *writeCall

	mu         sync.Mutex
	writeCount int
	clearErr   error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		lists:  make(chan *pendingList, 16),
		writes: make(chan *writeCall, 16),
	}
}

func (f *fakeSource) List(ctx context.Context) ([]domain.Ticket, error) {
	call := &pendingList{release: make(chan listResult, 1)}
	select {
	case f.lists <- call:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-call.release:
		return domain.CloneTickets(r.tickets), r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeSource) SetStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	return f.write(ctx, id, status)
}

func (f *fakeSource) Remove(ctx context.Context, id string) error {
	return f.write(ctx, id, "")
}

func (f *fakeSource) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clearErr
}

func (f *fakeSource) write(ctx context.Context, id string, status domain.TicketStatus) error {
	f.mu.Lock()
	f.writeCount++
	f.mu.Unlock()
	call := &writeCall{id: id, status: status, result: make(chan error, 1)}
	select {
	case f.writes <- call:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-call.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSource) writeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeCount
}

func (f *fakeSource) nextList(t *testing.T) *pendingList {
	t.Helper()
	select {
	case call := <-f.lists:
		return call
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a List call")
		return nil
	}
}

func (f *fakeSource) nextWrite(t *testing.T) *writeCall {
	t.Helper()
	select {
	case call := <-f.writes:
		return call
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a write call")
		return nil
	}
}

func ticket(id string, status domain.TicketStatus) domain.Ticket {
	return domain.Ticket{
		ID:        id,
		QueryTime: "10:00:00",
		Name:      "Customer " + id,
		Email:     id + "@example.com",
		Topic:     "Order help",
		Status:    status,
		Message:   "hello",
	}
}

// startRefresh runs Refresh in the background and returns the parked List
// call together with a channel carrying Refresh's result.
func startRefresh(t *testing.T, c *Controller, src *fakeSource) (*pendingList, <-chan error) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- c.Refresh(context.Background()) }()
	return src.nextList(t), done
}

func wait(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for result")
		return nil
	}
}

// loaded returns a controller whose working copy holds tickets.
func loaded(t *testing.T, tickets ...domain.Ticket) (*Controller, *fakeSource) {
	t.Helper()
	src := newFakeSource()
	c := NewController(src, Options{})
	call, done := startRefresh(t, c, src)
	call.release <- listResult{tickets: tickets}
	if err := wait(t, done); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	return c, src
}
