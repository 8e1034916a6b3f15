package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/query-desk/internal/domain"
	"github.com/spec-kit/query-desk/internal/events"
	"github.com/spec-kit/query-desk/internal/observability"
	"github.com/spec-kit/query-desk/internal/persistence"
	"github.com/spec-kit/query-desk/internal/repository"
)

var errDiskFull = errors.New("disk full")

// flakyKV wraps a MemoryKV and fails writes while failWrites is set.
type flakyKV struct {
	*persistence.MemoryKV
	mu         sync.Mutex
	failWrites bool
}

func (f *flakyKV) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = v
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	fail := f.failWrites
	f.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return f.MemoryKV.Set(ctx, key, value)
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (r *recordingDispatcher) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc        *QueryService
	kv         *flakyKV
	repo       repository.TicketRepository
	dispatcher *recordingDispatcher
	metrics    *observability.Metrics
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
}

func newFixture(t *testing.T, policy Policy) *fixture {
	t.Helper()
	kv := &flakyKV{MemoryKV: persistence.NewMemoryKV()}
	repo := repository.NewTicketRepository(kv)
	dispatcher := &recordingDispatcher{}
	metrics := observability.NewMetrics()
	svc := NewQueryService(QueryDependencies{
		Repo:       repo,
		Policy:     policy,
		Clock:      fixedClock,
		Dispatcher: dispatcher,
		Metrics:    metrics,
	})
	return &fixture{svc: svc, kv: kv, repo: repo, dispatcher: dispatcher, metrics: metrics}
}

func (f *fixture) persisted(t *testing.T) []domain.Ticket {
	t.Helper()
	tickets, err := f.repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load persisted: %v", err)
	}
	return tickets
}

func mustInit(t *testing.T, f *fixture) {
	t.Helper()
	if err := f.svc.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
}
