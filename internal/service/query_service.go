package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/query-desk/internal/domain"
	"github.com/spec-kit/query-desk/internal/events"
	"github.com/spec-kit/query-desk/internal/observability"
	"github.com/spec-kit/query-desk/internal/repository"
	apperrors "github.com/spec-kit/query-desk/pkg/util/errorutil"
)

// ErrNotInitialized is returned when an operation runs before Initialize.
var ErrNotInitialized = errors.New("query service not initialized")

// QueryService owns the authoritative ticket collection and simulates a
// slow, occasionally failing backend in front of it.
type QueryService struct {
	mu          sync.Mutex
	tickets     []domain.Ticket
	initialized bool

	repo       repository.TicketRepository
	policy     Policy
	now        func() time.Time
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// QueryDependencies bundles collaborators for the query service.
type QueryDependencies struct {
	Repo       repository.TicketRepository
	Policy     Policy
	Clock      func() time.Time
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewQueryService constructs the service. Call Initialize before use.
func NewQueryService(deps QueryDependencies) *QueryService {
	s := &QueryService{
		repo:       deps.Repo,
		policy:     deps.Policy,
		now:        deps.Clock,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
	if s.policy == nil {
		s.policy = FixedPolicy{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Initialize loads the persisted collection, replacing it with the example
// seed when it is missing, unreadable, incompatible, or empty. A returned
// PersistenceWarning means the seed is live in memory but was not mirrored.
func (s *QueryService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	tickets, err := s.repo.Load(ctx)
	reason := ""
	switch {
	case errors.Is(err, repository.ErrSlotEmpty):
		reason = "empty"
	case errors.Is(err, repository.ErrSlotUnreadable), errors.Is(err, repository.ErrSlotIncompatible):
		reason = "incompatible"
		s.logger.Warn("discarding persisted queries", zap.Error(err))
		if clearErr := s.repo.Clear(ctx); clearErr != nil {
			s.logger.Warn("failed to clear persisted queries", zap.Error(clearErr))
		}
	case err != nil:
		reason = "unavailable"
		s.logger.Warn("failed to load persisted queries", zap.Error(err))
	case len(tickets) == 0:
		reason = "empty"
	}

	s.initialized = true
	if reason == "" {
		s.tickets = tickets
		s.mu.Unlock()
		s.logger.Info("queries loaded from storage", zap.Int("count", len(tickets)))
		return nil
	}

	s.tickets = s.seedTickets()
	count := len(s.tickets)
	persistErr := s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.Info("seeded example queries", zap.Int("count", count), zap.String("reason", reason))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventTicketsSeeded,
		Payload: events.TicketsSeededPayload{Count: count, Reason: reason},
	})
	return s.persisted(ctx, "seed", persistErr)
}

// List returns a snapshot of the collection after a simulated network delay.
// It may fail with a TransientFailure, and it may first prepend a newly
// arrived pending ticket. The snapshot shares no storage with the service.
func (s *QueryService) List(ctx context.Context) ([]domain.Ticket, error) {
	if err := s.wait(ctx, OpList); err != nil {
		return nil, err
	}
	if s.policy.Roll(ChanceListFailure) {
		s.record(OpList, "transient_failure")
		s.logger.Debug("simulated list failure")
		return nil, apperrors.NewTransientFailure("failed to connect to customer data service")
	}

	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return nil, ErrNotInitialized
	}
	var arrived *domain.Ticket
	var persistErr error
	if s.policy.Roll(ChanceArrival) {
		ticket := s.newArrival()
		s.tickets = append([]domain.Ticket{ticket}, s.tickets...)
		arrived = &ticket
		persistErr = s.persistLocked(ctx)
	}
	snapshot := domain.CloneTickets(s.tickets)
	s.mu.Unlock()
	persistErr = s.persisted(ctx, string(OpList), persistErr)

	if arrived != nil {
		s.logger.Info("new query arrived", zap.String("ticket_id", arrived.ID))
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketArrived,
			TicketID: arrived.ID,
			Payload: events.TicketArrivedPayload{
				Name:  arrived.Name,
				Email: arrived.Email,
				Topic: arrived.Topic,
			},
		})
	}
	s.record(OpList, "ok")
	return snapshot, persistErr
}

// SetStatus moves a ticket to status. Unknown ids yield NotFound, backward
// transitions a validation error, and the simulated write may fail with a
// TransientFailure that leaves the collection untouched.
func (s *QueryService) SetStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	if !status.Valid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}
	if err := s.wait(ctx, OpSetStatus); err != nil {
		return err
	}

	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	idx := domain.IndexOf(s.tickets, id)
	if idx < 0 {
		s.mu.Unlock()
		s.record(OpSetStatus, "not_found")
		return apperrors.NewNotFound("query", map[string]any{"id": id})
	}
	current := s.tickets[idx].Status
	if !domain.CanTransition(current, status) {
		s.mu.Unlock()
		return apperrors.NewValidationError("invalid status transition", map[string]any{
			"id":   id,
			"from": current,
			"to":   status,
		})
	}
	if s.policy.Roll(ChanceStatusFailure) {
		s.mu.Unlock()
		s.record(OpSetStatus, "transient_failure")
		s.logger.Debug("simulated status write failure", zap.String("ticket_id", id))
		return apperrors.NewTransientFailure("failed to update status on backend")
	}
	if current == status {
		s.mu.Unlock()
		s.record(OpSetStatus, "ok")
		return nil
	}
	s.tickets[idx].Status = status
	persistErr := s.persistLocked(ctx)
	s.mu.Unlock()
	persistErr = s.persisted(ctx, string(OpSetStatus), persistErr)

	s.logger.Info("query status updated", zap.String("ticket_id", id), zap.String("status", string(status)))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: id,
		Payload:  events.TicketStatusChangedPayload{OldStatus: current, NewStatus: status},
	})
	s.record(OpSetStatus, "ok")
	return persistErr
}

// Remove deletes a ticket. Once the ticket is found the deletion always succeeds.
func (s *QueryService) Remove(ctx context.Context, id string) error {
	if err := s.wait(ctx, OpRemove); err != nil {
		return err
	}

	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	idx := domain.IndexOf(s.tickets, id)
	if idx < 0 {
		s.mu.Unlock()
		s.record(OpRemove, "not_found")
		return apperrors.NewNotFound("query", map[string]any{"id": id})
	}
	s.tickets = slices.Delete(s.tickets, idx, idx+1)
	persistErr := s.persistLocked(ctx)
	s.mu.Unlock()
	persistErr = s.persisted(ctx, string(OpRemove), persistErr)

	s.logger.Info("query deleted", zap.String("ticket_id", id))
	s.publishEvent(ctx, events.Event{Type: events.EventTicketDeleted, TicketID: id})
	s.record(OpRemove, "ok")
	return persistErr
}

// Clear empties the collection and its mirror immediately.
func (s *QueryService) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.tickets = []domain.Ticket{}
	s.initialized = true
	err := s.repo.Clear(context.WithoutCancel(ctx))
	s.mu.Unlock()

	s.logger.Info("all queries cleared")
	s.publishEvent(ctx, events.Event{Type: events.EventTicketsCleared})
	return s.persisted(ctx, "clear", err)
}

// Len reports the size of the authoritative collection.
func (s *QueryService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickets)
}

func (s *QueryService) wait(ctx context.Context, op Operation) error {
	d := s.policy.Delay(op)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// persistLocked mirrors the collection. The caller holds s.mu. Writes are
// detached from ctx so a cancelled caller cannot leave the mirror behind
// memory.
func (s *QueryService) persistLocked(ctx context.Context) error {
	return s.repo.Save(context.WithoutCancel(ctx), s.tickets)
}

// persisted turns a mirror write error into a PersistenceWarning. Call it
// without holding s.mu.
func (s *QueryService) persisted(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	s.logger.Warn("could not save queries to storage; changes might not persist",
		zap.String("operation", op), zap.Error(err))
	s.record(Operation(op), "persistence_warning")
	s.publishEvent(ctx, events.Event{
		Type:    events.EventPersistenceWarning,
		Payload: events.PersistenceWarningPayload{Operation: op, Error: err.Error()},
	})
	return apperrors.NewPersistenceWarning(err)
}

func (s *QueryService) record(op Operation, outcome string) {
	s.metrics.RecordOperation(string(op), outcome)
}

func (s *QueryService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(context.WithoutCancel(ctx), event)
}
