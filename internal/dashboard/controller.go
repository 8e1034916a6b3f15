package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/query-desk/internal/domain"
	apperrors "github.com/spec-kit/query-desk/pkg/util/errorutil"
)

const (
	defaultPollInterval = 15 * time.Second
	defaultMaxNotices   = 50

	// LoadErrorMessage is shown when nothing has loaded and a refresh fails.
	LoadErrorMessage = "Failed to load customer data. Please try again later."
)

var (
	ErrUnmounted      = errors.New("dashboard unmounted")
	ErrAlreadyMounted = errors.New("dashboard already mounted")
	ErrStaleResponse  = errors.New("response superseded by a newer refresh")
)

// QuerySource is the data service the controller synchronizes with.
type QuerySource interface {
	List(ctx context.Context) ([]domain.Ticket, error)
	SetStatus(ctx context.Context, id string, status domain.TicketStatus) error
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// Options tunes a Controller. Zero values pick defaults.
type Options struct {
	PollInterval time.Duration
	MaxNotices   int
	Clock        func() time.Time
	Logger       *zap.Logger
}

// Controller keeps a working copy of the ticket collection in sync with a
// QuerySource and mediates user actions on it.
type Controller struct {
	source     QuerySource
	interval   time.Duration
	maxNotices int
	now        func() time.Time
	logger     *zap.Logger

	mu          sync.Mutex
	tickets     []domain.Ticket
	filter      domain.Filter
	loading     bool
	errMsg      string
	inFlight    map[string]Action
	selectedID  string
	notices     []Notice
	refreshedAt time.Time

	// issued counts List calls; applied is the newest one whose result
	// reached the working copy. Responses at or below applied are stale.
	issued  uint64
	applied uint64

	mounted   bool
	unmounted bool
	cancel    context.CancelFunc
	loopDone  chan struct{}
}

// NewController builds an unmounted controller.
func NewController(source QuerySource, opts Options) *Controller {
	c := &Controller{
		source:     source,
		interval:   opts.PollInterval,
		maxNotices: opts.MaxNotices,
		now:        opts.Clock,
		logger:     opts.Logger,
		tickets:    []domain.Ticket{},
		filter:     domain.FilterAll,
		loading:    true,
		inFlight:   make(map[string]Action),
	}
	if c.interval <= 0 {
		c.interval = defaultPollInterval
	}
	if c.maxNotices <= 0 {
		c.maxNotices = defaultMaxNotices
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Mount starts polling: one refresh right away, then one per interval until
// Unmount or until ctx ends. Refreshes run concurrently and may overlap.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unmounted {
		return ErrUnmounted
	}
	if c.mounted {
		return ErrAlreadyMounted
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c.mounted = true
	c.cancel = cancel
	c.loopDone = make(chan struct{})
	go c.poll(loopCtx, c.loopDone)
	c.logger.Info("dashboard mounted", zap.Duration("poll_interval", c.interval))
	return nil
}

// Unmount stops polling and cancels outstanding calls. Results that arrive
// afterwards are dropped. Unmount does not wait for those calls to return.
func (c *Controller) Unmount() {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	c.unmounted = true
	cancel, done := c.cancel, c.loopDone
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	c.logger.Info("dashboard unmounted")
}

func (c *Controller) poll(ctx context.Context, done chan struct{}) {
	defer close(done)
	go c.refreshQuietly(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go c.refreshQuietly(ctx)
		}
	}
}

func (c *Controller) refreshQuietly(ctx context.Context) {
	err := c.Refresh(ctx)
	switch {
	case err == nil, errors.Is(err, ErrUnmounted), errors.Is(err, context.Canceled):
	case errors.Is(err, ErrStaleResponse):
		c.logger.Debug("discarded stale refresh")
	default:
		c.logger.Debug("refresh failed", zap.Error(err))
	}
}

// Refresh fetches the collection once and applies the result unless a newer
// refresh or a confirmed mutation has already superseded it.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return ErrUnmounted
	}
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	tickets, err := c.source.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unmounted {
		return ErrUnmounted
	}
	if seq <= c.applied {
		return ErrStaleResponse
	}

	if err != nil && !apperrors.IsPersistenceWarning(err) {
		c.loading = false
		if len(c.tickets) == 0 {
			c.errMsg = LoadErrorMessage
		}
		return err
	}

	c.applied = seq
	c.tickets = tickets
	if c.tickets == nil {
		c.tickets = []domain.Ticket{}
	}
	c.errMsg = ""
	c.loading = false
	c.refreshedAt = c.now()
	if err != nil {
		c.addNoticeLocked(NoticeWarning, "", "Could not save data to storage. Your changes might not persist.")
	}
	return nil
}

// SetFilter changes which tickets Visible returns.
func (c *Controller) SetFilter(f domain.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
}

// Visible returns the working collection projected through the active filter.
func (c *Controller) Visible() []domain.Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.FilterTickets(c.tickets, c.filter)
}

// Tickets returns a copy of the whole working collection.
func (c *Controller) Tickets() []domain.Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CloneTickets(c.tickets)
}

// MarkReplied sets a pending ticket to replied once the source confirms.
func (c *Controller) MarkReplied(ctx context.Context, id string) error {
	c.mu.Lock()
	idx := domain.IndexOf(c.tickets, id)
	switch {
	case idx < 0:
		c.mu.Unlock()
		return apperrors.NewValidationStale(id)
	case c.tickets[idx].Status == domain.TicketStatusReplied:
		c.mu.Unlock()
		return apperrors.NewAlreadyReplied(id)
	}
	if err := c.beginLocked(id, ActionMarkReplied); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	err := c.source.SetStatus(ctx, id, domain.TicketStatusReplied)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, id)
	if c.unmounted {
		return ErrUnmounted
	}
	if err != nil && !apperrors.IsPersistenceWarning(err) {
		c.addNoticeLocked(NoticeError, id, fmt.Sprintf("Failed to mark query %s as replied: %v", id, err))
		return err
	}

	if i := domain.IndexOf(c.tickets, id); i >= 0 {
		c.tickets[i].Status = domain.TicketStatusReplied
	}
	c.fenceLocked()
	if c.selectedID == id {
		c.selectedID = ""
	}
	if err != nil {
		c.addNoticeLocked(NoticeWarning, id, fmt.Sprintf("Query %s marked as replied, but the change might not persist.", id))
	}
	return nil
}

// Delete removes a ticket once the user has confirmed and the source agrees.
func (c *Controller) Delete(ctx context.Context, id string, confirmed bool) error {
	c.mu.Lock()
	if domain.IndexOf(c.tickets, id) < 0 {
		c.mu.Unlock()
		return apperrors.NewValidationStale(id)
	}
	if _, busy := c.inFlight[id]; busy {
		c.mu.Unlock()
		return apperrors.NewActionInFlight(id)
	}
	if !confirmed {
		c.mu.Unlock()
		return apperrors.NewConfirmationRequired(id)
	}
	if err := c.beginLocked(id, ActionDelete); err != nil {
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	err := c.source.Remove(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, id)
	if c.unmounted {
		return ErrUnmounted
	}
	if err != nil && !apperrors.IsPersistenceWarning(err) {
		c.addNoticeLocked(NoticeError, id, fmt.Sprintf("Failed to delete query %s: %v", id, err))
		return err
	}

	c.tickets = slices.DeleteFunc(c.tickets, func(t domain.Ticket) bool { return t.ID == id })
	c.fenceLocked()
	if c.selectedID == id {
		c.selectedID = ""
	}
	if err != nil {
		c.addNoticeLocked(NoticeWarning, id, fmt.Sprintf("Query %s deleted, but the change might not persist.", id))
	}
	return nil
}

// ClearAll wipes every ticket after explicit confirmation.
func (c *Controller) ClearAll(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return apperrors.NewDomainError(apperrors.CodeConfirmationRequired,
			"clearing all customer data requires confirmation", http.StatusPreconditionRequired, nil)
	}
	err := c.source.Clear(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unmounted {
		return ErrUnmounted
	}
	if err != nil && !apperrors.IsPersistenceWarning(err) {
		c.addNoticeLocked(NoticeError, "", fmt.Sprintf("Failed to clear customer data: %v", err))
		return err
	}
	c.tickets = []domain.Ticket{}
	c.selectedID = ""
	c.fenceLocked()
	if err != nil {
		c.addNoticeLocked(NoticeWarning, "", "Customer data cleared, but storage could not be updated.")
	}
	return nil
}

// Open shows the detail view for id.
func (c *Controller) Open(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if domain.IndexOf(c.tickets, id) < 0 {
		return apperrors.NewValidationStale(id)
	}
	c.selectedID = id
	return nil
}

// Close hides the detail view.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedID = ""
}

// Selected looks the open ticket up in the current working collection.
func (c *Controller) Selected() (domain.Ticket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.selectedLocked()
	if t == nil {
		return domain.Ticket{}, false
	}
	return *t, true
}

// ContactLink builds a mailto link for replying to the ticket's requester.
func (c *Controller) ContactLink(id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := domain.IndexOf(c.tickets, id)
	if idx < 0 {
		return "", apperrors.NewValidationStale(id)
	}
	t := c.tickets[idx]
	// Mail clients expect %20 for spaces in mailto headers, not '+'.
	subject := strings.ReplaceAll(url.QueryEscape("Re: "+t.Topic), "+", "%20")
	link := url.URL{Scheme: "mailto", Opaque: t.Email, RawQuery: "subject=" + subject}
	return link.String(), nil
}

// Notices returns the retained notices, oldest first.
func (c *Controller) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.notices)
}

// DismissNotices drops every retained notice.
func (c *Controller) DismissNotices() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = nil
}

// InFlight reports the action running for id, if any.
func (c *Controller) InFlight(id string) (Action, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.inFlight[id]
	return a, ok
}

// State snapshots everything a view needs to render.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := State{
		Tickets:  domain.FilterTickets(c.tickets, c.filter),
		Filter:   c.filter,
		Counts:   domain.CountByStatus(c.tickets),
		Loading:  c.loading,
		Error:    c.errMsg,
		InFlight: make(map[string]Action, len(c.inFlight)),
		Selected: c.selectedLocked(),
		Notices:  slices.Clone(c.notices),
	}
	if st.Notices == nil {
		st.Notices = []Notice{}
	}
	for id, a := range c.inFlight {
		st.InFlight[id] = a
	}
	if !c.refreshedAt.IsZero() {
		at := c.refreshedAt
		st.LastRefreshedAt = &at
	}
	return st
}

func (c *Controller) selectedLocked() *domain.Ticket {
	if c.selectedID == "" {
		return nil
	}
	idx := domain.IndexOf(c.tickets, c.selectedID)
	if idx < 0 {
		return nil
	}
	t := c.tickets[idx]
	return &t
}

func (c *Controller) beginLocked(id string, action Action) error {
	if c.unmounted {
		return ErrUnmounted
	}
	if _, busy := c.inFlight[id]; busy {
		return apperrors.NewActionInFlight(id)
	}
	c.inFlight[id] = action
	return nil
}

// fenceLocked makes every List issued so far stale, since those snapshots
// may predate the mutation that was just applied locally.
func (c *Controller) fenceLocked() {
	c.applied = c.issued
}

func (c *Controller) addNoticeLocked(level NoticeLevel, ticketID, message string) {
	c.notices = append(c.notices, Notice{Level: level, TicketID: ticketID, Message: message, At: c.now()})
	if over := len(c.notices) - c.maxNotices; over > 0 {
		c.notices = slices.Delete(c.notices, 0, over)
	}
	if level == NoticeError {
		c.logger.Warn(message, zap.String("ticket_id", ticketID))
	}
}
