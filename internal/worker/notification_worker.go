package worker

import (
	"context"

	"github.com/spec-kit/query-desk/internal/events"
	"github.com/spec-kit/query-desk/internal/observability"
	"github.com/spec-kit/query-desk/internal/service"
)

var countedEvents = []events.EventType{
	events.EventTicketArrived,
	events.EventTicketStatusChanged,
	events.EventTicketDeleted,
	events.EventTicketsCleared,
	events.EventTicketsSeeded,
	events.EventPersistenceWarning,
}

// StartNotificationWorker registers notification handlers and per-type event
// counters on the dispatcher.
func StartNotificationWorker(dispatcher events.Dispatcher, notificationService *service.NotificationService, metrics *observability.Metrics) {
	if dispatcher == nil {
		return
	}
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	for _, eventType := range countedEvents {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			metrics.RecordOperation("event", string(event.Type))
			return nil
		})
	}
}
