package department

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/attendance-management/internal/core/events"
)

// EventHandler keeps department employee counts current.
type EventHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewEventHandler(service *Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

func (h *EventHandler) HandleEmployeeChanged(ctx context.Context, event events.Event) error {
	if _, ok := event.(*events.EmployeeChangedEvent); !ok {
		h.logger.Error("invalid event type for employee changed handler", "event_type", event.EventType())
		return nil
	}
	return h.service.RecomputeEmployeeCounts(ctx)
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeEmployeeChanged, h.HandleEmployeeChanged)
}
