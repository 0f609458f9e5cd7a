package employee

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/attendance-management/internal/core/events"
)

// EventHandler drops the cached directory when leave flips an employee's status.
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

func (h *EventHandler) HandleLeaveChange(ctx context.Context, event events.Event) error {
	leaveEvent, ok := event.(*events.LeaveEvent)
	if !ok {
		h.logger.Error("invalid event type for leave change handler", "event_type", event.EventType())
		return nil
	}
	if !leaveEvent.StatusChanged {
		return nil
	}

	h.logger.Debug("leave changed employee status, invalidating directory",
		"employee_id", leaveEvent.EmployeeID,
		"leave_request_id", leaveEvent.LeaveRequestID,
		"event_id", leaveEvent.EventID())
	return h.service.Invalidate(ctx)
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeLeaveApproved, h.HandleLeaveChange)
	eventBus.Subscribe(events.EventTypeLeaveDeleted, h.HandleLeaveChange)
}
