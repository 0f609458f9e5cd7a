package checkin

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/attendance-management/internal/attendance"
	"github.com/frahmantamala/attendance-management/internal/core/events"
)

const lateMessage = "You checked in after the grace period today."

// EventHandler raises the late-arrival notice for late check-ins.
type EventHandler struct {
	notices NoticeStore
	logger  *slog.Logger
}

func NewEventHandler(notices NoticeStore, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		notices: notices,
		logger:  logger,
	}
}

func (h *EventHandler) HandleAttendanceRecorded(ctx context.Context, event events.Event) error {
	recorded, ok := event.(*events.AttendanceRecordedEvent)
	if !ok {
		h.logger.Error("invalid event type for attendance recorded handler", "event_type", event.EventType())
		return nil
	}
	if recorded.Status != attendance.StatusLate {
		return nil
	}

	h.logger.Info("raising late arrival notice", "user_id", recorded.UserID, "date", recorded.Date)
	return h.notices.PutLate(ctx, recorded.UserID, LateNotice{
		Date:      recorded.Date,
		CheckInAt: recorded.CheckInAt,
		Message:   lateMessage,
	})
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeAttendanceRecorded, h.HandleAttendanceRecorded)
}
