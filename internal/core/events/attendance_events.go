package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAttendanceRecorded = "attendance.recorded"
	EventTypeTimerCompleted     = "timer.completed"
	EventTypeLeaveApproved      = "leave.approved"
	EventTypeLeaveDeleted       = "leave.deleted"
	EventTypeEmployeeChanged    = "employee.changed"
)

type AttendanceRecordedEvent struct {
	BaseEvent
	RecordID  int64     `json:"record_id"`
	UserID    int64     `json:"user_id"`
	Date      string    `json:"date"`
	Status    string    `json:"status"`
	CheckInAt time.Time `json:"check_in_at"`
}

func NewAttendanceRecordedEvent(recordID, userID int64, date, status string, checkInAt time.Time) *AttendanceRecordedEvent {
	return &AttendanceRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAttendanceRecorded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"record_id":   recordID,
				"user_id":     userID,
				"date":        date,
				"status":      status,
				"check_in_at": checkInAt,
			},
		},
		RecordID:  recordID,
		UserID:    userID,
		Date:      date,
		Status:    status,
		CheckInAt: checkInAt,
	}
}

type TimerCompletedEvent struct {
	BaseEvent
	UserID      int64   `json:"user_id"`
	Date        string  `json:"date"`
	WorkedHours float64 `json:"worked_hours"`
}

func NewTimerCompletedEvent(userID int64, date string, workedHours float64) *TimerCompletedEvent {
	return &TimerCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTimerCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":      userID,
				"date":         date,
				"worked_hours": workedHours,
			},
		},
		UserID:      userID,
		Date:        date,
		WorkedHours: workedHours,
	}
}

// LeaveEvent covers both approval and deletion of a leave request.
type LeaveEvent struct {
	BaseEvent
	LeaveRequestID string `json:"leave_request_id"`
	EmployeeID     int64  `json:"employee_id"`
	LeaveDays      int    `json:"leave_days"`
	StatusChanged  bool   `json:"status_changed"`
}

func NewLeaveApprovedEvent(leaveRequestID string, employeeID int64, leaveDays int, statusChanged bool) *LeaveEvent {
	return newLeaveEvent(EventTypeLeaveApproved, leaveRequestID, employeeID, leaveDays, statusChanged)
}

func NewLeaveDeletedEvent(leaveRequestID string, employeeID int64, leaveDays int, statusChanged bool) *LeaveEvent {
	return newLeaveEvent(EventTypeLeaveDeleted, leaveRequestID, employeeID, leaveDays, statusChanged)
}

func newLeaveEvent(eventType, leaveRequestID string, employeeID int64, leaveDays int, statusChanged bool) *LeaveEvent {
	return &LeaveEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"leave_request_id": leaveRequestID,
				"employee_id":      employeeID,
				"leave_days":       leaveDays,
				"status_changed":   statusChanged,
			},
		},
		LeaveRequestID: leaveRequestID,
		EmployeeID:     employeeID,
		LeaveDays:      leaveDays,
		StatusChanged:  statusChanged,
	}
}

type EmployeeChangedEvent struct {
	BaseEvent
	EmployeeID int64  `json:"employee_id"`
	Change     string `json:"change"`
}

func NewEmployeeChangedEvent(employeeID int64, change string) *EmployeeChangedEvent {
	return &EmployeeChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEmployeeChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employee_id": employeeID,
				"change":      change,
			},
		},
		EmployeeID: employeeID,
		Change:     change,
	}
}
