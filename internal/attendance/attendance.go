package attendance

import (
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
)

const (
	StatusPresent = "Present"
	StatusLate    = "Late"
	StatusAbsent  = "Absent"
	StatusOnLeave = "OnLeave"
)

const alreadyTakenMessage = "You have already taken attendance today. Please try again tomorrow."

// ErrAttendanceAlreadyTaken tells the client to send the user back to the dashboard.
var ErrAttendanceAlreadyTaken = internal.NewConflictError(alreadyTakenMessage, internal.ErrCodeAttendanceTaken).
	WithDetails(map[string]string{"redirect": "/dashboard"})

var (
	ErrAttendanceNotFound = internal.NewNotFoundError("Attendance record not found", internal.ErrCodeAttendanceNotFound)
	ErrInvalidMonth       = internal.NewValidationError("month must be in YYYY-MM format", internal.ErrCodeInvalidDate)
	ErrInvalidDate        = internal.NewValidationError("date must be in YYYY-MM-DD format", internal.ErrCodeInvalidDate)
)

type Record struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	EmployeeName string     `json:"employee_name"`
	Department   string     `json:"department"`
	Date         string     `json:"date"`
	CheckInAt    time.Time  `json:"check_in_at"`
	CheckOutAt   *time.Time `json:"check_out_at,omitempty"`
	Status       string     `json:"status"`
	WorkedHours  float64    `json:"worked_hours"`
}

func (r *Record) IsLate() bool {
	return r.Status == StatusLate
}

// CheckIn is a verified arrival about to be recorded.
type CheckIn struct {
	UserID       int64
	EmployeeName string
	Department   string
	At           time.Time
}

type TodayStatus struct {
	Date      string  `json:"date"`
	CheckedIn bool    `json:"checked_in"`
	Record    *Record `json:"record,omitempty"`
	Message   string  `json:"message,omitempty"`
	Redirect  string  `json:"redirect,omitempty"`
}

type TodayStats struct {
	Date         string `json:"date"`
	TotalMembers int    `json:"total_members"`
	Present      int    `json:"present"`
	Late         int    `json:"late"`
	OnLeave      int    `json:"on_leave"`
	Absent       int    `json:"absent"`
}

type DepartmentStats struct {
	Department     string  `json:"department"`
	Total          int     `json:"total"`
	Present        int     `json:"present"`
	Late           int     `json:"late"`
	OnLeave        int     `json:"on_leave"`
	Absent         int     `json:"absent"`
	AttendanceRate float64 `json:"attendance_rate"`
}

type MonthlySummary struct {
	Month         string  `json:"month"`
	DaysPresent   int     `json:"days_present"`
	LateArrivals  int     `json:"late_arrivals"`
	OvertimeHours float64 `json:"overtime_hours"`
}

type AbsenceReason struct {
	LeaveType  string  `json:"leave_type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

func ToDataModel(r *Record) *attendanceDatamodel.Record {
	return &attendanceDatamodel.Record{
		ID:           r.ID,
		UserID:       r.UserID,
		EmployeeName: r.EmployeeName,
		Department:   r.Department,
		Date:         r.Date,
		CheckInAt:    r.CheckInAt,
		CheckOutAt:   r.CheckOutAt,
		Status:       r.Status,
		WorkedHours:  r.WorkedHours,
	}
}

func FromDataModel(r *attendanceDatamodel.Record) *Record {
	return &Record{
		ID:           r.ID,
		UserID:       r.UserID,
		EmployeeName: r.EmployeeName,
		Department:   r.Department,
		Date:         r.Date,
		CheckInAt:    r.CheckInAt,
		CheckOutAt:   r.CheckOutAt,
		Status:       r.Status,
		WorkedHours:  r.WorkedHours,
	}
}
