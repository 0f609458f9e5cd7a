package leave

import "time"

type Request struct {
	ID              string     `gorm:"primaryKey;size:64"`
	EmployeeID      int64      `gorm:"column:employee_id;not null;index"`
	EmployeeName    string     `gorm:"column:employee_name"`
	StartDate       string     `gorm:"column:start_date;size:10;not null"`
	EndDate         string     `gorm:"column:end_date;size:10;not null"`
	LeaveType       string     `gorm:"column:leave_type;not null"`
	LeaveDays       int        `gorm:"column:leave_days;not null"`
	Reason          string     `gorm:"column:reason"`
	Status          string     `gorm:"column:status;not null;index"`
	ApprovedBy      *int64     `gorm:"column:approved_by"`
	ApprovedAt      *time.Time `gorm:"column:approved_at"`
	RejectionReason string     `gorm:"column:rejection_reason"`
	SubmittedAt     time.Time  `gorm:"column:submitted_at;not null"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Request) TableName() string {
	return "leave_requests"
}

// DaysTaken is the denormalized ledger row written when a request is approved.
type DaysTaken struct {
	ID             int64     `gorm:"primaryKey"`
	EmployeeID     int64     `gorm:"column:employee_id;not null;index"`
	EmployeeName   string    `gorm:"column:employee_name"`
	LeaveRequestID string    `gorm:"column:leave_request_id;size:64;uniqueIndex;not null"`
	LeaveDays      int       `gorm:"column:leave_days;not null"`
	LeaveType      string    `gorm:"column:leave_type"`
	StartDate      string    `gorm:"column:start_date;size:10"`
	EndDate        string    `gorm:"column:end_date;size:10"`
	ApprovedAt     time.Time `gorm:"column:approved_at"`
}

func (DaysTaken) TableName() string {
	return "leave_days_taken"
}
