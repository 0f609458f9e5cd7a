package leave

import (
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	leaveDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/attendance-management/pkg/clock"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

const (
	TypeAnnual    = "annual"
	TypeSick      = "sick"
	TypePersonal  = "personal"
	TypeMaternity = "maternity"
	TypePaternity = "paternity"
	TypeEmergency = "emergency"
	TypeUnpaid    = "unpaid"
)

var (
	ErrLeaveNotFound      = internal.NewNotFoundError("Leave request not found", internal.ErrCodeLeaveNotFound)
	ErrInvalidLeaveStatus = internal.NewValidationError("Only pending leave requests can be approved or rejected", internal.ErrCodeInvalidLeaveStatus)
	ErrLeaveForbidden     = internal.NewForbiddenError("You can only view your own leave days", internal.ErrCodeAdminOnly)
)

type Request struct {
	ID              string     `json:"id"`
	EmployeeID      int64      `json:"employee_id"`
	EmployeeName    string     `json:"employee_name"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	LeaveType       string     `json:"leave_type"`
	LeaveDays       int        `json:"leave_days"`
	Reason          string     `json:"reason,omitempty"`
	Status          string     `json:"status"`
	ApprovedBy      *int64     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (r *Request) IsApproved() bool {
	return r.Status == StatusApproved
}

// Covers reports whether date (YYYY-MM-DD) falls inside the inclusive range.
func (r *Request) Covers(date string) bool {
	return clock.InRange(date, r.StartDate, r.EndDate)
}

// Ended reports whether the range closed before date.
func (r *Request) Ended(date string) bool {
	return r.EndDate < date
}

// SweepResult counts the status changes made by one leave sweep.
type SweepResult struct {
	Activated  int `json:"activated"`
	SetOnLeave int `json:"set_on_leave"`
}

func FromDataModel(m *leaveDatamodel.Request) *Request {
	if m == nil {
		return nil
	}
	return &Request{
		ID:              m.ID,
		EmployeeID:      m.EmployeeID,
		EmployeeName:    m.EmployeeName,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		LeaveType:       m.LeaveType,
		LeaveDays:       m.LeaveDays,
		Reason:          m.Reason,
		Status:          m.Status,
		ApprovedBy:      m.ApprovedBy,
		ApprovedAt:      m.ApprovedAt,
		RejectionReason: m.RejectionReason,
		SubmittedAt:     m.SubmittedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func ToDataModel(r *Request) *leaveDatamodel.Request {
	return &leaveDatamodel.Request{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    r.EmployeeName,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		LeaveType:       r.LeaveType,
		LeaveDays:       r.LeaveDays,
		Reason:          r.Reason,
		Status:          r.Status,
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      r.ApprovedAt,
		RejectionReason: r.RejectionReason,
		SubmittedAt:     r.SubmittedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
