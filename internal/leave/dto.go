package leave

import "github.com/frahmantamala/attendance-management/internal/core/common/validation"

type SubmitLeaveDTO struct {
	StartDate string `json:"start_date" validate:"required,date"`
	EndDate   string `json:"end_date" validate:"required,date"`
	LeaveType string `json:"leave_type" validate:"required,oneof=annual sick personal maternity paternity emergency unpaid"`
	Reason    string `json:"reason" validate:"max=500"`
}

func (d SubmitLeaveDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	if err := validation.DateRange("start_date", d.StartDate, "end_date", d.EndDate); err != nil {
		return err
	}
	return nil
}

type UpdateLeaveStatusDTO struct {
	Status          string `json:"status" validate:"required,oneof=Approved Rejected"`
	RejectionReason string `json:"rejection_reason" validate:"max=500"`
}

func (d UpdateLeaveStatusDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

type LeaveRequestsResponse struct {
	LeaveRequests []*Request `json:"leave_requests"`
	Total         int        `json:"total"`
}

type LeaveDaysResponse struct {
	EmployeeID     int64 `json:"employee_id"`
	TotalLeaveDays int   `json:"total_leave_days"`
}
