package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	leaveDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/internal/employee"
	"github.com/frahmantamala/attendance-management/pkg/clock"
)

type RepositoryAPI interface {
	Create(ctx context.Context, r *leaveDatamodel.Request) error
	// GetByID returns nil when the request does not exist.
	GetByID(ctx context.Context, id string) (*leaveDatamodel.Request, error)
	ListAll(ctx context.Context) ([]*leaveDatamodel.Request, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]*leaveDatamodel.Request, error)
	ListApproved(ctx context.Context) ([]*leaveDatamodel.Request, error)
	Update(ctx context.Context, r *leaveDatamodel.Request) error
	Delete(ctx context.Context, id string) error

	CreateDaysTaken(ctx context.Context, d *leaveDatamodel.DaysTaken) error
	DeleteDaysTaken(ctx context.Context, leaveRequestID string) error
	SumDaysTaken(ctx context.Context, employeeID int64) (int, error)
}

// EmployeeStatusAPI is the slice of the employee service leave needs.
type EmployeeStatusAPI interface {
	GetStatus(ctx context.Context, id int64) (string, error)
	SetStatus(ctx context.Context, id int64, status string) error
}

type Service struct {
	repo      RepositoryAPI
	employees EmployeeStatusAPI
	clock     clock.Clock
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, employees EmployeeStatusAPI, c clock.Clock, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		employees: employees,
		clock:     c,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) today() string {
	return clock.Date(s.clock.Now())
}

// InclusiveDays counts the calendar days from start to end, both included.
func InclusiveDays(start, end string) (int, error) {
	s, err := time.Parse(clock.DateLayout, start)
	if err != nil {
		return 0, err
	}
	e, err := time.Parse(clock.DateLayout, end)
	if err != nil {
		return 0, err
	}
	return int(e.Sub(s).Hours()/24) + 1, nil
}

func (s *Service) Submit(ctx context.Context, employeeID int64, employeeName string, dto SubmitLeaveDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	days, err := InclusiveDays(dto.StartDate, dto.EndDate)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	req := &Request{
		ID:           fmt.Sprintf("leave_req_%d_%d", employeeID, now.UnixMilli()),
		EmployeeID:   employeeID,
		EmployeeName: employeeName,
		StartDate:    dto.StartDate,
		EndDate:      dto.EndDate,
		LeaveType:    dto.LeaveType,
		LeaveDays:    days,
		Reason:       dto.Reason,
		Status:       StatusPending,
		SubmittedAt:  now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, ToDataModel(req)); err != nil {
		s.logger.Error("failed to submit leave request", "error", err, "employee_id", employeeID)
		return nil, err
	}

	s.logger.Info("leave request submitted", "leave_request_id", req.ID, "employee_id", employeeID, "leave_days", days)
	return req, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*Request, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list leave requests", "error", err)
		return nil, err
	}
	return fromRows(rows), nil
}

func (s *Service) ListMine(ctx context.Context, employeeID int64) ([]*Request, error) {
	rows, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("failed to list leave requests", "error", err, "employee_id", employeeID)
		return nil, err
	}
	return fromRows(rows), nil
}

func fromRows(rows []*leaveDatamodel.Request) []*Request {
	out := make([]*Request, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}

// UpdateStatus approves or rejects a pending request. Approval writes the
// days-taken ledger row and, when the leave covers today, puts the employee on leave.
func (s *Service) UpdateStatus(ctx context.Context, id string, approverID int64, dto UpdateLeaveStatusDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrLeaveNotFound
	}
	if row.Status != StatusPending {
		return nil, ErrInvalidLeaveStatus
	}

	now := s.clock.Now()
	row.Status = dto.Status
	row.UpdatedAt = now
	if dto.Status == StatusApproved {
		row.ApprovedBy = &approverID
		row.ApprovedAt = &now
	} else {
		row.RejectionReason = dto.RejectionReason
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update leave request", "error", err, "leave_request_id", id)
		return nil, err
	}

	req := FromDataModel(row)
	if req.IsApproved() {
		if err := s.recordDaysTaken(ctx, req, now); err != nil {
			s.revertToPending(ctx, row)
			return nil, err
		}
	}
	s.logger.Info("leave request reviewed", "leave_request_id", id, "status", req.Status, "approved_by", approverID)

	if req.IsApproved() {
		if err := s.applyApproval(ctx, req); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func (s *Service) recordDaysTaken(ctx context.Context, req *Request, now time.Time) error {
	err := s.repo.CreateDaysTaken(ctx, &leaveDatamodel.DaysTaken{
		EmployeeID:     req.EmployeeID,
		EmployeeName:   req.EmployeeName,
		LeaveRequestID: req.ID,
		LeaveDays:      req.LeaveDays,
		LeaveType:      req.LeaveType,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		ApprovedAt:     now,
	})
	if err != nil {
		s.logger.Error("failed to record leave days taken", "error", err, "leave_request_id", req.ID)
	}
	return err
}

// revertToPending undoes an approval whose days-taken row could not be written,
// so the request can be reviewed again.
func (s *Service) revertToPending(ctx context.Context, row *leaveDatamodel.Request) {
	row.Status = StatusPending
	row.ApprovedBy = nil
	row.ApprovedAt = nil
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to revert leave request to pending", "error", err, "leave_request_id", row.ID)
	}
}

// applyApproval puts an active employee on leave when the request covers today.
// Inactive employees stay inactive, matching the sweep.
func (s *Service) applyApproval(ctx context.Context, req *Request) error {
	statusChanged := false
	if req.Covers(s.today()) {
		var err error
		statusChanged, err = s.setStatus(ctx, req.EmployeeID, employee.StatusOnLeave, employee.StatusActive)
		if err != nil {
			return err
		}
	}

	s.publish(ctx, events.NewLeaveApprovedEvent(req.ID, req.EmployeeID, req.LeaveDays, statusChanged))
	return nil
}

// Delete removes a request, undoing the side effects of an earlier approval.
func (s *Service) Delete(ctx context.Context, id string) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if row == nil {
		return ErrLeaveNotFound
	}

	req := FromDataModel(row)
	statusChanged := false
	if req.IsApproved() {
		if err := s.repo.DeleteDaysTaken(ctx, req.ID); err != nil {
			s.logger.Error("failed to remove leave days taken", "error", err, "leave_request_id", id)
			return err
		}
		if req.Covers(s.today()) {
			statusChanged, err = s.setStatus(ctx, req.EmployeeID, employee.StatusActive, employee.StatusOnLeave)
			if err != nil {
				return err
			}
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrLeaveNotFound) {
			s.logger.Error("failed to delete leave request", "error", err, "leave_request_id", id)
		}
		return err
	}

	s.logger.Info("leave request deleted", "leave_request_id", id, "was_approved", req.IsApproved())
	if req.IsApproved() {
		s.publish(ctx, events.NewLeaveDeletedEvent(req.ID, req.EmployeeID, req.LeaveDays, statusChanged))
	}
	return nil
}

func (s *Service) TotalDaysTaken(ctx context.Context, employeeID int64) (int, error) {
	total, err := s.repo.SumDaysTaken(ctx, employeeID)
	if err != nil {
		s.logger.Error("failed to sum leave days taken", "error", err, "employee_id", employeeID)
		return 0, err
	}
	return total, nil
}

// Sweep reconciles employee status with approved leave. Ended leave is
// handled before current leave so an employee with both ends up on leave.
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	rows, err := s.repo.ListApproved(ctx)
	if err != nil {
		s.logger.Error("leave sweep failed to list approved leave", "error", err)
		return result, err
	}

	today := s.today()
	requests := fromRows(rows)

	for _, req := range requests {
		if !req.Ended(today) {
			continue
		}
		changed, err := s.setStatus(ctx, req.EmployeeID, employee.StatusActive, employee.StatusOnLeave)
		if err != nil {
			return result, err
		}
		if changed {
			result.Activated++
		}
	}

	for _, req := range requests {
		if !req.Covers(today) {
			continue
		}
		changed, err := s.setStatus(ctx, req.EmployeeID, employee.StatusOnLeave, employee.StatusActive)
		if err != nil {
			return result, err
		}
		if changed {
			result.SetOnLeave++
		}
	}

	s.logger.Info("leave sweep finished", "date", today, "activated", result.Activated, "set_on_leave", result.SetOnLeave)
	return result, nil
}

// setStatus moves the employee to status. A non-empty from only allows the
// change out of that status. Missing employees are logged and skipped.
func (s *Service) setStatus(ctx context.Context, employeeID int64, status, from string) (bool, error) {
	current, err := s.employees.GetStatus(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			s.logger.Warn("leave refers to a missing employee", "employee_id", employeeID)
			return false, nil
		}
		return false, err
	}
	if current == status || (from != "" && current != from) {
		return false, nil
	}

	if err := s.employees.SetStatus(ctx, employeeID, status); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			s.logger.Warn("leave refers to a missing employee", "employee_id", employeeID)
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish leave event", "error", err, "event_type", event.EventType())
	}
}
