package postgres

import (
	"context"
	"errors"

	leaveDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/attendance-management/internal/leave"
	"gorm.io/gorm"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.RepositoryAPI {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(ctx context.Context, req *leaveDatamodel.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *LeaveRepository) GetByID(ctx context.Context, id string) (*leaveDatamodel.Request, error) {
	var req leaveDatamodel.Request
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *LeaveRepository) ListAll(ctx context.Context) ([]*leaveDatamodel.Request, error) {
	var reqs []*leaveDatamodel.Request
	err := r.db.WithContext(ctx).Order("submitted_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *LeaveRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]*leaveDatamodel.Request, error) {
	var reqs []*leaveDatamodel.Request
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("submitted_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *LeaveRepository) ListApproved(ctx context.Context) ([]*leaveDatamodel.Request, error) {
	var reqs []*leaveDatamodel.Request
	err := r.db.WithContext(ctx).
		Where("status = ?", leave.StatusApproved).
		Order("start_date ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *LeaveRepository) Update(ctx context.Context, req *leaveDatamodel.Request) error {
	res := r.db.WithContext(ctx).Save(req)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leave.ErrLeaveNotFound
	}
	return nil
}

func (r *LeaveRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&leaveDatamodel.Request{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return leave.ErrLeaveNotFound
	}
	return nil
}

func (r *LeaveRepository) CreateDaysTaken(ctx context.Context, d *leaveDatamodel.DaysTaken) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *LeaveRepository) DeleteDaysTaken(ctx context.Context, leaveRequestID string) error {
	return r.db.WithContext(ctx).
		Where("leave_request_id = ?", leaveRequestID).
		Delete(&leaveDatamodel.DaysTaken{}).Error
}

func (r *LeaveRepository) SumDaysTaken(ctx context.Context, employeeID int64) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&leaveDatamodel.DaysTaken{}).
		Where("employee_id = ?", employeeID).
		Select("COALESCE(SUM(leave_days), 0)").
		Scan(&total).Error
	return total, err
}
