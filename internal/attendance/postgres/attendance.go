package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/attendance-management/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
	"gorm.io/gorm"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) attendance.RepositoryAPI {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) GetByUserAndDate(ctx context.Context, userID int64, date string) (*attendanceDatamodel.Record, error) {
	var rec attendanceDatamodel.Record
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Create relies on idx_attendance_user_date to reject a second record for the same day.
func (r *AttendanceRepository) Create(ctx context.Context, rec *attendanceDatamodel.Record) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return attendance.ErrAttendanceAlreadyTaken
		}
		return err
	}
	return nil
}

func (r *AttendanceRepository) ListByDate(ctx context.Context, date string) ([]*attendanceDatamodel.Record, error) {
	var records []*attendanceDatamodel.Record
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Order("check_in_at ASC").
		Find(&records).Error
	return records, err
}

func (r *AttendanceRepository) ListByUser(ctx context.Context, userID int64, from, to string) ([]*attendanceDatamodel.Record, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}

	var records []*attendanceDatamodel.Record
	err := q.Order("date DESC").Find(&records).Error
	return records, err
}

func (r *AttendanceRepository) CheckOut(ctx context.Context, userID int64, date string, at time.Time, workedHours float64) error {
	res := r.db.WithContext(ctx).Model(&attendanceDatamodel.Record{}).
		Where("user_id = ? AND date = ?", userID, date).
		Updates(map[string]interface{}{
			"check_out_at": at,
			"worked_hours": workedHours,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}
