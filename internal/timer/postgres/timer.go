package postgres

import (
	"context"
	"errors"

	timerDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/timer"
	"github.com/frahmantamala/attendance-management/internal/timer"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TimerRepository struct {
	db *gorm.DB
}

func NewTimerRepository(db *gorm.DB) timer.RepositoryAPI {
	return &TimerRepository{db: db}
}

func (r *TimerRepository) Get(ctx context.Context, userID int64) (*timerDatamodel.WorkTimer, error) {
	var t timerDatamodel.WorkTimer
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// Save upserts the user's single timer row.
func (r *TimerRepository) Save(ctx context.Context, t *timerDatamodel.WorkTimer) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(t).Error
}

func (r *TimerRepository) Delete(ctx context.Context, userID int64) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&timerDatamodel.WorkTimer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return timer.ErrTimerNotFound
	}
	return nil
}

func (r *TimerRepository) ListActive(ctx context.Context) ([]*timerDatamodel.WorkTimer, error) {
	var timers []*timerDatamodel.WorkTimer
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&timers).Error
	return timers, err
}
