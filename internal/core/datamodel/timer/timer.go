package timer

import "time"

type WorkTimer struct {
	UserID           int64     `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	StartTime        time.Time `gorm:"column:start_time;not null"`
	DurationSeconds  int64     `gorm:"column:duration_seconds;not null"`
	RemainingSeconds int64     `gorm:"column:remaining_seconds;not null"`
	IsActive         bool      `gorm:"column:is_active;not null;index"`
	TotalHours       float64   `gorm:"column:total_hours;not null;default:0"`
	CheckInTime      time.Time `gorm:"column:check_in_time;not null"`
	Date             string    `gorm:"column:date;size:10"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (WorkTimer) TableName() string {
	return "work_timers"
}
