package attendance

import "time"

type Record struct {
	ID           int64      `gorm:"primaryKey"`
	UserID       int64      `gorm:"column:user_id;not null;uniqueIndex:idx_attendance_user_date"`
	EmployeeName string     `gorm:"column:employee_name"`
	Department   string     `gorm:"column:department"`
	Date         string     `gorm:"column:date;size:10;not null;uniqueIndex:idx_attendance_user_date;index"`
	CheckInAt    time.Time  `gorm:"column:check_in_at;not null"`
	CheckOutAt   *time.Time `gorm:"column:check_out_at"`
	Status       string     `gorm:"column:status;not null"`
	WorkedHours  float64    `gorm:"column:worked_hours;not null;default:0"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Record) TableName() string {
	return "attendance_records"
}
