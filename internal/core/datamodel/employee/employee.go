package employee

import "time"

type Employee struct {
	ID               int64      `gorm:"primaryKey"`
	NumericID        int        `gorm:"column:numeric_id;uniqueIndex;not null"`
	Name             string     `gorm:"column:name;not null"`
	Username         string     `gorm:"column:username;uniqueIndex;not null"`
	Email            string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash     string     `gorm:"column:password_hash;not null"`
	Department       string     `gorm:"column:department;index"`
	JobTitle         string     `gorm:"column:job_title"`
	Phone            string     `gorm:"column:phone"`
	PhotoURL         string     `gorm:"column:photo_url"`
	Status           string     `gorm:"column:status;not null;default:active"`
	LastAttendanceAt *time.Time `gorm:"column:last_attendance_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}
