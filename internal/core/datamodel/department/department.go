package department

import "time"

type Department struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"column:name;uniqueIndex;not null"`
	Head          string    `gorm:"column:head"`
	HeadID        *int64    `gorm:"column:head_id"`
	Description   string    `gorm:"column:description"`
	Budget        int64     `gorm:"column:budget;not null;default:0"`
	Location      string    `gorm:"column:location"`
	EmployeeCount int       `gorm:"column:employee_count;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Department) TableName() string {
	return "departments"
}
