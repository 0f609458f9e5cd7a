package postgres

import (
	"context"
	"errors"
	"time"

	employeeDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/attendance-management/internal/employee"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.RepositoryAPI {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) GetAll(ctx context.Context) ([]*employeeDatamodel.Employee, error) {
	var employees []*employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Order("numeric_id ASC").Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *EmployeeRepository) GetByNumericID(ctx context.Context, numericID int) (*employeeDatamodel.Employee, error) {
	return r.first(ctx, "numeric_id = ?", numericID)
}

// GetByLogin matches either the username or the email.
func (r *EmployeeRepository) GetByLogin(ctx context.Context, login string) (*employeeDatamodel.Employee, error) {
	return r.first(ctx, "username = ? OR email = ?", login, login)
}

func (r *EmployeeRepository) first(ctx context.Context, query string, args ...interface{}) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Where(query, args...).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employeeDatamodel.Employee) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return employee.ErrEmployeeExists
		}
		return err
	}
	return nil
}

func (r *EmployeeRepository) Update(ctx context.Context, e *employeeDatamodel.Employee) error {
	if err := r.db.WithContext(ctx).Save(e).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return employee.ErrEmployeeExists
		}
		return err
	}
	return nil
}

func (r *EmployeeRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res := r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) TouchAttendance(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).
		Where("id = ?", id).
		Update("last_attendance_at", at).Error
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&employeeDatamodel.Employee{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) CountByDepartment(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Department string
		Total      int
	}
	err := r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).
		Select("department, COUNT(*) AS total").
		Group("department").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Department] = row.Total
	}
	return counts, nil
}
