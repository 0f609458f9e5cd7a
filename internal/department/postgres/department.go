package postgres

import (
	"context"
	"errors"

	departmentDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/department"
	"github.com/frahmantamala/attendance-management/internal/department"
	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.RepositoryAPI {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) GetAll(ctx context.Context) ([]*departmentDatamodel.Department, error) {
	var departments []*departmentDatamodel.Department
	err := r.db.WithContext(ctx).Order("name ASC").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) GetByName(ctx context.Context, name string) (*departmentDatamodel.Department, error) {
	var d departmentDatamodel.Department
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*departmentDatamodel.Department, error) {
	var d departmentDatamodel.Department
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, d *departmentDatamodel.Department) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return department.ErrDepartmentExists
		}
		return err
	}
	return nil
}

func (r *DepartmentRepository) Update(ctx context.Context, d *departmentDatamodel.Department) error {
	if err := r.db.WithContext(ctx).Save(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return department.ErrDepartmentExists
		}
		return err
	}
	return nil
}

func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&departmentDatamodel.Department{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return department.ErrDepartmentNotFound
	}
	return nil
}

func (r *DepartmentRepository) SetEmployeeCounts(ctx context.Context, counts map[string]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&departmentDatamodel.Department{}).
			Where("1 = 1").
			Update("employee_count", 0).Error; err != nil {
			return err
		}
		for name, count := range counts {
			if name == "" {
				continue
			}
			if err := tx.Model(&departmentDatamodel.Department{}).
				Where("name = ?", name).
				Update("employee_count", count).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
