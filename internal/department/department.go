package department

import (
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	departmentDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/department"
)

var (
	ErrDepartmentNotFound = internal.NewNotFoundError("Department not found", internal.ErrCodeDepartmentNotFound)
	ErrDepartmentExists   = internal.NewConflictError("A department with this name already exists", internal.ErrCodeDepartmentExists)
)

type Department struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Head          string    `json:"head"`
	HeadID        *int64    `json:"head_id,omitempty"`
	Description   string    `json:"description"`
	Budget        int64     `json:"budget"`
	Location      string    `json:"location"`
	EmployeeCount int       `json:"employee_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Analytics summarises all departments for the admin dashboard.
type Analytics struct {
	TotalDepartments  int         `json:"total_departments"`
	TotalEmployees    int         `json:"total_employees"`
	TotalBudget       int64       `json:"total_budget"`
	AverageEmployees  float64     `json:"average_employees"`
	LargestDepartment *Department `json:"largest_department,omitempty"`
	HighestBudget     *Department `json:"highest_budget,omitempty"`
}

func ToDataModel(d *Department) *departmentDatamodel.Department {
	return &departmentDatamodel.Department{
		ID:            d.ID,
		Name:          d.Name,
		Head:          d.Head,
		HeadID:        d.HeadID,
		Description:   d.Description,
		Budget:        d.Budget,
		Location:      d.Location,
		EmployeeCount: d.EmployeeCount,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func FromDataModel(d *departmentDatamodel.Department) *Department {
	return &Department{
		ID:            d.ID,
		Name:          d.Name,
		Head:          d.Head,
		HeadID:        d.HeadID,
		Description:   d.Description,
		Budget:        d.Budget,
		Location:      d.Location,
		EmployeeCount: d.EmployeeCount,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
