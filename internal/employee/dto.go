package employee

import "github.com/frahmantamala/attendance-management/internal/core/common/validation"

type CreateEmployeeDTO struct {
	NumericID  int    `json:"numeric_id" validate:"required,min=1"`
	Name       string `json:"name" validate:"required,max=120"`
	Username   string `json:"username" validate:"required,min=3,max=60"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Department string `json:"department" validate:"max=120"`
	JobTitle   string `json:"job_title" validate:"max=120"`
	Phone      string `json:"phone" validate:"max=30"`
	PhotoURL   string `json:"photo_url" validate:"omitempty,url"`
}

func (d CreateEmployeeDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

// UpdateEmployeeDTO carries only the fields being changed.
type UpdateEmployeeDTO struct {
	Name       *string `json:"name" validate:"omitempty,max=120"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Password   *string `json:"password" validate:"omitempty,min=6"`
	Department *string `json:"department" validate:"omitempty,max=120"`
	JobTitle   *string `json:"job_title" validate:"omitempty,max=120"`
	Phone      *string `json:"phone" validate:"omitempty,max=30"`
}

func (d UpdateEmployeeDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

type UpdateStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=active onleave inactive"`
}

func (d UpdateStatusDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

type EmployeesResponse struct {
	Employees []*Employee `json:"employees"`
	Total     int         `json:"total"`
}
