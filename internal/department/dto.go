package department

import "github.com/frahmantamala/attendance-management/internal/core/common/validation"

type CreateDepartmentDTO struct {
	Name        string `json:"name" validate:"required,max=120"`
	Head        string `json:"head" validate:"max=120"`
	HeadID      *int64 `json:"head_id" validate:"omitempty,min=1"`
	Description string `json:"description" validate:"max=500"`
	Budget      int64  `json:"budget" validate:"min=0"`
	Location    string `json:"location" validate:"max=120"`
}

func (d CreateDepartmentDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

type UpdateDepartmentDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Head        *string `json:"head" validate:"omitempty,max=120"`
	HeadID      *int64  `json:"head_id" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Budget      *int64  `json:"budget" validate:"omitempty,min=0"`
	Location    *string `json:"location" validate:"omitempty,max=120"`
}

func (d UpdateDepartmentDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	return nil
}

type DepartmentsResponse struct {
	Departments []*Department `json:"departments"`
	Total       int           `json:"total"`
}
