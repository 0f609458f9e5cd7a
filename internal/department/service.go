package department

import (
	"context"
	"errors"
	"log/slog"
	"math"

	departmentDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/department"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*departmentDatamodel.Department, error)
	GetByID(ctx context.Context, id int64) (*departmentDatamodel.Department, error)
	GetByName(ctx context.Context, name string) (*departmentDatamodel.Department, error)
	Create(ctx context.Context, d *departmentDatamodel.Department) error
	Update(ctx context.Context, d *departmentDatamodel.Department) error
	Delete(ctx context.Context, id int64) error
	// SetEmployeeCounts writes counts by department name; departments absent
	// from counts are set to zero.
	SetEmployeeCounts(ctx context.Context, counts map[string]int) error
}

// EmployeeCounter is satisfied by the employee service.
type EmployeeCounter interface {
	CountByDepartment(ctx context.Context) (map[string]int, error)
}

type Service struct {
	repo      RepositoryAPI
	employees EmployeeCounter
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, employees EmployeeCounter, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		employees: employees,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*Department, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get departments from repository", "error", err)
		return nil, err
	}

	departments := make([]*Department, 0, len(rows))
	for _, row := range rows {
		departments = append(departments, FromDataModel(row))
	}
	return departments, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Department, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrDepartmentNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(ctx, dto.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDepartmentExists
	}

	row := &departmentDatamodel.Department{
		Name:        dto.Name,
		Head:        dto.Head,
		HeadID:      dto.HeadID,
		Description: dto.Description,
		Budget:      dto.Budget,
		Location:    dto.Location,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, err
	}

	if err := s.RecomputeEmployeeCounts(ctx); err == nil {
		if fresh, err := s.repo.GetByID(ctx, row.ID); err == nil && fresh != nil {
			row = fresh
		}
	}

	s.logger.Info("department created", "department_id", row.ID, "name", row.Name)
	return FromDataModel(row), nil
}

// Update does not cascade a rename to employees.
func (s *Service) Update(ctx context.Context, id int64, dto UpdateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrDepartmentNotFound
	}

	if dto.Name != nil && *dto.Name != row.Name {
		existing, err := s.repo.GetByName(ctx, *dto.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDepartmentExists
		}
		row.Name = *dto.Name
	}
	if dto.Head != nil {
		row.Head = *dto.Head
	}
	if dto.HeadID != nil {
		row.HeadID = dto.HeadID
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.Budget != nil {
		row.Budget = *dto.Budget
	}
	if dto.Location != nil {
		row.Location = *dto.Location
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrDepartmentNotFound) {
			s.logger.Error("failed to delete department", "error", err, "department_id", id)
		}
		return err
	}
	s.logger.Info("department deleted", "department_id", id)
	return nil
}

// RecomputeEmployeeCounts refreshes employee_count from the employees table.
func (s *Service) RecomputeEmployeeCounts(ctx context.Context) error {
	counts, err := s.employees.CountByDepartment(ctx)
	if err != nil {
		s.logger.Error("failed to count employees by department", "error", err)
		return err
	}
	if err := s.repo.SetEmployeeCounts(ctx, counts); err != nil {
		s.logger.Error("failed to store department employee counts", "error", err)
		return err
	}
	return nil
}

func (s *Service) Analytics(ctx context.Context) (*Analytics, error) {
	if err := s.RecomputeEmployeeCounts(ctx); err != nil {
		return nil, err
	}

	departments, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	a := &Analytics{TotalDepartments: len(departments)}
	for _, d := range departments {
		a.TotalEmployees += d.EmployeeCount
		a.TotalBudget += d.Budget
		if a.LargestDepartment == nil || d.EmployeeCount > a.LargestDepartment.EmployeeCount {
			a.LargestDepartment = d
		}
		if a.HighestBudget == nil || d.Budget > a.HighestBudget.Budget {
			a.HighestBudget = d
		}
	}
	if a.TotalDepartments > 0 {
		avg := float64(a.TotalEmployees) / float64(a.TotalDepartments)
		a.AverageEmployees = math.Round(avg*10) / 10
	}
	return a, nil
}
