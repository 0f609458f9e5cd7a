package employee

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	employeeDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/pkg/clock"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*employeeDatamodel.Employee, error)
	GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error)
	GetByNumericID(ctx context.Context, numericID int) (*employeeDatamodel.Employee, error)
	GetByLogin(ctx context.Context, login string) (*employeeDatamodel.Employee, error)
	Create(ctx context.Context, e *employeeDatamodel.Employee) error
	Update(ctx context.Context, e *employeeDatamodel.Employee) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	TouchAttendance(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
	CountByDepartment(ctx context.Context) (map[string]int, error)
}

type Service struct {
	repo       RepositoryAPI
	cache      DirectoryCache
	photos     PhotoStore
	publisher  events.Publisher
	clock      clock.Clock
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, cache DirectoryCache, photos PhotoStore, publisher events.Publisher, c clock.Clock, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		cache:      cache,
		photos:     photos,
		publisher:  publisher,
		clock:      c,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Directory returns every employee, served from the cache while it is fresh.
func (s *Service) Directory(ctx context.Context) ([]*Employee, error) {
	cached, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn("employee directory cache read failed", "error", err)
	}
	if ok {
		return cached, nil
	}

	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to load employees", "error", err)
		return nil, err
	}

	employees := make([]*Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, FromDataModel(row))
	}

	if err := s.cache.Set(ctx, employees); err != nil {
		s.logger.Warn("employee directory cache write failed", "error", err)
	}
	return employees, nil
}

// Lookup finds an employee by id through the directory cache.
func (s *Service) Lookup(ctx context.Context, id int64) (*Employee, error) {
	employees, err := s.Directory(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range employees {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (s *Service) LookupByNumericID(ctx context.Context, numericID int) (*Employee, error) {
	employees, err := s.Directory(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range employees {
		if e.NumericID == numericID {
			return e, nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get employee", "error", err, "employee_id", id)
		return nil, err
	}
	if row == nil {
		return nil, ErrEmployeeNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	e := &Employee{
		NumericID:    dto.NumericID,
		Name:         dto.Name,
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: string(hash),
		Department:   dto.Department,
		JobTitle:     dto.JobTitle,
		Phone:        dto.Phone,
		PhotoURL:     dto.PhotoURL,
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	row := ToDataModel(e)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create employee", "error", err, "numeric_id", dto.NumericID)
		return nil, err
	}
	e.ID = row.ID

	s.changed(ctx, e.ID, "created")
	s.logger.Info("employee created", "employee_id", e.ID, "numeric_id", e.NumericID)
	return e, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrEmployeeNotFound
	}

	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.Email != nil {
		row.Email = *dto.Email
	}
	if dto.Department != nil {
		row.Department = *dto.Department
	}
	if dto.JobTitle != nil {
		row.JobTitle = *dto.JobTitle
	}
	if dto.Phone != nil {
		row.Phone = *dto.Phone
	}
	if dto.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		row.PasswordHash = string(hash)
	}
	row.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, err
	}

	s.changed(ctx, id, "updated")
	return FromDataModel(row), nil
}

// GetStatus reads the stored status, bypassing the cache.
func (s *Service) GetStatus(ctx context.Context, id int64) (string, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if row == nil {
		return "", ErrEmployeeNotFound
	}
	return row.Status, nil
}

func (s *Service) SetStatus(ctx context.Context, id int64, status string) error {
	if !IsValidStatus(status) {
		return UpdateStatusDTO{Status: status}.Validate()
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if !errors.Is(err, ErrEmployeeNotFound) {
			s.logger.Error("failed to update employee status", "error", err, "employee_id", id, "status", status)
		}
		return err
	}

	s.changed(ctx, id, "status")
	s.logger.Info("employee status updated", "employee_id", id, "status", status)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrEmployeeNotFound) {
			s.logger.Error("failed to delete employee", "error", err, "employee_id", id)
		}
		return err
	}
	s.changed(ctx, id, "deleted")
	return nil
}

// UploadPhoto stores a new reference photo and points the employee at it.
func (s *Service) UploadPhoto(ctx context.Context, id int64, file io.Reader) (*Employee, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrEmployeeNotFound
	}

	url, err := s.photos.Upload(ctx, fmt.Sprintf("employee_%d", row.NumericID), file)
	if err != nil {
		s.logger.Error("failed to upload reference photo", "error", err, "employee_id", id)
		return nil, ErrPhotoStorage.WithCause(err)
	}

	row.PhotoURL = url
	row.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, row); err != nil {
		return nil, err
	}

	s.changed(ctx, id, "photo")
	return FromDataModel(row), nil
}

// ReferencePhoto returns the employee's stored photo as a data URL.
func (s *Service) ReferencePhoto(ctx context.Context, e *Employee) (string, error) {
	if !e.HasReferencePhoto() {
		return "", ErrNoReferencePhoto
	}
	photo, err := s.photos.Fetch(ctx, e.PhotoURL)
	if err != nil {
		s.logger.Error("failed to fetch reference photo", "error", err, "employee_id", e.ID)
		return "", ErrPhotoStorage.WithCause(err)
	}
	return photo, nil
}

// TouchSession records the moment of the employee's latest successful check-in.
func (s *Service) TouchSession(ctx context.Context, id int64) error {
	if err := s.repo.TouchAttendance(ctx, id, s.clock.Now()); err != nil {
		s.logger.Error("failed to update employee session", "error", err, "employee_id", id)
		return err
	}
	return s.Invalidate(ctx)
}

func (s *Service) CountByDepartment(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByDepartment(ctx)
}

func (s *Service) Invalidate(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("employee directory cache invalidation failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) changed(ctx context.Context, id int64, change string) {
	_ = s.Invalidate(ctx)
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEmployeeChangedEvent(id, change)); err != nil {
		s.logger.Warn("failed to publish employee change", "error", err, "employee_id", id)
	}
}
