package employee

import (
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	employeeDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/employee"
)

const (
	StatusActive   = "active"
	StatusOnLeave  = "onleave"
	StatusInactive = "inactive"
)

var (
	ErrEmployeeNotFound = internal.NewNotFoundError("Employee not found", internal.ErrCodeEmployeeNotFound)
	ErrEmployeeExists   = internal.NewConflictError("An employee with this numeric id, username or email already exists", internal.ErrCodeEmployeeExists)
	ErrNoReferencePhoto = internal.NewValidationError("No reference photo on file for this employee", internal.ErrCodeNoReferencePhoto)
	ErrPhotoStorage     = internal.NewExternalError("Photo storage is unavailable", internal.ErrCodePhotoStorageFailed)
)

type Employee struct {
	ID               int64      `json:"id"`
	NumericID        int        `json:"numeric_id"`
	Name             string     `json:"name"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Department       string     `json:"department"`
	JobTitle         string     `json:"job_title"`
	Phone            string     `json:"phone,omitempty"`
	PhotoURL         string     `json:"photo_url,omitempty"`
	Status           string     `json:"status"`
	LastAttendanceAt *time.Time `json:"last_attendance_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsAdmin reports whether this is the account holding the reserved admin numeric id.
func (e *Employee) IsAdmin(adminNumericID int) bool {
	return e.NumericID == adminNumericID
}

func (e *Employee) HasReferencePhoto() bool {
	return e.PhotoURL != ""
}

func (e *Employee) IsOnLeave() bool {
	return e.Status == StatusOnLeave
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusOnLeave, StatusInactive:
		return true
	}
	return false
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:               e.ID,
		NumericID:        e.NumericID,
		Name:             e.Name,
		Username:         e.Username,
		Email:            e.Email,
		PasswordHash:     e.PasswordHash,
		Department:       e.Department,
		JobTitle:         e.JobTitle,
		Phone:            e.Phone,
		PhotoURL:         e.PhotoURL,
		Status:           e.Status,
		LastAttendanceAt: e.LastAttendanceAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:               e.ID,
		NumericID:        e.NumericID,
		Name:             e.Name,
		Username:         e.Username,
		Email:            e.Email,
		PasswordHash:     e.PasswordHash,
		Department:       e.Department,
		JobTitle:         e.JobTitle,
		Phone:            e.Phone,
		PhotoURL:         e.PhotoURL,
		Status:           e.Status,
		LastAttendanceAt: e.LastAttendanceAt,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
