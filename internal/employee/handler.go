package employee

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/auth"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Directory(ctx context.Context) ([]*Employee, error)
	Get(ctx context.Context, id int64) (*Employee, error)
	Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error)
	Update(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error)
	SetStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
	UploadPhoto(ctx context.Context, id int64, file io.Reader) (*Employee, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetCurrentUser returns the caller's own profile.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteAppError(w, auth.ErrInvalidToken, "unauthorized")
		return
	}

	e, err := h.Service.Get(r.Context(), user.ID)
	if err != nil {
		h.WriteAppError(w, err, "failed to get profile")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"employee": e,
		"is_admin": user.IsAdmin,
	})
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.Directory(r.Context())
	if err != nil {
		h.WriteAppError(w, err, "failed to list employees")
		return
	}

	h.WriteJSON(w, http.StatusOK, EmployeesResponse{
		Employees: employees,
		Total:     len(employees),
	})
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.employeeID(w, r)
	if !ok {
		return
	}

	e, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err, "failed to get employee")
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var dto CreateEmployeeDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, err, "invalid request body")
		return
	}

	e, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err, "failed to create employee")
		return
	}

	h.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.employeeID(w, r)
	if !ok {
		return
	}

	var dto UpdateEmployeeDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, err, "invalid request body")
		return
	}

	e, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, err, "failed to update employee")
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.employeeID(w, r)
	if !ok {
		return
	}

	var dto UpdateStatusDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, err, "invalid request body")
		return
	}

	if err := h.Service.SetStatus(r.Context(), id, dto.Status); err != nil {
		h.WriteAppError(w, err, "failed to update employee status")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":     id,
		"status": dto.Status,
	})
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.employeeID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.WriteAppError(w, err, "failed to delete employee")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto accepts a multipart form with the image in the "file" field.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := h.employeeID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		h.WriteAppError(w, internal.NewValidationError("invalid multipart form", internal.ErrCodeInvalidRequest).WithCause(err), "invalid request body")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.WriteAppError(w, internal.NewValidationFieldError("file", "file is required", internal.ErrCodeValidationFailed), "invalid request body")
		return
	}
	defer file.Close()

	e, err := h.Service.UploadPhoto(r.Context(), id, file)
	if err != nil {
		h.WriteAppError(w, err, "failed to upload photo")
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) employeeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.WriteAppError(w, internal.NewValidationError("invalid employee ID", internal.ErrCodeInvalidRequest), "invalid employee ID")
		return 0, false
	}
	return id, true
}
