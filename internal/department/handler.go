package department

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Department, error)
	Create(ctx context.Context, dto CreateDepartmentDTO) (*Department, error)
	Update(ctx context.Context, id int64, dto UpdateDepartmentDTO) (*Department, error)
	Delete(ctx context.Context, id int64) error
	Analytics(ctx context.Context) (*Analytics, error)
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

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Service.List(r.Context())
	if err != nil {
		h.WriteAppError(w, err, "failed to get departments")
		return
	}

	h.WriteJSON(w, http.StatusOK, DepartmentsResponse{
		Departments: departments,
		Total:       len(departments),
	})
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var dto CreateDepartmentDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, err, "invalid request body")
		return
	}

	d, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err, "failed to create department")
		return
	}

	h.WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.departmentID(w, r)
	if !ok {
		return
	}

	var dto UpdateDepartmentDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, err, "invalid request body")
		return
	}

	d, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, err, "failed to update department")
		return
	}

	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.departmentID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.WriteAppError(w, err, "failed to delete department")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.Service.Analytics(r.Context())
	if err != nil {
		h.WriteAppError(w, err, "failed to get department analytics")
		return
	}

	h.WriteJSON(w, http.StatusOK, analytics)
}

func (h *Handler) departmentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteAppError(w, internal.NewValidationError("invalid department ID", internal.ErrCodeInvalidRequest), "invalid department ID")
		return 0, false
	}
	return id, true
}
