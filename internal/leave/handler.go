package leave

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/auth"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Submit(ctx context.Context, employeeID int64, employeeName string, dto SubmitLeaveDTO) (*Request, error)
	ListAll(ctx context.Context) ([]*Request, error)
	ListMine(ctx context.Context, employeeID int64) ([]*Request, error)
	UpdateStatus(ctx context.Context, id string, approverID int64, dto UpdateLeaveStatusDTO) (*Request, error)
	Delete(ctx context.Context, id string) error
	TotalDaysTaken(ctx context.Context, employeeID int64) (int, error)
	Sweep(ctx context.Context) (SweepResult, error)
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

func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteAppError(w, auth.ErrInvalidToken, "unauthorized")
		return
	}

	var dto SubmitLeaveDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, err, "invalid request body")
		return
	}

	req, err := h.Service.Submit(r.Context(), user.ID, user.Name, dto)
	if err != nil {
		h.WriteAppError(w, err, "failed to submit leave request")
		return
	}

	h.WriteJSON(w, http.StatusCreated, req)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteAppError(w, auth.ErrInvalidToken, "unauthorized")
		return
	}

	reqs, err := h.Service.ListMine(r.Context(), user.ID)
	if err != nil {
		h.WriteAppError(w, err, "failed to list leave requests")
		return
	}

	h.WriteJSON(w, http.StatusOK, LeaveRequestsResponse{LeaveRequests: reqs, Total: len(reqs)})
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Service.ListAll(r.Context())
	if err != nil {
		h.WriteAppError(w, err, "failed to list leave requests")
		return
	}

	h.WriteJSON(w, http.StatusOK, LeaveRequestsResponse{LeaveRequests: reqs, Total: len(reqs)})
}

// GetLeaveDays is open to the employee themselves and to the admin.
func (h *Handler) GetLeaveDays(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteAppError(w, auth.ErrInvalidToken, "unauthorized")
		return
	}

	employeeID, err := strconv.ParseInt(chi.URLParam(r, "employeeID"), 10, 64)
	if err != nil || employeeID <= 0 {
		h.WriteAppError(w, internal.NewValidationError("invalid employee id", internal.ErrCodeInvalidRequest), "invalid employee id")
		return
	}
	if employeeID != user.ID && !user.IsAdmin {
		h.WriteAppError(w, ErrLeaveForbidden, "forbidden")
		return
	}

	total, err := h.Service.TotalDaysTaken(r.Context(), employeeID)
	if err != nil {
		h.WriteAppError(w, err, "failed to get leave days")
		return
	}

	h.WriteJSON(w, http.StatusOK, LeaveDaysResponse{EmployeeID: employeeID, TotalLeaveDays: total})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteAppError(w, auth.ErrInvalidToken, "unauthorized")
		return
	}

	var dto UpdateLeaveStatusDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, err, "invalid request body")
		return
	}

	req, err := h.Service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), user.ID, dto)
	if err != nil {
		h.WriteAppError(w, err, "failed to update leave request")
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.WriteAppError(w, err, "failed to delete leave request")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.Sweep(r.Context())
	if err != nil {
		h.WriteAppError(w, err, "failed to run leave sweep")
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}
