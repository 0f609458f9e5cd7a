package timer

import (
	"context"
	"net/http"

	"github.com/frahmantamala/attendance-management/internal/auth"
	"github.com/frahmantamala/attendance-management/internal/transport"
)

type ServiceAPI interface {
	Get(ctx context.Context, userID int64) (*Timer, error)
	Stop(ctx context.Context, userID int64) (*Timer, error)
	Reset(ctx context.Context, userID int64) (*Timer, error)
	Delete(ctx context.Context, userID int64) error
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

func (h *Handler) GetTimer(w http.ResponseWriter, r *http.Request) {
	h.withUser(w, r, "failed to get work timer", h.Service.Get)
}

func (h *Handler) StopTimer(w http.ResponseWriter, r *http.Request) {
	h.withUser(w, r, "failed to stop work timer", h.Service.Stop)
}

func (h *Handler) ResetTimer(w http.ResponseWriter, r *http.Request) {
	h.withUser(w, r, "failed to reset work timer", h.Service.Reset)
}

func (h *Handler) DeleteTimer(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteAppError(w, auth.ErrInvalidToken, "unauthorized")
		return
	}

	if err := h.Service.Delete(r.Context(), user.ID); err != nil {
		h.WriteAppError(w, err, "failed to delete work timer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) withUser(w http.ResponseWriter, r *http.Request, fallback string, op func(context.Context, int64) (*Timer, error)) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteAppError(w, auth.ErrInvalidToken, "unauthorized")
		return
	}

	t, err := op(r.Context(), user.ID)
	if err != nil {
		h.WriteAppError(w, err, fallback)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}
