package checkin

import (
	"context"
	"net/http"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/auth"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	OpenSession(ctx context.Context, user *auth.User) (Session, error)
	SubmitFrame(ctx context.Context, user *auth.User, sessionID, frame string) (*FrameResult, error)
	TakeLateNotice(ctx context.Context, userID int64) (*LateNotice, error)
}

type FrameDTO struct {
	Image string `json:"image"`
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

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteAppError(w, auth.ErrInvalidToken, "unauthorized")
		return
	}

	session, err := h.Service.OpenSession(r.Context(), user)
	if err != nil {
		h.WriteAppError(w, err, "failed to open check-in session")
		return
	}

	h.WriteJSON(w, http.StatusCreated, session)
}

func (h *Handler) SubmitFrame(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteAppError(w, auth.ErrInvalidToken, "unauthorized")
		return
	}

	var dto FrameDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, err, "invalid request body")
		return
	}
	if dto.Image == "" {
		h.WriteAppError(w, internal.NewValidationFieldError("image", "image is required", internal.ErrCodeValidationFailed), "invalid request body")
		return
	}

	result, err := h.Service.SubmitFrame(r.Context(), user, chi.URLParam(r, "id"), dto.Image)
	if err != nil {
		h.WriteAppError(w, err, "failed to verify check-in")
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) TakeLateNotice(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteAppError(w, auth.ErrInvalidToken, "unauthorized")
		return
	}

	notice, err := h.Service.TakeLateNotice(r.Context(), user.ID)
	if err != nil {
		h.WriteAppError(w, err, "failed to read late notice")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"late":   notice != nil,
		"notice": notice,
	})
}
