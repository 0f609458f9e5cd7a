package auth

import (
	"net/http"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/frahmantamala/attendance-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, err, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err, "failed to log in")
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Logout revokes the token that authenticated this request.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteAppError(w, ErrInvalidToken, "unauthorized")
		return
	}

	if err := h.Service.Revoke(r.Context(), user.TokenID, user.TokenExpiresAt); err != nil {
		h.WriteAppError(w, err, "failed to log out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteAppError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken), "unauthorized")
			return
		}

		claims, err := h.Service.ValidateAccessToken(r.Context(), token)
		if err != nil {
			h.WriteAppError(w, err, "failed to validate token")
			return
		}

		user, err := h.Service.GetUser(r.Context(), claims)
		if err != nil {
			h.WriteAppError(w, err, "failed to load user")
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		ctx = internal.ContextWithUserID(ctx, user.ID)
		ctx = logger.With(ctx, "userID", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after AuthMiddleware.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || user == nil {
			h.WriteAppError(w, ErrInvalidToken, "unauthorized")
			return
		}
		if !user.IsAdmin {
			h.Logger.Warn("access denied: admin only route", "user_id", user.ID, "path", r.URL.Path)
			h.WriteAppError(w, ErrAdminOnly, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}
