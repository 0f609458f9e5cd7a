package attendance

import (
	"context"
	"net/http"

	"github.com/frahmantamala/attendance-management/internal/auth"
	"github.com/frahmantamala/attendance-management/internal/transport"
)

type ServiceAPI interface {
	Today(ctx context.Context, userID int64) (*TodayStatus, error)
	ListByDate(ctx context.Context, date string) ([]*Record, error)
	TodayStats(ctx context.Context) (*TodayStats, error)
	DepartmentStats(ctx context.Context) ([]DepartmentStats, error)
	MonthlySummary(ctx context.Context, userID int64, month string) (*MonthlySummary, error)
	AbsenceReasons(ctx context.Context) ([]AbsenceReason, error)
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

func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteAppError(w, auth.ErrInvalidToken, "unauthorized")
		return
	}

	status, err := h.Service.Today(r.Context(), user.ID)
	if err != nil {
		h.WriteAppError(w, err, "failed to check today's attendance")
		return
	}

	h.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) GetMySummary(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteAppError(w, auth.ErrInvalidToken, "unauthorized")
		return
	}

	summary, err := h.Service.MonthlySummary(r.Context(), user.ID, r.URL.Query().Get("month"))
	if err != nil {
		h.WriteAppError(w, err, "failed to get monthly summary")
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.ListByDate(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.WriteAppError(w, err, "failed to list attendance")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"total":   len(records),
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.TodayStats(r.Context())
	if err != nil {
		h.WriteAppError(w, err, "failed to get attendance stats")
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) GetDepartmentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.DepartmentStats(r.Context())
	if err != nil {
		h.WriteAppError(w, err, "failed to get department stats")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"departments": stats,
	})
}

func (h *Handler) GetAbsenceReasons(w http.ResponseWriter, r *http.Request) {
	reasons, err := h.Service.AbsenceReasons(r.Context())
	if err != nil {
		h.WriteAppError(w, err, "failed to get absence reasons")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reasons": reasons,
	})
}
