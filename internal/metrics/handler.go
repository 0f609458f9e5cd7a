package metrics

import (
	"net/http"

	"github.com/frahmantamala/attendance-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Recorder Recorder
}

func NewHandler(baseHandler *transport.BaseHandler, recorder Recorder) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Recorder:    recorder,
	}
}

// GetMetrics handles GET /admin/metrics
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"operations": h.Recorder.Snapshot(),
	})
}
