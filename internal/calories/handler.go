package calories

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/avicenna-health/avicenna/internal/api"
	"github.com/avicenna-health/avicenna/internal/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type StatusResponse struct {
	Available bool    `json:"available"`
	Status    *Status `json:"status,omitempty"`
}

// GetStatus serves today's calorie status. An incomplete calorie profile or a
// missing weight entry yields available=false rather than an error.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	status, err := h.svc.DailyStatus(r.Context(), userID, time.Now())
	if err != nil {
		slog.Error("computing calorie status", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, StatusResponse{
		Available: status != nil,
		Status:    status,
	})
}
