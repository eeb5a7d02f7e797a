package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/avicenna-health/avicenna/internal/api"
	"github.com/avicenna-health/avicenna/internal/auth"
	"github.com/avicenna-health/avicenna/internal/entries"
	"github.com/avicenna-health/avicenna/internal/users"
)

// Self and partner dashboards use different windows: the self view is a short
// recent week with the heatmap reaching forward (planned entries), the partner
// view is a wider look back.
const (
	selfWindowDays    = 7
	partnerWindowDays = 30

	selfMonthsBack       = 0
	selfMonthsForward    = 5
	partnerMonthsBack    = 11
	partnerMonthsForward = 0
)

type Handler struct {
	svc      *Service
	userSvc  *users.Service
	entrySvc *entries.Service
}

func NewHandler(svc *Service, userSvc *users.Service, entrySvc *entries.Service) *Handler {
	return &Handler{svc: svc, userSvc: userSvc, entrySvc: entrySvc}
}

type DashboardResponse struct {
	WindowStart          string         `json:"window_start"`
	WindowEnd            string         `json:"window_end"`
	Charts               *ChartData     `json:"charts"`
	Heatmap              []HeatmapPoint `json:"heatmap"`
	TotalCalories        int            `json:"total_calories"`
	TotalExerciseMinutes int            `json:"total_exercise_minutes"`
	Recent               *RecentEntries `json:"recent"`
}

type RecentEntries struct {
	Dietary  []*entries.DietaryEntry  `json:"dietary"`
	Exercise []*entries.ExerciseEntry `json:"exercise"`
	Weight   []*entries.WeightEntry   `json:"weight"`
}

// GetDashboard serves the authenticated user's own dashboard.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	h.serve(w, r, userID, selfWindowDays, selfMonthsBack, selfMonthsForward)
}

// GetPartnerDashboard serves a read-only dashboard over the linked partner's
// data. Users without a partner link get the same generic unauthorized as an
// unauthenticated request; the response never reveals whether a link exists.
func (h *Handler) GetPartnerDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	partnerID, err := h.userSvc.PartnerID(r.Context(), userID)
	if err != nil {
		slog.Error("resolving partner link", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if partnerID == uuid.Nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	h.serve(w, r, partnerID, partnerWindowDays, partnerMonthsBack, partnerMonthsForward)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID, days, monthsBack, monthsForward int) {
	ctx := r.Context()
	today := time.Now()

	start, end, err := h.svc.AnchorWindow(ctx, userID, days, today)
	if err != nil {
		slog.Error("computing dashboard window", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	charts, err := h.svc.ChartSeries(ctx, userID, start, end)
	if err != nil {
		slog.Error("aggregating chart series", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	heatmap, err := h.svc.Heatmap(ctx, userID, monthsBack, monthsForward, today)
	if err != nil {
		slog.Error("aggregating heatmap", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	recent, err := h.recentEntries(ctx, userID)
	if err != nil {
		slog.Error("listing recent entries", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, DashboardResponse{
		WindowStart:          start.Format(dateLayout),
		WindowEnd:            end.Format(dateLayout),
		Charts:               charts,
		Heatmap:              heatmap,
		TotalCalories:        charts.TotalCalories(),
		TotalExerciseMinutes: charts.TotalExerciseMinutes(),
		Recent:               recent,
	})
}

func (h *Handler) recentEntries(ctx context.Context, userID uuid.UUID) (*RecentEntries, error) {
	dietary, err := h.entrySvc.RecentDietary(ctx, userID)
	if err != nil {
		return nil, err
	}
	exercise, err := h.entrySvc.RecentExercise(ctx, userID)
	if err != nil {
		return nil, err
	}
	weight, err := h.entrySvc.RecentWeight(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &RecentEntries{Dietary: dietary, Exercise: exercise, Weight: weight}, nil
}

func requestUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}
