package entries

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/avicenna-health/avicenna/internal/api"
	"github.com/avicenna-health/avicenna/internal/auth"
	"github.com/avicenna-health/avicenna/internal/users"
)

// Import payloads are whole history dumps; one megabyte is plenty.
const maxImportBytes = 1 << 20

type Handler struct {
	svc      *Service
	userSvc  *users.Service
	validate *validator.Validate
}

func NewHandler(svc *Service, userSvc *users.Service) *Handler {
	return &Handler{svc: svc, userSvc: userSvc, validate: validator.New()}
}

type AddDietaryRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Item     string `json:"item" validate:"max=200"`
	Calories int    `json:"calories" validate:"gte=0"`
	Notes    string `json:"notes"`
	Remarks  string `json:"remarks"`
}

type AddExerciseRequest struct {
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Activity       string `json:"activity" validate:"required,max=100"`
	DurationMin    int    `json:"duration_minutes" validate:"gte=0"`
	CaloriesBurned int    `json:"calories_burned" validate:"gte=0"`
	Remarks        string `json:"remarks"`
}

type AddWeightRequest struct {
	Date     string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	WeightKg float64 `json:"weight_kg" validate:"required,gt=0,lt=1000"`
	Notes    string  `json:"notes"`
}

func (h *Handler) AddDietary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req AddDietaryRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, _ := time.Parse(dateLayout, req.Date)

	entry := &DietaryEntry{
		UserID:   userID,
		Date:     date,
		Item:     req.Item,
		Calories: req.Calories,
		Notes:    req.Notes,
		Remarks:  req.Remarks,
	}
	if err := h.svc.AddDietary(r.Context(), entry); err != nil {
		slog.Error("adding dietary entry", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	api.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) AddExercise(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req AddExerciseRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, _ := time.Parse(dateLayout, req.Date)

	entry := &ExerciseEntry{
		UserID:         userID,
		Date:           date,
		Activity:       req.Activity,
		DurationMin:    req.DurationMin,
		CaloriesBurned: req.CaloriesBurned,
		Remarks:        req.Remarks,
	}
	if err := h.svc.AddExercise(r.Context(), entry); err != nil {
		slog.Error("adding exercise entry", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	api.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) AddWeight(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var req AddWeightRequest
	if !h.decode(w, r, &req) {
		return
	}

	// Weight defaults to today when no date is given.
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		date, _ = time.Parse(dateLayout, req.Date)
	}

	entry := &WeightEntry{
		UserID:   userID,
		Date:     date,
		WeightKg: req.WeightKg,
		Notes:    req.Notes,
	}
	if err := h.svc.AddWeight(r.Context(), entry); err != nil {
		slog.Error("adding weight entry", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	api.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) ListDietary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	list, err := h.svc.RecentDietary(r.Context(), userID)
	if err != nil {
		slog.Error("listing dietary entries", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	api.JSON(w, http.StatusOK, list)
}

func (h *Handler) ListExercise(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	list, err := h.svc.RecentExercise(r.Context(), userID)
	if err != nil {
		slog.Error("listing exercise entries", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	api.JSON(w, http.StatusOK, list)
}

func (h *Handler) ListWeight(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	list, err := h.svc.RecentWeight(r.Context(), userID)
	if err != nil {
		slog.Error("listing weight entries", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	api.JSON(w, http.StatusOK, list)
}

func (h *Handler) DeleteDietary(w http.ResponseWriter, r *http.Request) {
	h.deleteEntry(w, r, h.svc.DeleteDietary)
}

func (h *Handler) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	h.deleteEntry(w, r, h.svc.DeleteExercise)
}

func (h *Handler) DeleteWeight(w http.ResponseWriter, r *http.Request) {
	h.deleteEntry(w, r, h.svc.DeleteWeight)
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, userID uuid.UUID, id int64) (bool, error)) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	deleted, err := del(r.Context(), userID, id)
	if err != nil {
		slog.Error("deleting entry", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if !deleted {
		api.HandleError(w, api.ErrNotFound)
		return
	}
	api.JSONMessage(w, http.StatusOK, "entry deleted")
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if len(payload) == 0 {
		api.HandleError(w, api.NewBadRequestError("no JSON data provided"))
		return
	}

	result, err := h.svc.Import(r.Context(), userID, payload)
	if err != nil {
		if errors.Is(err, ErrImportNotArray) {
			api.HandleError(w, api.NewBadRequestError(err.Error()))
			return
		}
		slog.Error("importing entries", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	api.JSON(w, http.StatusOK, result)
}

// GetRecap serves one date's recap. With ?partner=true the recap covers the
// linked partner's data; a missing link yields a generic unauthorized.
func (h *Handler) GetRecap(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	date, err := time.Parse(dateLayout, chi.URLParam(r, "date"))
	if err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	targetID := userID
	if r.URL.Query().Get("partner") == "true" {
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
		targetID = partnerID
	}

	recap, err := h.svc.Recap(r.Context(), targetID, date)
	if err != nil {
		slog.Error("building daily recap", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	api.JSON(w, http.StatusOK, recap)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return false
	}
	return true
}

func requestUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}
