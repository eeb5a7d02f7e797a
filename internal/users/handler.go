package users

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/avicenna-health/avicenna/internal/api"
	"github.com/avicenna-health/avicenna/internal/auth"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

type MeResponse struct {
	ID      string   `json:"id"`
	Email   string   `json:"email"`
	Profile *Profile `json:"profile"`
}

type UpdateProfileRequest struct {
	DisplayName   string   `json:"display_name" validate:"max=100"`
	Gender        string   `json:"gender" validate:"omitempty,oneof=male female"`
	BirthDate     string   `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	HeightCm      *float64 `json:"height_cm" validate:"omitempty,gt=0,lt=300"`
	ActivityLevel string   `json:"activity_level" validate:"omitempty,oneof=sedentary light moderate active extra"`
	FitnessGoal   string   `json:"fitness_goal" validate:"omitempty,oneof=lose gain maintain"`
}

type SetPartnerRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	user, err := h.svc.GetByID(r.Context(), userID)
	if err != nil {
		slog.Error("getting user", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if user == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}

	profile, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		slog.Error("getting profile", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, MeResponse{
		ID:      user.ID.String(),
		Email:   user.Email,
		Profile: profile,
	})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	profile, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		slog.Error("getting profile", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if profile == nil {
		api.HandleError(w, api.ErrNotFound)
		return
	}

	profile.DisplayName = req.DisplayName
	profile.Gender = req.Gender
	profile.HeightCm = req.HeightCm
	profile.ActivityLevel = req.ActivityLevel
	profile.FitnessGoal = req.FitnessGoal
	profile.BirthDate = nil
	if req.BirthDate != "" {
		birthDate, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			api.HandleError(w, api.ErrBadRequest)
			return
		}
		profile.BirthDate = &birthDate
	}

	if err := h.svc.UpdateProfile(r.Context(), profile); err != nil {
		slog.Error("updating profile", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, profile)
}

func (h *Handler) SetPartner(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req SetPartnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	if err := h.svc.SetPartnerByEmail(r.Context(), userID, req.Email); err != nil {
		if errors.Is(err, ErrPartnerNotFound) {
			api.HandleError(w, api.ErrNotFound)
			return
		}
		slog.Error("setting partner link", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSONMessage(w, http.StatusOK, "partner link updated")
}
