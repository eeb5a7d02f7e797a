package foodlog

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avicenna-health/avicenna/internal/aiusage"
	"github.com/avicenna-health/avicenna/internal/api"
	"github.com/avicenna-health/avicenna/internal/auth"
	"github.com/avicenna-health/avicenna/internal/config"
)

// Uploaded food photos are capped well under the model's input limits.
const maxImageBytes = 10 << 20

type Handler struct {
	svc       *Service
	aiEnabled bool
}

func NewHandler(svc *Service, cfg config.AIConfig) *Handler {
	return &Handler{svc: svc, aiEnabled: cfg.APIKey != ""}
}

type ParseTextRequest struct {
	Text string `json:"text"`
}

type quotaExceededResponse struct {
	Error     string               `json:"error"`
	RateLimit bool                 `json:"rate_limit"`
	Remaining aiusage.WindowCounts `json:"remaining"`
}

// Parse accepts either a JSON body with a text description or a multipart
// form with an "image" file and optional "context" field.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}
	if !h.aiEnabled {
		api.HandleError(w, api.ErrAIUnavailable)
		return
	}

	var result *ParseResult
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		result, err = h.parseImage(r, userID)
	} else {
		result, err = h.parseText(r, userID)
	}

	if err != nil {
		h.handleParseError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, result)
}

func (h *Handler) parseText(r *http.Request, userID uuid.UUID) (*ParseResult, error) {
	var req ParseTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, api.ErrBadRequest
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, api.NewBadRequestError("no text provided")
	}
	return h.svc.ParseText(r.Context(), userID, req.Text, time.Now())
}

func (h *Handler) parseImage(r *http.Request, userID uuid.UUID) (*ParseResult, error) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return nil, api.ErrBadRequest
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, api.NewBadRequestError("no image provided")
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		return nil, api.ErrBadRequest
	}

	contentType := header.Header.Get("Content-Type")
	imageContext := r.FormValue("context")
	return h.svc.ParseImage(r.Context(), userID, image, contentType, imageContext, time.Now())
}

func (h *Handler) handleParseError(w http.ResponseWriter, err error) {
	var quotaErr *QuotaExceededError
	if errors.As(err, &quotaErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(quotaExceededResponse{
			Error:     quotaErr.Decision.Message,
			RateLimit: true,
			Remaining: quotaErr.Decision.Remaining,
		})
		return
	}
	if errors.Is(err, ErrUnsupportedImageType) {
		api.HandleError(w, api.NewBadRequestError(err.Error()))
		return
	}
	var appErr *api.AppError
	if errors.As(err, &appErr) {
		api.HandleError(w, appErr)
		return
	}
	slog.Error("AI food parse failed", "error", err)
	api.HandleError(w, api.ErrInternalServer)
}

// Save persists a parse result the user confirmed in the UI.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	var result ParseResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if len(result.Dietary) == 0 && len(result.Exercise) == 0 {
		api.HandleError(w, api.NewBadRequestError("nothing to save"))
		return
	}

	saved, err := h.svc.Save(r.Context(), userID, &result, time.Now())
	if err != nil {
		slog.Error("saving AI food log", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	api.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) GetQuota(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUserID(w, r)
	if !ok {
		return
	}

	info, err := h.svc.Quota(r.Context(), userID, time.Now())
	if err != nil {
		slog.Error("reading AI quota", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	api.JSON(w, http.StatusOK, info)
}

func requestUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}
