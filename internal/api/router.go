package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/avicenna-health/avicenna/internal/database"
	mw "github.com/avicenna-health/avicenna/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Auth handlers
	Register http.HandlerFunc
	Login    http.HandlerFunc
	Refresh  http.HandlerFunc
	Logout   http.HandlerFunc

	// Profile handlers
	GetMe         http.HandlerFunc
	UpdateProfile http.HandlerFunc
	SetPartner    http.HandlerFunc

	// Entry handlers
	AddDietary     http.HandlerFunc
	ListDietary    http.HandlerFunc
	DeleteDietary  http.HandlerFunc
	AddExercise    http.HandlerFunc
	ListExercise   http.HandlerFunc
	DeleteExercise http.HandlerFunc
	AddWeight      http.HandlerFunc
	ListWeight     http.HandlerFunc
	DeleteWeight   http.HandlerFunc
	Import         http.HandlerFunc
	GetRecap       http.HandlerFunc

	// Dashboard handlers
	GetDashboard        http.HandlerFunc
	GetPartnerDashboard http.HandlerFunc

	// Calorie goal handler
	GetCalorieStatus http.HandlerFunc

	// AI food logging handlers
	AIParse    http.HandlerFunc
	AISave     http.HandlerFunc
	AIGetQuota http.HandlerFunc

	// Auth middleware
	AuthMiddleware func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AuthRateLimiter    func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, redisClient *redis.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe — always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe — checks DB and Redis
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
			"redis":    "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				health["redis"] = "unhealthy"
				health["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		} else {
			health["redis"] = "not configured"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public) — optionally rate-limited
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthRateLimiter != nil {
				r.Use(cfg.AuthRateLimiter)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Post("/logout", h.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/me", h.GetMe)
			r.Put("/me/profile", h.UpdateProfile)
			r.Put("/me/partner", h.SetPartner)

			r.Route("/entries", func(r chi.Router) {
				r.Route("/dietary", func(r chi.Router) {
					r.Post("/", h.AddDietary)
					r.Get("/", h.ListDietary)
					r.Delete("/{id}", h.DeleteDietary)
				})
				r.Route("/exercise", func(r chi.Router) {
					r.Post("/", h.AddExercise)
					r.Get("/", h.ListExercise)
					r.Delete("/{id}", h.DeleteExercise)
				})
				r.Route("/weight", func(r chi.Router) {
					r.Post("/", h.AddWeight)
					r.Get("/", h.ListWeight)
					r.Delete("/{id}", h.DeleteWeight)
				})
			})

			r.Post("/import", h.Import)
			r.Get("/recap/{date}", h.GetRecap)

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/", h.GetDashboard)
				r.Get("/partner", h.GetPartnerDashboard)
			})

			r.Get("/calories/status", h.GetCalorieStatus)

			r.Route("/ai", func(r chi.Router) {
				r.Post("/parse", h.AIParse)
				r.Post("/save", h.AISave)
				r.Get("/quota", h.AIGetQuota)
			})
		})
	})

	return r
}
