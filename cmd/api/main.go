package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/avicenna-health/avicenna/internal/aiusage"
	"github.com/avicenna-health/avicenna/internal/api"
	"github.com/avicenna-health/avicenna/internal/auth"
	"github.com/avicenna-health/avicenna/internal/calories"
	"github.com/avicenna-health/avicenna/internal/config"
	"github.com/avicenna-health/avicenna/internal/dashboard"
	"github.com/avicenna-health/avicenna/internal/database"
	"github.com/avicenna-health/avicenna/internal/entries"
	"github.com/avicenna-health/avicenna/internal/foodlog"
	"github.com/avicenna-health/avicenna/internal/middleware"
	iredis "github.com/avicenna-health/avicenna/internal/redis"
	"github.com/avicenna-health/avicenna/internal/server"
	"github.com/avicenna-health/avicenna/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Migrations
	if err := database.RunMigrations(cfg.DB.DSN(), "migrations"); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Auth
	jwtManager := auth.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authSvc := auth.NewService(jwtManager, redisClient)

	// Users
	userRepo := users.NewRepository(pool)
	userSvc := users.NewService(userRepo)
	userHandler := users.NewHandler(userSvc)
	authHandler := auth.NewHandler(authSvc, accountStore{userSvc})

	// Entries
	entryRepo := entries.NewRepository(pool)
	entrySvc := entries.NewService(entryRepo)
	entryHandler := entries.NewHandler(entrySvc, userSvc)

	// Dashboard
	dashRepo := dashboard.NewRepository(pool)
	dashSvc := dashboard.NewService(dashRepo)
	dashHandler := dashboard.NewHandler(dashSvc, userSvc, entrySvc)

	// Calorie goals
	calSvc := calories.NewService(userSvc, entrySvc)
	calHandler := calories.NewHandler(calSvc)

	// AI food logging
	usageRepo := aiusage.NewRepository(pool)
	usageSvc, err := aiusage.NewService(usageRepo, cfg.Quota)
	if err != nil {
		slog.Error("building usage ledger", "error", err)
		os.Exit(1)
	}
	aiClient := foodlog.NewClient(cfg.AI)
	foodlogSvc := foodlog.NewService(aiClient, usageSvc, userSvc, calSvc, entrySvc)
	foodlogHandler := foodlog.NewHandler(foodlogSvc, cfg.AI)

	// Login endpoints get a per-IP limiter on top of the AI quota system.
	authLimiter := middleware.NewRateLimiter(redisClient, 10, 60)

	// Router
	router := api.NewRouter(pool, redisClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthRateLimiter:    authLimiter.Middleware,
	}, api.HandlerSet{
		Register: authHandler.Register,
		Login:    authHandler.Login,
		Refresh:  authHandler.Refresh,
		Logout:   authHandler.Logout,

		GetMe:         userHandler.GetMe,
		UpdateProfile: userHandler.UpdateProfile,
		SetPartner:    userHandler.SetPartner,

		AddDietary:     entryHandler.AddDietary,
		ListDietary:    entryHandler.ListDietary,
		DeleteDietary:  entryHandler.DeleteDietary,
		AddExercise:    entryHandler.AddExercise,
		ListExercise:   entryHandler.ListExercise,
		DeleteExercise: entryHandler.DeleteExercise,
		AddWeight:      entryHandler.AddWeight,
		ListWeight:     entryHandler.ListWeight,
		DeleteWeight:   entryHandler.DeleteWeight,
		Import:         entryHandler.Import,
		GetRecap:       entryHandler.GetRecap,

		GetDashboard:        dashHandler.GetDashboard,
		GetPartnerDashboard: dashHandler.GetPartnerDashboard,

		GetCalorieStatus: calHandler.GetStatus,

		AIParse:    foodlogHandler.Parse,
		AISave:     foodlogHandler.Save,
		AIGetQuota: foodlogHandler.GetQuota,

		AuthMiddleware: auth.Middleware(authSvc),
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// accountStore adapts the users service to the auth package's store interface.
type accountStore struct {
	svc *users.Service
}

func (s accountStore) Create(ctx context.Context, email, passwordHash string) (*auth.Account, error) {
	user, err := s.svc.Create(ctx, email, passwordHash)
	if err != nil {
		return nil, err
	}
	return &auth.Account{ID: user.ID, Email: user.Email, PasswordHash: user.PasswordHash}, nil
}

func (s accountStore) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	user, err := s.svc.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, err
	}
	return &auth.Account{ID: user.ID, Email: user.Email, PasswordHash: user.PasswordHash}, nil
}

func (s accountStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.svc.ExistsByEmail(ctx, email)
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
