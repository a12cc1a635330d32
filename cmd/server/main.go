package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"cogniplay/internal/config"
	"cogniplay/internal/database"
	"cogniplay/internal/handlers"
	"cogniplay/internal/localstore"
	"cogniplay/internal/repository"
	"cogniplay/internal/security"
	"cogniplay/internal/service"
	"cogniplay/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET must be set")
	}

	store, sessions, closeStore, err := openStorage(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer closeStore()

	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	limiter := security.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, logger)
	if err != nil {
		logger.Fatal("failed to create email service", zap.Error(err))
	}

	authService := service.NewAuthService(store, tokens, sessions, emailService, logger)
	progressService := service.NewProgressService(store)
	leaderboardService := service.NewLeaderboardService(store)

	middleware := handlers.NewMiddleware(authService, limiter, logger)
	authHandler := handlers.NewAuthHandler(authService, handlers.AuthHandlerConfig{
		GoogleClientID:       cfg.GoogleClientID,
		GoogleClientSecret:   cfg.GoogleClientSecret,
		FacebookClientID:     cfg.FacebookClientID,
		FacebookClientSecret: cfg.FacebookClientSecret,
		OAuthBaseURL:         cfg.OAuthBaseURL,
		AppBaseURL:           cfg.AppBaseURL,
	}, logger)
	progressHandler := handlers.NewProgressHandler(progressService, logger)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService, logger)
	gamesHandler := handlers.NewGamesHandler(progressService, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true,"message":"ok"}`)
	})

	// Identity
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))
	mux.HandleFunc("PUT /api/auth/profile", middleware.RequireAuth(authHandler.UpdateProfile))
	mux.HandleFunc("GET /api/auth/providers", authHandler.Providers)
	mux.HandleFunc("GET /api/auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /api/auth/{provider}/callback", authHandler.OAuthCallback)

	// Game catalog
	mux.HandleFunc("GET /api/games", gamesHandler.Catalog)
	mux.HandleFunc("GET /api/games/recommended", middleware.RequireAuth(gamesHandler.Recommended))
	mux.HandleFunc("GET /api/games/{id}", gamesHandler.Game)

	// Progress
	mux.HandleFunc("GET /api/progress", middleware.RequireAuth(progressHandler.Progress))
	mux.HandleFunc("POST /api/progress/sessions", middleware.RequireAuth(progressHandler.SubmitSession))
	mux.HandleFunc("GET /api/progress/stats", middleware.RequireAuth(progressHandler.Stats))
	mux.HandleFunc("GET /api/progress/stats/{gameType}", middleware.RequireAuth(progressHandler.StatsFor))
	mux.HandleFunc("GET /api/progress/achievements", middleware.RequireAuth(progressHandler.Achievements))
	mux.HandleFunc("DELETE /api/progress/reset", middleware.RequireAuth(progressHandler.Reset))

	// Accessibility settings
	mux.HandleFunc("GET /api/progress/accessibility", middleware.RequireAuth(progressHandler.Settings))
	mux.HandleFunc("PUT /api/progress/accessibility", middleware.RequireAuth(progressHandler.UpdateSettings))

	// Leaderboard
	mux.HandleFunc("GET /api/leaderboard", leaderboardHandler.Leaderboard)
	mux.HandleFunc("GET /api/leaderboard/me", middleware.RequireAuth(leaderboardHandler.Rank))

	handler := middleware.Logging(handlers.CORS(cfg.CORSOrigin, mux))

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

// openStorage builds the configured storage backend. The SQL backend runs
// its migrations on startup; the local backend keeps one JSON blob per key
// under the data directory.
func openStorage(cfg *config.Config, logger *zap.Logger) (storage.Backend, service.SessionPointer, func() error, error) {
	switch strings.ToLower(cfg.StorageBackend) {
	case "sql", "":
		db, err := database.Open(cfg.DatabaseType, cfg.DatabaseURL, cfg.DatabasePath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		logger.Info("sql storage ready", zap.String("type", cfg.DatabaseType))
		return repository.NewBackend(db), nil, db.Close, nil

	case "local":
		fileStore, err := localstore.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, nil, err
		}
		db := localstore.NewDatabase(fileStore)
		logger.Info("local storage ready", zap.String("dir", cfg.DataDir))
		return db, db, func() error { return nil }, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}
