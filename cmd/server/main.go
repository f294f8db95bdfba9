// @title           Resume Forge API
// @version         1.0
// @description     AI-assisted resume analysis, enhancement and job matching.
// @host            localhost:8080
// @schemes         http https
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"resume-forge/internal/api"
	"resume-forge/internal/config"
	"resume-forge/internal/database"
	"resume-forge/internal/extract"
	"resume-forge/internal/generation"
	"resume-forge/internal/metrics"
	"resume-forge/internal/provider"
	"resume-forge/internal/quota"
	"resume-forge/internal/storage"
	"resume-forge/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	_ "resume-forge/docs"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	dbpool, err := pgxpool.New(context.Background(), cfg.DB.Source)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(context.Background()); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(cfg.DB.Source); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database ready")

	localStorage, err := storage.NewLocalStorage(cfg.Storage.Path)
	if err != nil {
		slog.Error("failed to initialize local storage", "error", err)
		os.Exit(1)
	}
	slog.Info("storing uploads", "path", cfg.Storage.Path)

	wsHub := websocket.NewHub()
	go wsHub.Run()

	store := database.NewStore(dbpool)
	collector := metrics.NewCollector(prometheus.DefaultRegisterer)

	var generationProvider provider.GenerationProvider
	if cfg.Provider.APIKey == "" {
		slog.Warn("no provider API key configured, using deterministic fallback generation")
		generationProvider = provider.NewFallbackProvider()
	} else {
		generationProvider = provider.NewGeminiClient(cfg.Provider.Endpoint, cfg.Provider.APIKey, cfg.Provider.Model)
	}

	generationSvc := generation.NewService(store, generationProvider, wsHub, collector)
	quotaGate := quota.NewGate(store)
	extractor := extract.New()

	server := api.NewServer(cfg, store, localStorage, extractor, generationSvc, quotaGate, wsHub, collector)

	authLimiter := api.NewRateLimiter(rate.Every(time.Second), 10)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(server.MetricsMiddleware)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	r.Get("/ws", server.ServeWsHandler)
	r.Get("/health", server.HealthCheckHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(server.RateLimitMiddleware(authLimiter))
		r.Post("/register", server.RegisterHandler)
		r.Post("/login", server.LoginHandler)
		r.Post("/refresh", server.RefreshTokenHandler)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(server.AuthMiddleware)

		r.Get("/me", server.GetCurrentUserHandler)
		r.Patch("/me", server.UpdateProfileHandler)
		r.Put("/me/password", server.ChangePasswordHandler)
		r.Get("/me/usage", server.GetUsageHandler)

		r.Post("/resumes", server.UploadResumeHandler)
		r.Get("/resumes", server.ListResumesHandler)
		r.Get("/resumes/{resumeId}", server.GetResumeHandler)
		r.Patch("/resumes/{resumeId}", server.UpdateResumeHandler)
		r.Delete("/resumes/{resumeId}", server.DeleteResumeHandler)
		r.Get("/resumes/{resumeId}/download", server.DownloadResumeHandler)
		r.Get("/resumes/{resumeId}/history", server.GetResumeHistoryHandler)

		r.Post("/resumes/{resumeId}/analyze", server.AnalyzeResumeHandler)
		r.Post("/resumes/{resumeId}/enhance", server.EnhanceResumeHandler)
		r.Post("/resumes/{resumeId}/match", server.MatchResumeHandler)

		r.Get("/events", server.GetEventsHandler)
	})

	slog.Info("starting server", "addr", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, r); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
