package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tendant/simple-media/pkg/simplemedia"
	"github.com/tendant/simple-media/pkg/simplemedia/api"
	"github.com/tendant/simple-media/pkg/simplemedia/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(config.WithDotEnv(), config.WithEnv())
	if err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}

	svc, cleanup, err := cfg.BuildService(context.Background(),
		simplemedia.WithLogger(logger),
		simplemedia.WithMetrics(simplemedia.NewMetrics(prometheus.DefaultRegisterer)),
	)
	if err != nil {
		log.Fatalf("Failed to build service: %v", err)
	}
	defer cleanup()

	secret := cfg.JWTSecret
	if secret == "" {
		secret = "dev-secret"
		logger.Warn("JWT_SECRET not set, using an insecure development secret")
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: routes(cfg, svc, logger, api.NewHS256(secret)),
	}

	go func() {
		logger.Info("Simple Media Server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"database", cfg.DatabaseType,
			"storage", cfg.Storage.Type)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return
	}

	logger.Info("Server exiting")
}

func routes(cfg *config.ServerConfig, svc simplemedia.Service, logger *slog.Logger, auth *jwtauth.JWTAuth) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{
			"status":      "healthy",
			"environment": cfg.Environment,
			"storage":     cfg.Storage.Type,
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Local development: serve filesystem media under its public prefix.
	if cfg.Storage.Type == config.StorageFS {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.Storage.BaseDir))))
	}

	handler := api.NewHandler(svc, api.WithHandlerLogger(logger))
	r.Mount("/api/v1", handler.Routes(auth))

	return r
}
