package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/s4yuba/x-card-generator/internal/api"
	"github.com/s4yuba/x-card-generator/internal/assembler"
	"github.com/s4yuba/x-card-generator/internal/batch"
	"github.com/s4yuba/x-card-generator/internal/browser"
	"github.com/s4yuba/x-card-generator/internal/cache"
	"github.com/s4yuba/x-card-generator/internal/compositor"
	"github.com/s4yuba/x-card-generator/internal/config"
	"github.com/s4yuba/x-card-generator/internal/extractor"
	"github.com/s4yuba/x-card-generator/internal/fetcher"
	"github.com/s4yuba/x-card-generator/internal/history"
	"github.com/s4yuba/x-card-generator/internal/ratelimit"
	"github.com/s4yuba/x-card-generator/internal/render"
	"github.com/s4yuba/x-card-generator/internal/validator"
)

func main() {
	// .env is optional; real deployments use the environment.
	godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
	})
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	// Profile cache: redis when configured, in-process otherwise.
	var profileCache cache.ProfileCache
	if cfg.Cache.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		profileCache = cache.NewRedisCache(redisClient, cfg.Cache.TTL, logger)
	} else {
		profileCache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.Capacity)
	}

	// Batch run history needs Postgres; skip when unset.
	var hist *history.Store
	if cfg.Database.URL != "" {
		hist, err = history.New(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer hist.Close()
	}

	asm := assembler.New(extractor.New(logger), assembler.Options{
		Timeout:      cfg.Scraper.PollTimeout,
		PollInterval: cfg.Scraper.PollInterval,
		GracePeriod:  cfg.Scraper.GracePeriod,
	}, logger)

	renderer := render.New(
		fetcher.New(cfg.Scraper.FetchTimeout, logger),
		func(payload string, size int) ([]byte, error) {
			return qrcode.Encode(payload, qrcode.Medium, size)
		},
		logger,
	)

	limiter := ratelimit.NewAdaptiveRateLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)

	var recorder batch.Recorder
	if hist != nil {
		recorder = hist
	}
	orchestrator := batch.New(
		batch.NewBrowserLoader(b),
		asm,
		renderer,
		limiter,
		profileCache,
		recorder,
		batch.Options{
			MaxBatchSize: cfg.Batch.MaxSize,
			Validator:    validator.DefaultOptions(),
		},
		logger,
	)

	handlers := api.NewHandlers(orchestrator, compositor.New(logger), hist, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Run-Id", "X-Skipped-Count"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/cards", handlers.GenerateCard)
		r.Post("/cards/batch", handlers.GenerateBatch)
		r.Get("/runs/{runID}", handlers.GetRun)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
