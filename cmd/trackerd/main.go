package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/zaiddev/gulf-price-tracker/internal/api"
	"github.com/zaiddev/gulf-price-tracker/internal/browser"
	"github.com/zaiddev/gulf-price-tracker/internal/config"
	"github.com/zaiddev/gulf-price-tracker/internal/database"
	"github.com/zaiddev/gulf-price-tracker/internal/events"
	"github.com/zaiddev/gulf-price-tracker/internal/jobs"
	"github.com/zaiddev/gulf-price-tracker/internal/parser"
	"github.com/zaiddev/gulf-price-tracker/internal/queue"
	"github.com/zaiddev/gulf-price-tracker/internal/ratelimit"
	"github.com/zaiddev/gulf-price-tracker/internal/scraper"
)

func main() {
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
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	listingRepo := database.NewListingRepository(db)
	if err := listingRepo.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	jobRepo := database.NewJobRepository(db)

	browserOpts := &browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      browser.DefaultOptions().UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
		ExtraHeaders:   browser.DefaultOptions().ExtraHeaders,
	}
	if len(cfg.Scraper.UserAgents) > 0 {
		browserOpts.UserAgent = cfg.Scraper.UserAgents[0]
	}

	b, err := browser.New(browserOpts)
	if err != nil {
		logger.Error("failed to initialize browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	var publisher *events.Publisher
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Listing events are a convenience, not a requirement; the API
		// keeps working off Postgres alone.
		logger.Warn("redis unavailable, listing events disabled", "error", err)
	} else {
		publisher = events.NewPublisher(redisClient, cfg.Redis.Stream, logger)
	}

	prices := parser.NewPriceParser(cfg.Scraper.PriceScanLines)
	limiter := ratelimit.NewAdaptiveRateLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)

	scrapers := []scraper.PlatformScraper{
		scraper.NewAmazonScraper(b, prices, limiter, cfg.Scraper.MaxRetries, logger),
		scraper.NewNoonScraper(b, prices, limiter, cfg.Scraper.NoonRenderWait, cfg.Scraper.MaxRetries, logger),
	}

	taskQueue := queue.NewInMemoryQueue()
	defer taskQueue.Close()

	manager := jobs.NewManager(jobRepo, listingRepo, taskQueue, scrapers, publisher, logger)
	go manager.StartWorker(ctx)

	handlers := api.NewHandlers(manager, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	handlers.Routes(r)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	cancel()

	logger.Info("trackerd stopped")
}
