package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zaiddev/gulf-price-tracker/internal/browser"
	"github.com/zaiddev/gulf-price-tracker/internal/config"
	"github.com/zaiddev/gulf-price-tracker/internal/database"
	"github.com/zaiddev/gulf-price-tracker/internal/models"
	"github.com/zaiddev/gulf-price-tracker/internal/parser"
	"github.com/zaiddev/gulf-price-tracker/internal/ratelimit"
	"github.com/zaiddev/gulf-price-tracker/internal/scraper"
	"github.com/zaiddev/gulf-price-tracker/internal/storage"
)

func main() {
	var (
		market   = flag.String("market", scraper.DefaultMarket, "Market to scrape (Saudi Arabia, UAE, Egypt)")
		query    = flag.String("query", "", "Product to search for (e.g. laptop)")
		output   = flag.String("output", "", "CSV output path (default: <output-dir>/results_<timestamp>.csv)")
		headless = flag.Bool("headless", true, "Run browser in headless mode")
		persist  = flag.Bool("persist", false, "Also store listings in Postgres")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if *query == "" {
		fmt.Println("No product query given. Use -query to specify what to search for.")
		flag.Usage()
		os.Exit(1)
	}
	if !scraper.KnownMarket(*market) {
		logger.Warn("unknown market, using default", "market", *market, "default", scraper.DefaultMarket)
		*market = scraper.DefaultMarket
	}

	logger.Info("starting price tracker", "market", *market, "query", *query)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	browserOpts := &browser.Options{
		Headless:       *headless && cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
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

	prices := parser.NewPriceParser(cfg.Scraper.PriceScanLines)
	limiter := ratelimit.NewAdaptiveRateLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax)

	scrapers := []scraper.PlatformScraper{
		scraper.NewAmazonScraper(b, prices, limiter, cfg.Scraper.MaxRetries, logger),
		scraper.NewNoonScraper(b, prices, limiter, cfg.Scraper.NoonRenderWait, cfg.Scraper.MaxRetries, logger),
	}

	listings := scraper.ScrapeAll(ctx, scrapers, *market, *query, logger)

	logger.Info("scrape finished", "total_listings", len(listings))
	if len(listings) == 0 {
		logger.Warn("no results to save")
		return
	}

	preview(logger, listings)

	path := *output
	if path == "" {
		path = storage.TimestampedPath(cfg.Output.Dir, time.Now())
	}
	if err := writeCSV(path, listings); err != nil {
		logger.Error("failed to save results", "error", err)
		os.Exit(1)
	}
	logger.Info("results saved", "path", path)

	if *persist {
		if err := persistListings(ctx, cfg, listings); err != nil {
			logger.Error("failed to persist listings", "error", err)
			os.Exit(1)
		}
		logger.Info("listings persisted", "count", len(listings))
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func preview(logger *slog.Logger, listings []*models.Listing) {
	n := len(listings)
	if n > 5 {
		n = 5
	}
	for i := 0; i < n; i++ {
		l := listings[i]
		logger.Info("result",
			"rank", i+1,
			"platform", l.Platform,
			"product", l.Title,
			"price_current", models.FormatOptionalInt(l.Price.Current),
			"price_original", models.FormatOptionalInt(l.Price.Original),
			"discount_percent", models.FormatOptionalInt(l.Price.DiscountPercent),
		)
	}
}

func writeCSV(path string, listings []*models.Listing) error {
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	if err := w.Write(listings); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func persistListings(ctx context.Context, cfg *config.Config, listings []*models.Listing) error {
	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	repo := database.NewListingRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	return repo.InsertBatch(ctx, listings)
}
