package scraper

import (
	"context"
	"log/slog"

	"github.com/zaiddev/gulf-price-tracker/internal/models"
)

// ScrapeAll runs every platform scraper for the same market and query.
// A platform failure is logged and contributes zero listings; it never
// aborts the run, so one broken storefront does not cost the other's
// results.
func ScrapeAll(ctx context.Context, scrapers []PlatformScraper, market, query string, logger *slog.Logger) []*models.Listing {
	var all []*models.Listing

	for _, s := range scrapers {
		select {
		case <-ctx.Done():
			return all
		default:
		}

		listings, err := s.Scrape(ctx, market, query)
		if err != nil {
			logger.Error("platform scrape failed", "platform", s.Platform(), "error", err)
			continue
		}
		if len(listings) == 0 {
			logger.Warn("no listings found", "platform", s.Platform(), "query", query)
			continue
		}

		logger.Info("platform scrape complete", "platform", s.Platform(), "listings", len(listings))
		all = append(all, listings...)
	}

	return all
}
