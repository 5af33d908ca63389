package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/zaiddev/gulf-price-tracker/internal/browser"
	"github.com/zaiddev/gulf-price-tracker/internal/models"
	"github.com/zaiddev/gulf-price-tracker/internal/parser"
	"github.com/zaiddev/gulf-price-tracker/internal/ratelimit"
	"github.com/zaiddev/gulf-price-tracker/internal/urlutil"
)

// Noon tags its product grid cells with data-qa attributes, which are
// test hooks and survive redesigns better than class names. The
// alternatives kick in when the primary finds suspiciously few cells.
const noonResultSelector = "div[data-qa='plp-product-box']"

var noonAltSelectors = []string{
	"div[class*='product']",
	"article",
	"div[data-qa*='product']",
}

// minNoonContainers is the threshold below which the primary selector is
// assumed to have missed the grid.
const minNoonContainers = 5

// NoonScraper scrapes Noon search results. Noon renders its grid with
// JavaScript, so the page needs a generous settle time before the HTML
// snapshot is worth reading.
type NoonScraper struct {
	browser    *browser.Browser
	extractor  *parser.Extractor
	prices     *parser.PriceParser
	limiter    ratelimit.RateLimiter
	retries    int
	logger     *slog.Logger
	renderWait time.Duration
}

func NewNoonScraper(b *browser.Browser, prices *parser.PriceParser, limiter ratelimit.RateLimiter, renderWait time.Duration, maxRetries int, logger *slog.Logger) *NoonScraper {
	if renderWait <= 0 {
		renderWait = 15 * time.Second
	}
	if maxRetries < 1 {
		maxRetries = 3
	}
	return &NoonScraper{
		browser:    b,
		extractor:  parser.NewExtractor(),
		prices:     prices,
		limiter:    limiter,
		retries:    maxRetries,
		logger:     logger.With("component", "noon_scraper"),
		renderWait: renderWait,
	}
}

func (s *NoonScraper) Platform() string {
	return "Noon"
}

func (s *NoonScraper) Scrape(ctx context.Context, market, query string) ([]*models.Listing, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	searchURL := NoonSearchURL(market, query)
	s.logger.Info("scraping search results", "url", searchURL)

	page, err := s.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	if err := s.browser.NavigateWithRetry(page, searchURL, s.retries); err != nil {
		recordOutcome(s.limiter, err)
		return nil, fmt.Errorf("%w: %v", ErrPageLoadFailed, err)
	}
	s.browser.HumanizeInteraction(page)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.renderWait):
	}

	title, _ := page.Title()
	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}
	if strings.Contains(strings.ToLower(title), "error") || len(html) < 10000 {
		s.logger.Warn("possible page load issue", "title", title, "content_bytes", len(html))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	containers := s.findContainers(doc)
	s.logger.Info("found product containers", "count", containers.Length())

	listings := s.collect(containers, market, query)
	s.logger.Info("scraped listings", "count", len(listings))
	recordOutcome(s.limiter, nil)
	return listings, nil
}

// findContainers tries the primary grid selector and falls back to looser
// alternatives when it comes back nearly empty.
func (s *NoonScraper) findContainers(doc *goquery.Document) *goquery.Selection {
	containers := doc.Find(noonResultSelector)
	if containers.Length() >= minNoonContainers {
		return containers
	}

	for _, alt := range noonAltSelectors {
		found := doc.Find(alt)
		if found.Length() > containers.Length() {
			s.logger.Info("using alternative selector", "selector", alt, "count", found.Length())
			containers = found
		}
	}

	return containers
}

func (s *NoonScraper) collect(containers *goquery.Selection, market, query string) []*models.Listing {
	var listings []*models.Listing

	containers.Each(func(_ int, sel *goquery.Selection) {
		raw := s.extractor.Extract(sel)
		if raw.Title == "" {
			return
		}

		listing := models.NewListing(s.Platform(), market, query)
		listing.Title = raw.Title
		listing.PriceRaw = raw.RawPrice
		listing.Price = s.prices.Parse(raw.RawPrice)
		listing.Link = s.canonicalLink(raw.Link)

		listings = append(listings, listing)
	})

	return listings
}

func (s *NoonScraper) canonicalLink(href string) string {
	link := resolveLink(NoonBaseURL(), href)
	if canonical, ok := urlutil.CanonicalNoonURL(link); ok {
		return canonical
	}
	return link
}
