package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"github.com/zaiddev/gulf-price-tracker/internal/browser"
	"github.com/zaiddev/gulf-price-tracker/internal/models"
	"github.com/zaiddev/gulf-price-tracker/internal/parser"
	"github.com/zaiddev/gulf-price-tracker/internal/ratelimit"
	"github.com/zaiddev/gulf-price-tracker/internal/urlutil"
)

const amazonResultSelector = "div[data-component-type='s-search-result']"

// AmazonScraper scrapes Amazon's Gulf storefront search results.
type AmazonScraper struct {
	browser   *browser.Browser
	extractor *parser.Extractor
	prices    *parser.PriceParser
	limiter   ratelimit.RateLimiter
	retries   int
	logger    *slog.Logger
}

func NewAmazonScraper(b *browser.Browser, prices *parser.PriceParser, limiter ratelimit.RateLimiter, maxRetries int, logger *slog.Logger) *AmazonScraper {
	if maxRetries < 1 {
		maxRetries = 3
	}
	return &AmazonScraper{
		browser:   b,
		extractor: parser.NewExtractor(),
		prices:    prices,
		limiter:   limiter,
		retries:   maxRetries,
		logger:    logger.With("component", "amazon_scraper"),
	}
}

func (s *AmazonScraper) Platform() string {
	return "Amazon"
}

func (s *AmazonScraper) Scrape(ctx context.Context, market, query string) ([]*models.Listing, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	searchURL := AmazonSearchURL(market, query)
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

	page.WaitForSelector(amazonResultSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(10000),
	})
	time.Sleep(2 * time.Second)

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}

	if strings.Contains(html, "Enter the characters you see below") ||
		strings.Contains(html, "api-services-support@amazon.com") {
		recordOutcome(s.limiter, ErrBlocked)
		return nil, fmt.Errorf("%w: captcha page served", ErrBlocked)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	containers := doc.Find(amazonResultSelector)
	s.logger.Info("found product containers", "count", containers.Length())

	listings := s.collect(containers, market, query)
	s.logger.Info("scraped listings", "count", len(listings))
	recordOutcome(s.limiter, nil)
	return listings, nil
}

func (s *AmazonScraper) collect(containers *goquery.Selection, market, query string) []*models.Listing {
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
		listing.Link = s.canonicalLink(market, raw.Link)

		listings = append(listings, listing)
	})

	return listings
}

func (s *AmazonScraper) canonicalLink(market, href string) string {
	link := resolveLink(AmazonBaseURL(market), href)
	if canonical, ok := urlutil.CanonicalAmazonURL(link); ok {
		return canonical
	}
	return link
}
