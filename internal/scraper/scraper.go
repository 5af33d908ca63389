package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/zaiddev/gulf-price-tracker/internal/models"
	"github.com/zaiddev/gulf-price-tracker/internal/ratelimit"
)

var (
	ErrUnknownMarket  = errors.New("unknown market")
	ErrPageLoadFailed = errors.New("page load failed")
	ErrBlocked        = errors.New("blocked by platform anti-bot")
)

// PlatformScraper scrapes one platform's search results for a market and
// query. Implementations drop listings with no extractable title; a
// partially extractable listing (missing price or link) is still emitted
// with the absent fields empty.
type PlatformScraper interface {
	Platform() string
	Scrape(ctx context.Context, market, query string) ([]*models.Listing, error)
}

// Market → storefront base URL. Markets follow the original tracker's
// coverage: Gulf Amazon storefronts and their Noon counterparts.
var amazonMarkets = map[string]string{
	"Saudi Arabia": "https://www.amazon.sa",
	"UAE":          "https://www.amazon.ae",
	"Egypt":        "https://www.amazon.eg",
}

var noonMarkets = map[string]string{
	"Saudi Arabia": "https://www.noon.com/saudi-en",
	"UAE":          "https://www.noon.com/uae-en",
	"Egypt":        "https://www.noon.com/egypt-en",
}

// DefaultMarket is used when a requested market is not mapped.
const DefaultMarket = "Saudi Arabia"

// Markets lists the supported market names.
func Markets() []string {
	return []string{"Saudi Arabia", "UAE", "Egypt"}
}

// AmazonSearchURL builds the search results URL for a market and query.
func AmazonSearchURL(market, query string) string {
	base, ok := amazonMarkets[market]
	if !ok {
		base = amazonMarkets[DefaultMarket]
	}
	return fmt.Sprintf("%s/s?k=%s", base, url.QueryEscape(query))
}

// NoonSearchURL builds the search results URL for a market and query.
func NoonSearchURL(market, query string) string {
	base, ok := noonMarkets[market]
	if !ok {
		base = noonMarkets[DefaultMarket]
	}
	return fmt.Sprintf("%s/search?q=%s", base, url.QueryEscape(query))
}

// AmazonBaseURL returns the storefront root used to resolve relative
// listing links.
func AmazonBaseURL(market string) string {
	if base, ok := amazonMarkets[market]; ok {
		return base
	}
	return amazonMarkets[DefaultMarket]
}

// NoonBaseURL returns the storefront root used to resolve relative
// listing links. Noon links are relative to the domain, not the
// market-prefixed path.
func NoonBaseURL() string {
	return "https://www.noon.com"
}

// KnownMarket reports whether a market name is mapped.
func KnownMarket(market string) bool {
	_, ok := amazonMarkets[market]
	return ok
}

// outcomeRecorder is the feedback side of the adaptive rate limiter.
// Plain limiters simply don't implement it.
type outcomeRecorder interface {
	RecordSuccess()
	RecordError()
}

func recordOutcome(limiter ratelimit.RateLimiter, err error) {
	rec, ok := limiter.(outcomeRecorder)
	if !ok {
		return
	}
	if err != nil {
		rec.RecordError()
		return
	}
	rec.RecordSuccess()
}

func resolveLink(base, href string) string {
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
