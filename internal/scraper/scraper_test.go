package scraper

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zaiddev/gulf-price-tracker/internal/parser"
	"github.com/zaiddev/gulf-price-tracker/internal/ratelimit"
)

func TestAmazonSearchURL(t *testing.T) {
	tests := []struct {
		market string
		query  string
		want   string
	}{
		{"Saudi Arabia", "laptop", "https://www.amazon.sa/s?k=laptop"},
		{"UAE", "wireless mouse", "https://www.amazon.ae/s?k=wireless+mouse"},
		{"Egypt", "phone", "https://www.amazon.eg/s?k=phone"},
		{"Atlantis", "laptop", "https://www.amazon.sa/s?k=laptop"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AmazonSearchURL(tt.market, tt.query))
	}
}

func TestNoonSearchURL(t *testing.T) {
	assert.Equal(t,
		"https://www.noon.com/saudi-en/search?q=gaming+laptop",
		NoonSearchURL("Saudi Arabia", "gaming laptop"))
	assert.Equal(t,
		"https://www.noon.com/uae-en/search?q=tv",
		NoonSearchURL("UAE", "tv"))

	// Unknown markets fall back to the default storefront.
	assert.Equal(t,
		"https://www.noon.com/saudi-en/search?q=tv",
		NoonSearchURL("Atlantis", "tv"))
}

func TestKnownMarket(t *testing.T) {
	for _, m := range Markets() {
		assert.True(t, KnownMarket(m), m)
	}
	assert.False(t, KnownMarket("Atlantis"))
}

func TestScraperNavigationRetries(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prices := parser.NewPriceParser(0)
	limiter := ratelimit.NewSimpleRateLimiter(0, 0)

	a := NewAmazonScraper(nil, prices, limiter, 5, logger)
	assert.Equal(t, 5, a.retries)

	n := NewNoonScraper(nil, prices, limiter, time.Second, 2, logger)
	assert.Equal(t, 2, n.retries)

	// Unset retry counts fall back to the conventional three attempts.
	assert.Equal(t, 3, NewAmazonScraper(nil, prices, limiter, 0, logger).retries)
	assert.Equal(t, 3, NewNoonScraper(nil, prices, limiter, time.Second, -1, logger).retries)
}

func TestResolveLink(t *testing.T) {
	assert.Equal(t,
		"https://www.amazon.sa/dp/B0TEST/",
		resolveLink("https://www.amazon.sa", "/dp/B0TEST/"))

	assert.Equal(t,
		"https://www.noon.com/saudi-en/N123/p/",
		resolveLink("https://www.noon.com", "https://www.noon.com/saudi-en/N123/p/"))

	assert.Equal(t, "", resolveLink("https://www.amazon.sa", ""))
}
