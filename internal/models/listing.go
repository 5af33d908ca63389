package models

import (
	"strconv"
	"time"
)

// NotFound is the placeholder written to output rows for fields the
// scraper could not determine. It never appears inside the domain types
// themselves; absence is modelled with empty strings and nil pointers.
const NotFound = "N/A"

// RawListing is what the field extractor pulls out of a single product
// container before any price interpretation happens. Empty fields mean
// the corresponding fallback chain found nothing.
type RawListing struct {
	Title    string `json:"title"`
	RawPrice string `json:"raw_price"`
	Link     string `json:"link"`
}

// PriceInfo is the normalized form of a raw price blob. Nil fields mean
// the value could not be determined. When both prices are known,
// Current <= Original always holds.
type PriceInfo struct {
	Current         *int `json:"current,omitempty"`
	Original        *int `json:"original,omitempty"`
	DiscountPercent *int `json:"discount_percent,omitempty"`
}

// Listing is one scraped product entry, ready for output.
type Listing struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id,omitempty"`
	Platform  string    `json:"platform"`
	Market    string    `json:"market"`
	Query     string    `json:"query"`
	Title     string    `json:"title"`
	PriceRaw  string    `json:"price_raw"`
	Price     PriceInfo `json:"price"`
	Link      string    `json:"link"`
	ScrapedAt time.Time `json:"scraped_at"`
}

func NewListing(platform, market, query string) *Listing {
	return &Listing{
		Platform:  platform,
		Market:    market,
		Query:     query,
		ScrapedAt: time.Now(),
	}
}

// IntPtr is a convenience for building optional price fields.
func IntPtr(v int) *int {
	return &v
}

// OrNotFound substitutes the output placeholder for blank fields.
func OrNotFound(s string) string {
	if s == "" {
		return NotFound
	}
	return s
}

// FormatOptionalInt renders an optional integer for output rows.
func FormatOptionalInt(v *int) string {
	if v == nil {
		return NotFound
	}
	return strconv.Itoa(*v)
}
