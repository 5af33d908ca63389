package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/zaiddev/gulf-price-tracker/internal/models"
)

const (
	// DefaultScanLines bounds how deep into the raw price blob the parser
	// looks for numeric candidates. Ranking badges and delivery notices
	// reliably appear after this point, and scanning further risks
	// mistaking review counts or years for prices.
	DefaultScanLines = 5

	// Accepted price range in whole currency units (SAR/AED), exclusive
	// on both ends. Filters out ratings, counts and years.
	minPrice = 50
	maxPrice = 1000000
)

// metadataKeywords mark lines that are neither prices nor discounts:
// ranking badges ("#2 in Notebook Laptops"), stock and delivery notices.
var metadataKeywords = []string{"rank", "#", "in", "fast", "left", "stock"}

// PriceParser turns the multi-line price blob scraped from a listing into
// a structured current/original/discount record. It is stateless after
// construction and safe for concurrent use.
type PriceParser struct {
	scanLines  int
	discountRe *regexp.Regexp
	priceRe    *regexp.Regexp
}

// NewPriceParser creates a parser scanning the first scanLines lines of
// each blob. Values < 1 fall back to DefaultScanLines.
func NewPriceParser(scanLines int) *PriceParser {
	if scanLines < 1 {
		scanLines = DefaultScanLines
	}
	return &PriceParser{
		scanLines:  scanLines,
		discountRe: regexp.MustCompile(`(?i)(\d+)\s*%\s*OFF`),
		priceRe:    regexp.MustCompile(`^\d{1,2},\d{3}$|^\d+$`),
	}
}

// Parse normalizes a raw price string. It never fails: fields that cannot
// be determined are left nil, and a completely unusable input yields the
// zero PriceInfo.
func (p *PriceParser) Parse(raw string) models.PriceInfo {
	var result models.PriceInfo

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == models.NotFound {
		return result
	}

	var candidates []int
	var discount *int

	scanned := 0
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if scanned >= p.scanLines {
			break
		}
		scanned++

		// A discount badge line is never a price candidate. Badge values
		// are clamped to 100; a percentage above that is display noise.
		if m := p.discountRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				if v > 100 {
					v = 100
				}
				discount = &v
			}
			continue
		}

		if containsMetadata(line) {
			continue
		}

		if !p.priceRe.MatchString(line) {
			continue
		}
		num, err := strconv.Atoi(strings.ReplaceAll(line, ",", ""))
		if err != nil {
			continue
		}
		if num > minPrice && num < maxPrice {
			candidates = append(candidates, num)
		}
	}

	// The source order of current vs. original is not reliable; when two
	// candidates are present the smaller one is the current price. With
	// three or more, only the first two in scan order count.
	switch {
	case len(candidates) >= 2:
		cur, orig := candidates[0], candidates[1]
		if cur > orig {
			cur, orig = orig, cur
		}
		result.Current = &cur
		result.Original = &orig
	case len(candidates) == 1:
		result.Current = &candidates[0]
	}

	if discount != nil {
		result.DiscountPercent = discount
	} else if result.Current != nil && result.Original != nil && *result.Original > 0 {
		d := int(math.Round(float64(*result.Original-*result.Current) / float64(*result.Original) * 100))
		result.DiscountPercent = &d
	}

	return result
}

func containsMetadata(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range metadataKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
