package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zaiddev/gulf-price-tracker/internal/models"
)

// currencyCodes recognized in listing price regions.
var currencyCodes = []string{"SAR", "AED", "EGP"}

// fieldStrategy attempts to pull one field out of a product container.
// It reports ok=false both when nothing matched structurally and when a
// match carried only blank text, so the chain moves on either way.
type fieldStrategy func(sel *goquery.Selection) (string, bool)

// Extractor selects title, raw price text and link from a product
// container using ordered fallback chains. Platforms rearrange their
// markup often enough that no single selector survives for long; each
// chain tries the most specific selector first and degrades from there.
type Extractor struct {
	titleStrategies []fieldStrategy
	priceStrategies []fieldStrategy
}

func NewExtractor() *Extractor {
	return &Extractor{
		titleStrategies: []fieldStrategy{
			textOf("h2"),
			textOf("h3"),
			textOf("span[data-component-type='s-title']"),
			longTextFallback,
		},
		priceStrategies: []fieldStrategy{
			textOf(".a-price-whole"),
			textOf("[class*='price']"),
			attrOf("data-price"),
			currencyTextFallback,
		},
	}
}

// Extract runs all chains over one product container. Fields whose chain
// found nothing stay empty.
func (e *Extractor) Extract(sel *goquery.Selection) models.RawListing {
	var raw models.RawListing
	raw.Title, _ = e.ExtractTitle(sel)
	raw.RawPrice, _ = e.ExtractPrice(sel)
	raw.Link, _ = e.ExtractLink(sel)
	return raw
}

// ExtractTitle returns the first non-blank title a strategy produces.
// The returned string is never blank when ok is true.
func (e *Extractor) ExtractTitle(sel *goquery.Selection) (string, bool) {
	return runChain(e.titleStrategies, sel)
}

// ExtractPrice returns the raw, possibly multi-line price text of the
// container. Interpretation is PriceParser's job.
func (e *Extractor) ExtractPrice(sel *goquery.Selection) (string, bool) {
	return runChain(e.priceStrategies, sel)
}

// ExtractLink returns the href of the most title-adjacent anchor.
func (e *Extractor) ExtractLink(sel *goquery.Selection) (string, bool) {
	for _, q := range []string{"h2 a", "h3 a", "a"} {
		if href, ok := sel.Find(q).First().Attr("href"); ok {
			href = strings.TrimSpace(href)
			if href != "" {
				return href, true
			}
		}
	}
	return "", false
}

func runChain(chain []fieldStrategy, sel *goquery.Selection) (string, bool) {
	for _, strategy := range chain {
		if v, ok := strategy(sel); ok {
			return v, true
		}
	}
	return "", false
}

// textOf matches the first descendant for the selector and returns its
// trimmed text. A found-but-blank element is a miss, not a short-circuit.
func textOf(selector string) fieldStrategy {
	return func(sel *goquery.Selection) (string, bool) {
		found := sel.Find(selector).First()
		if found.Length() == 0 {
			return "", false
		}
		text := strings.TrimSpace(found.Text())
		return text, text != ""
	}
}

// attrOf reads an attribute directly off the container element.
func attrOf(name string) fieldStrategy {
	return func(sel *goquery.Selection) (string, bool) {
		v, ok := sel.Attr(name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
}

// longTextFallback scans descendants for the first one whose normalized
// text is longer than 10 characters. Last resort for titles when every
// known heading shape is absent.
func longTextFallback(sel *goquery.Selection) (string, bool) {
	var text string
	sel.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(s.Text())
		if len(t) > 10 {
			text = t
			return false
		}
		return true
	})
	return text, text != ""
}

// currencyTextFallback finds a descendant mentioning a known currency
// code and returns its text, which usually carries the price next to it.
func currencyTextFallback(sel *goquery.Selection) (string, bool) {
	var text string
	sel.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := s.Text()
		for _, code := range currencyCodes {
			if strings.Contains(t, code) {
				// Descend to the tightest element containing the code.
				if s.Children().Length() == 0 {
					text = strings.TrimSpace(t)
					return false
				}
			}
		}
		return true
	})
	return text, text != ""
}
