// Package urlutil canonicalizes product URLs so the same product scraped
// through different search paths deduplicates to one link.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize ensures a URL carries an https://www. prefix.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	if !strings.Contains(raw, "://www.") {
		raw = strings.Replace(raw, "https://", "https://www.", 1)
		raw = strings.Replace(raw, "http://", "http://www.", 1)
	}
	return raw
}

// CanonicalAmazonURL reduces an Amazon product URL to its /dp/{ASIN}/
// form, preserving the regional domain. It handles both /dp/{ASIN} and
// /gp/product/{ASIN} shapes. Returns ok=false for non-product URLs.
func CanonicalAmazonURL(raw string) (string, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	parts := splitPath(parsed.Path)

	asin := ""
	if i := index(parts, "dp"); i >= 0 && i+1 < len(parts) {
		asin = parts[i+1]
	} else if index(parts, "gp") >= 0 {
		if i := index(parts, "product"); i >= 0 && i+1 < len(parts) {
			asin = parts[i+1]
		}
	}
	if asin == "" {
		return "", false
	}

	scheme := parsed.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/dp/%s/", scheme, parsed.Host, asin), true
}

// CanonicalNoonURL reduces a Noon product URL to
// https://www.noon.com/{region}/{sku}/p/. The SKU always sits directly
// before the trailing "p" path segment. Returns ok=false for
// non-product URLs.
func CanonicalNoonURL(raw string) (string, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	parts := splitPath(parsed.Path)

	pIdx := index(parts, "p")
	if pIdx <= 0 {
		return "", false
	}

	sku := parts[pIdx-1]
	region := parts[0]
	return fmt.Sprintf("https://www.noon.com/%s/%s/p/", region, sku), true
}

// CanonicalProductURL detects the store from the domain and dispatches
// to the matching canonicalizer.
func CanonicalProductURL(raw string) (string, bool) {
	normalized := Normalize(raw)

	parsed, err := url.Parse(normalized)
	if err != nil {
		return "", false
	}
	domain := strings.ToLower(parsed.Host)

	switch {
	case strings.Contains(domain, "noon.com"):
		return CanonicalNoonURL(normalized)
	case strings.Contains(domain, "amazon."):
		return CanonicalAmazonURL(normalized)
	}
	return "", false
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func index(parts []string, want string) int {
	for i, p := range parts {
		if p == want {
			return i
		}
	}
	return -1
}
