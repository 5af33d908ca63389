package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStructuredBlob(t *testing.T) {
	p := NewPriceParser(0)

	result := p.Parse("4,099\n5,899\n30% OFF\n#2 in Notebook Laptops\nFree Delivery")

	require.NotNil(t, result.Current)
	require.NotNil(t, result.Original)
	require.NotNil(t, result.DiscountPercent)
	assert.Equal(t, 4099, *result.Current)
	assert.Equal(t, 5899, *result.Original)
	assert.Equal(t, 30, *result.DiscountPercent)
}

func TestParseTable(t *testing.T) {
	p := NewPriceParser(0)

	tests := []struct {
		name     string
		raw      string
		current  *int
		original *int
		discount *int
	}{
		{
			name:    "single price with thousands separator",
			raw:     "1,299",
			current: intPtr(1299),
		},
		{
			name: "empty input",
			raw:  "",
		},
		{
			name: "sentinel input",
			raw:  "N/A",
		},
		{
			name:     "reversed order is corrected and discount derived",
			raw:      "5,000\n4,000",
			current:  intPtr(4000),
			original: intPtr(5000),
			discount: intPtr(20),
		},
		{
			name:    "idempotent on already normalized value",
			raw:     "4099",
			current: intPtr(4099),
		},
		{
			name: "pure metadata yields nothing",
			raw:  "#1 Best Seller in Laptops\nFast Delivery\nOnly 2 left in stock",
		},
		{
			name: "values outside accepted range are rejected",
			raw:  "3\n2000000",
		},
		{
			name:    "lower bound is exclusive",
			raw:     "50\n51",
			current: intPtr(51),
		},
		{
			name:     "badge discount wins over computed discount",
			raw:      "100\n200\n10% OFF",
			current:  intPtr(100),
			original: intPtr(200),
			discount: intPtr(10),
		},
		{
			name:     "discount badge with lowercase off",
			raw:      "450\n25%off",
			current:  intPtr(450),
			discount: intPtr(25),
		},
		{
			name:     "derived discount is rounded",
			raw:      "2,999\n8,999",
			current:  intPtr(2999),
			original: intPtr(8999),
			discount: intPtr(67),
		},
		{
			name:    "candidates beyond the scan window are missed",
			raw:     "badge one\nbadge two\nbadge three\nbadge four\nbadge five\n4,099",
			current: nil,
		},
		{
			name:     "blank lines do not consume the scan window",
			raw:      "\n\n4,099\n\n5,899",
			current:  intPtr(4099),
			original: intPtr(5899),
			discount: intPtr(31),
		},
		{
			name:     "third candidate is ignored",
			raw:      "300\n100\n200",
			current:  intPtr(100),
			original: intPtr(300),
			discount: intPtr(67),
		},
		{
			name: "rating-like decimal is not a price",
			raw:  "4.5 out of 5",
		},
		{
			name:     "badge discount above 100 is clamped",
			raw:      "100\n150% OFF",
			current:  intPtr(100),
			discount: intPtr(100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.Parse(tt.raw)

			assertOptional(t, tt.current, result.Current, "current")
			assertOptional(t, tt.original, result.Original, "original")
			assertOptional(t, tt.discount, result.DiscountPercent, "discount")
		})
	}
}

func TestParseOrderingInvariant(t *testing.T) {
	p := NewPriceParser(0)

	pairs := [][2]string{
		{"4,000", "5,000"},
		{"5,000", "4,000"},
		{"99", "98"},
		{"99,999", "100"},
	}

	for _, pair := range pairs {
		result := p.Parse(pair[0] + "\n" + pair[1])
		require.NotNil(t, result.Current)
		require.NotNil(t, result.Original)
		assert.LessOrEqual(t, *result.Current, *result.Original,
			"current must never exceed original for input %q/%q", pair[0], pair[1])
	}
}

func TestParseConfigurableScanDepth(t *testing.T) {
	// Six metadata-free filler lines push the price past the default
	// window; a deeper parser still finds it.
	raw := "foo bar\nfoo bar\nfoo bar\nfoo bar\nfoo bar\nfoo bar\n4,099"

	assert.Nil(t, NewPriceParser(0).Parse(raw).Current)

	deep := NewPriceParser(10).Parse(raw)
	require.NotNil(t, deep.Current)
	assert.Equal(t, 4099, *deep.Current)
}

func TestParseNeverDerivesDiscountFromSinglePrice(t *testing.T) {
	p := NewPriceParser(0)

	result := p.Parse("1,299")
	assert.Nil(t, result.Original)
	assert.Nil(t, result.DiscountPercent)
}

func assertOptional(t *testing.T, want, got *int, field string) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got, "%s should be absent", field)
		return
	}
	require.NotNil(t, got, "%s should be present", field)
	assert.Equal(t, *want, *got, field)
}

func intPtr(v int) *int {
	return &v
}
