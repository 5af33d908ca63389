package parser

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selection(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Find("body").Children().First()
}

func TestExtractTitle(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name  string
		html  string
		want  string
		found bool
	}{
		{
			name:  "h2 heading wins",
			html:  `<div><h2>Dell XPS 13 Laptop</h2><h3>ignored</h3></div>`,
			want:  "Dell XPS 13 Laptop",
			found: true,
		},
		{
			name:  "falls back to h3 when h2 absent",
			html:  `<div><h3>Great Wireless Mouse 2024</h3></div>`,
			want:  "Great Wireless Mouse 2024",
			found: true,
		},
		{
			name:  "blank h2 does not short-circuit the chain",
			html:  `<div><h2>   </h2><h3>HP Pavilion 15</h3></div>`,
			want:  "HP Pavilion 15",
			found: true,
		},
		{
			name:  "tagged title span",
			html:  `<div><span data-component-type="s-title">Lenovo ThinkPad X1</span></div>`,
			want:  "Lenovo ThinkPad X1",
			found: true,
		},
		{
			name:  "long text fallback",
			html:  `<div><span>ok</span><span>Apple MacBook Air M3 13-inch</span></div>`,
			want:  "Apple MacBook Air M3 13-inch",
			found: true,
		},
		{
			name:  "nothing usable",
			html:  `<div><span>ok</span></div>`,
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, ok := e.ExtractTitle(selection(t, tt.html))
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, title)
			if ok {
				assert.NotEmpty(t, title)
			}
		})
	}
}

func TestExtractPrice(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name  string
		html  string
		want  string
		found bool
	}{
		{
			name:  "whole price class marker",
			html:  `<div><span class="a-price-whole">4,099</span></div>`,
			want:  "4,099",
			found: true,
		},
		{
			name:  "class substring match",
			html:  `<div><div class="product-price-box">1,299</div></div>`,
			want:  "1,299",
			found: true,
		},
		{
			name:  "data-price attribute on container",
			html:  `<div data-price="599"><span>something else</span></div>`,
			want:  "599",
			found: true,
		},
		{
			name:  "currency code fallback",
			html:  `<div><span>SAR 2,450</span></div>`,
			want:  "SAR 2,450",
			found: true,
		},
		{
			name:  "blank price marker falls through to currency text",
			html:  `<div><span class="a-price-whole"> </span><span>AED 349</span></div>`,
			want:  "AED 349",
			found: true,
		},
		{
			name:  "no price region at all",
			html:  `<div><span>out of catalogue</span></div>`,
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, ok := e.ExtractPrice(selection(t, tt.html))
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, price)
		})
	}
}

func TestExtractLink(t *testing.T) {
	e := NewExtractor()

	t.Run("prefers heading anchor", func(t *testing.T) {
		sel := selection(t, `<div><a href="/other">x</a><h2><a href="/dp/B0TEST1234/">title</a></h2></div>`)
		link, ok := e.ExtractLink(sel)
		require.True(t, ok)
		assert.Equal(t, "/dp/B0TEST1234/", link)
	})

	t.Run("any anchor as last resort", func(t *testing.T) {
		sel := selection(t, `<div><a href="/saudi-en/N12345/p/">x</a></div>`)
		link, ok := e.ExtractLink(sel)
		require.True(t, ok)
		assert.Equal(t, "/saudi-en/N12345/p/", link)
	})

	t.Run("no anchor", func(t *testing.T) {
		_, ok := e.ExtractLink(selection(t, `<div><span>no link</span></div>`))
		assert.False(t, ok)
	})
}

func TestExtractFullContainer(t *testing.T) {
	e := NewExtractor()

	html := `<div>
		<h2><a href="/dp/B0XYZ/">ASUS ROG Strix G16 Gaming Laptop</a></h2>
		<div class="price-block">4,099
5,899
30% OFF</div>
	</div>`

	raw := e.Extract(selection(t, html))
	assert.Equal(t, "ASUS ROG Strix G16 Gaming Laptop", raw.Title)
	assert.Contains(t, raw.RawPrice, "4,099")
	assert.Contains(t, raw.RawPrice, "30% OFF")
	assert.Equal(t, "/dp/B0XYZ/", raw.Link)
}
