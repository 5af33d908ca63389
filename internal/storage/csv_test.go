package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaiddev/gulf-price-tracker/internal/models"
)

func TestCSVWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.csv")

	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	full := models.NewListing("Noon", "Saudi Arabia", "laptop")
	full.Title = "ASUS ROG Strix G16"
	full.PriceRaw = "4,099\n5,899\n30% OFF"
	full.Price = models.PriceInfo{
		Current:         models.IntPtr(4099),
		Original:        models.IntPtr(5899),
		DiscountPercent: models.IntPtr(30),
	}
	full.Link = "https://www.noon.com/saudi-en/N38503505A/p/"

	sparse := models.NewListing("Amazon", "Saudi Arabia", "laptop")
	sparse.Title = "Mystery Laptop"

	require.NoError(t, w.Write([]*models.Listing{full, sparse}))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Header, rows[0])

	assert.Equal(t, []string{
		"Noon", "ASUS ROG Strix G16", "4099", "5899", "30",
		"4,099\n5,899\n30% OFF", "https://www.noon.com/saudi-en/N38503505A/p/",
	}, rows[1])

	// Absent fields serialize as the placeholder, never as blanks.
	assert.Equal(t, []string{
		"Amazon", "Mystery Laptop", "N/A", "N/A", "N/A", "N/A", "N/A",
	}, rows[2])
}

func TestTimestampedPath(t *testing.T) {
	now := time.Date(2025, 1, 14, 15, 30, 45, 0, time.UTC)
	assert.Equal(t,
		filepath.Join("data", "results_20250114_153045.csv"),
		TimestampedPath("data", now))
}
