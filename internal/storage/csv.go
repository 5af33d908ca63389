package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zaiddev/gulf-price-tracker/internal/models"
)

// Header is the fixed column order of result files.
var Header = []string{
	"Platform",
	"Product",
	"Price Current",
	"Price Original",
	"Discount %",
	"Price Raw",
	"Link",
}

// CSVWriter serializes listings to a delimited file, substituting the
// not-found placeholder for any blank field. Safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the file at path and writes the
// header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("csv: create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// TimestampedPath builds the conventional results filename inside dir,
// e.g. data/results_20250114_153045.csv.
func TimestampedPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("results_%s.csv", now.Format("20060102_150405")))
}

// Write appends one row per listing.
func (c *CSVWriter) Write(listings []*models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		row := []string{
			models.OrNotFound(l.Platform),
			models.OrNotFound(l.Title),
			models.FormatOptionalInt(l.Price.Current),
			models.FormatOptionalInt(l.Price.Original),
			models.FormatOptionalInt(l.Price.DiscountPercent),
			models.OrNotFound(l.PriceRaw),
			models.OrNotFound(l.Link),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		c.file.Close()
		return err
	}
	return c.file.Close()
}
