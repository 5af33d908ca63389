package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/zaiddev/gulf-price-tracker/internal/models"
)

var ErrNotFound = errors.New("not found")

// ListingRepository persists scraped listings for price history.
type ListingRepository struct {
	db *DB
}

func NewListingRepository(db *DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Schema returns the DDL for the listings table. Applied by the service
// on startup; there is no separate migration tooling.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS listings (
	id               UUID PRIMARY KEY,
	job_id           UUID,
	platform         TEXT NOT NULL,
	market           TEXT NOT NULL,
	query            TEXT NOT NULL,
	title            TEXT NOT NULL,
	price_raw        TEXT,
	price_current    INTEGER,
	price_original   INTEGER,
	discount_percent INTEGER,
	link             TEXT,
	scraped_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_listings_job ON listings (job_id);
CREATE INDEX IF NOT EXISTS idx_listings_platform_query ON listings (platform, query);

CREATE TABLE IF NOT EXISTS scrape_jobs (
	id           UUID PRIMARY KEY,
	market       TEXT NOT NULL,
	query        TEXT NOT NULL,
	status       TEXT NOT NULL,
	listings     INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL,
	started_at   TIMESTAMPTZ,
	completed_at TIMESTAMPTZ
);
`
}

// EnsureSchema creates the tables if they do not exist yet.
func (r *ListingRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema()); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Insert stores one listing, assigning it an ID when it has none.
func (r *ListingRepository) Insert(ctx context.Context, l *models.Listing) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}

	query := `
		INSERT INTO listings
		(id, job_id, platform, market, query, title, price_raw,
		 price_current, price_original, discount_percent, link, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		l.ID, nullableID(l.JobID), l.Platform, l.Market, l.Query, l.Title, l.PriceRaw,
		l.Price.Current, l.Price.Original, l.Price.DiscountPercent, l.Link, l.ScrapedAt)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

// InsertBatch stores all listings in one transaction.
func (r *ListingRepository) InsertBatch(ctx context.Context, listings []*models.Listing) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		for _, l := range listings {
			if l.ID == "" {
				l.ID = uuid.New().String()
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO listings
				(id, job_id, platform, market, query, title, price_raw,
				 price_current, price_original, discount_percent, link, scraped_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
				l.ID, nullableID(l.JobID), l.Platform, l.Market, l.Query, l.Title, l.PriceRaw,
				l.Price.Current, l.Price.Original, l.Price.DiscountPercent, l.Link, l.ScrapedAt)
			if err != nil {
				return fmt.Errorf("failed to insert listing %s: %w", l.ID, err)
			}
		}
		return nil
	})
}

// ListByJob returns all listings captured by one job, oldest first.
func (r *ListingRepository) ListByJob(ctx context.Context, jobID string) ([]*models.Listing, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, job_id, platform, market, query, title, price_raw,
		       price_current, price_original, discount_percent, link, scraped_at
		FROM listings
		WHERE job_id = $1
		ORDER BY scraped_at`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		var jobID *string
		if err := rows.Scan(
			&l.ID, &jobID, &l.Platform, &l.Market, &l.Query, &l.Title, &l.PriceRaw,
			&l.Price.Current, &l.Price.Original, &l.Price.DiscountPercent, &l.Link, &l.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		if jobID != nil {
			l.JobID = *jobID
		}
		listings = append(listings, l)
	}

	return listings, rows.Err()
}

func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
