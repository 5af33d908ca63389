package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// ScrapeJob is one requested market+query scrape and its progress.
type ScrapeJob struct {
	ID          string     `json:"id"`
	Market      string     `json:"market"`
	Query       string     `json:"query"`
	Status      string     `json:"status"`
	Listings    int        `json:"listings"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// JobRepository persists scrape job records.
type JobRepository struct {
	db *DB
}

func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, market, query string) (*ScrapeJob, error) {
	job := &ScrapeJob{
		ID:        uuid.New().String(),
		Market:    market,
		Query:     query,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO scrape_jobs (id, market, query, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		job.ID, job.Market, job.Query, job.Status, job.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return job, nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (*ScrapeJob, error) {
	job := &ScrapeJob{}
	err := r.db.QueryRow(ctx, `
		SELECT id, market, query, status, listings, error, created_at, started_at, completed_at
		FROM scrape_jobs
		WHERE id = $1`, id).Scan(
		&job.ID, &job.Market, &job.Query, &job.Status, &job.Listings,
		&job.Error, &job.CreatedAt, &job.StartedAt, &job.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

func (r *JobRepository) MarkRunning(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE scrape_jobs SET status = $2, started_at = $3 WHERE id = $1`,
		id, JobStatusRunning, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}
	return nil
}

func (r *JobRepository) MarkCompleted(ctx context.Context, id string, listings int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE scrape_jobs SET status = $2, listings = $3, completed_at = $4 WHERE id = $1`,
		id, JobStatusCompleted, listings, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	return nil
}

func (r *JobRepository) MarkFailed(ctx context.Context, id string, jobErr error) error {
	msg := ""
	if jobErr != nil {
		msg = jobErr.Error()
	}
	_, err := r.db.Exec(ctx, `
		UPDATE scrape_jobs SET status = $2, error = $3, completed_at = $4 WHERE id = $1`,
		id, JobStatusFailed, msg, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}
