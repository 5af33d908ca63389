package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zaiddev/gulf-price-tracker/internal/database"
	"github.com/zaiddev/gulf-price-tracker/internal/events"
	"github.com/zaiddev/gulf-price-tracker/internal/models"
	"github.com/zaiddev/gulf-price-tracker/internal/queue"
	"github.com/zaiddev/gulf-price-tracker/internal/scraper"
)

var ErrNoScrapers = errors.New("no platform scrapers configured")

// Manager owns the scrape job lifecycle: accepting requests, feeding the
// worker, and recording results.
type Manager struct {
	jobs      *database.JobRepository
	listings  *database.ListingRepository
	queue     queue.Queue
	scrapers  []scraper.PlatformScraper
	publisher *events.Publisher
	logger    *slog.Logger
}

func NewManager(
	jobs *database.JobRepository,
	listings *database.ListingRepository,
	q queue.Queue,
	scrapers []scraper.PlatformScraper,
	publisher *events.Publisher,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		jobs:      jobs,
		listings:  listings,
		queue:     q,
		scrapers:  scrapers,
		publisher: publisher,
		logger:    logger.With("component", "job_manager"),
	}
}

// CreateJob records a new scrape job and enqueues it for the worker.
func (m *Manager) CreateJob(ctx context.Context, market, query string) (*database.ScrapeJob, error) {
	if len(m.scrapers) == 0 {
		return nil, ErrNoScrapers
	}
	if !scraper.KnownMarket(market) {
		return nil, scraper.ErrUnknownMarket
	}

	job, err := m.jobs.Create(ctx, market, query)
	if err != nil {
		return nil, err
	}

	task := &queue.Task{
		JobID:     job.ID,
		Market:    market,
		Query:     query,
		Priority:  1,
		CreatedAt: time.Now(),
	}
	if err := m.queue.Push(task); err != nil {
		// The job row exists but will never run; surface that.
		_ = m.jobs.MarkFailed(ctx, job.ID, err)
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	m.logger.Info("job created", "id", job.ID, "market", market, "query", query)
	return job, nil
}

// GetJob returns the stored state of one job.
func (m *Manager) GetJob(ctx context.Context, id string) (*database.ScrapeJob, error) {
	return m.jobs.Get(ctx, id)
}

// JobListings returns the listings a job captured.
func (m *Manager) JobListings(ctx context.Context, id string) ([]*models.Listing, error) {
	if _, err := m.jobs.Get(ctx, id); err != nil {
		return nil, err
	}
	return m.listings.ListByJob(ctx, id)
}

// StartWorker consumes the queue until the context ends. One worker is
// enough: the browser serializes page fetches anyway, and the rate
// limiter would stall extra workers.
func (m *Manager) StartWorker(ctx context.Context) {
	m.logger.Info("worker started")

	for {
		task, err := m.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
				errors.Is(err, queue.ErrQueueClosed) {
				m.logger.Info("worker stopped", "reason", err)
				return
			}
			m.logger.Error("failed to pop task", "error", err)
			continue
		}

		m.runTask(ctx, task)
	}
}

func (m *Manager) runTask(ctx context.Context, task *queue.Task) {
	logger := m.logger.With("job_id", task.JobID, "market", task.Market, "query", task.Query)

	if err := m.jobs.MarkRunning(ctx, task.JobID); err != nil {
		logger.Error("failed to mark job running", "error", err)
	}

	listings := scraper.ScrapeAll(ctx, m.scrapers, task.Market, task.Query, logger)
	for _, l := range listings {
		l.JobID = task.JobID
	}

	if err := m.listings.InsertBatch(ctx, listings); err != nil {
		logger.Error("failed to store listings", "error", err)
		if markErr := m.jobs.MarkFailed(ctx, task.JobID, err); markErr != nil {
			logger.Error("failed to mark job failed", "error", markErr)
		}
		return
	}

	if m.publisher != nil {
		m.publisher.PublishBatch(ctx, listings)
	}

	if err := m.jobs.MarkCompleted(ctx, task.JobID, len(listings)); err != nil {
		logger.Error("failed to mark job completed", "error", err)
		return
	}

	logger.Info("job completed", "listings", len(listings))
}
