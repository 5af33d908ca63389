package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/zaiddev/gulf-price-tracker/internal/models"
)

const EventListingScraped = "listing.scraped"

// RedisClient is the slice of the go-redis API the publisher needs,
// kept small so tests can fake it.
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// Publisher pushes listing events to a Redis stream so downstream
// consumers (alerting, price-history analytics) see new prices without
// polling Postgres.
type Publisher struct {
	redis  RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	return &Publisher{
		redis:  client,
		stream: stream,
		logger: logger.With("component", "events"),
	}
}

// PublishListing emits one listing.scraped event. Failures are returned
// to the caller, who treats them as non-fatal.
func (p *Publisher) PublishListing(ctx context.Context, l *models.Listing) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"id":        uuid.New().String(),
			"type":      EventListingScraped,
			"platform":  l.Platform,
			"timestamp": fmt.Sprintf("%d", time.Now().UnixNano()),
			"data":      string(payload),
		},
	}

	if _, err := p.redis.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	return nil
}

// PublishBatch emits events for all listings, logging and skipping
// individual failures.
func (p *Publisher) PublishBatch(ctx context.Context, listings []*models.Listing) {
	for _, l := range listings {
		if err := p.PublishListing(ctx, l); err != nil {
			p.logger.Error("failed to publish listing event", "listing_id", l.ID, "error", err)
		}
	}
}
