package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Publisher is the transport the relay worker pushes events into.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// OutboxRepository is what the worker needs from the outbox store.
type OutboxRepository interface {
	FetchUnsent(ctx context.Context, limit int) ([]Event, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

// Worker polls the outbox table and relays unsent events to the publisher.
// Mark-after-publish means a crash between the two can redeliver; the message
// ID dedupe window on the stream absorbs that.
type Worker struct {
	repo      OutboxRepository
	publisher Publisher
	interval  time.Duration
	batchSize int
}

func NewWorker(repo OutboxRepository, publisher Publisher, interval time.Duration, batchSize int) *Worker {
	return &Worker{
		repo:      repo,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (w *Worker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Int("batch_size", w.batchSize).Msg("outbox relay started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("outbox relay shutting down")
			return
		case <-ticker.C:
			if err := w.relayOnce(ctx); err != nil {
				log.Error().Err(err).Msg("outbox relay pass failed")
			}
		}
	}
}

func (w *Worker) relayOnce(ctx context.Context) error {
	evs, err := w.repo.FetchUnsent(ctx, w.batchSize)
	if err != nil {
		return err
	}

	for _, ev := range evs {
		if err := w.publisher.Publish(ctx, ev); err != nil {
			log.Error().
				Err(err).
				Str("outbox_id", ev.ID.String()).
				Str("event_type", ev.EventType).
				Msg("failed to publish outbox event")
			// Leave unsent; the next pass retries.
			continue
		}
		if err := w.repo.MarkSent(ctx, ev.ID); err != nil {
			log.Error().
				Err(err).
				Str("outbox_id", ev.ID.String()).
				Msg("failed to mark outbox event sent")
		}
	}
	return nil
}
