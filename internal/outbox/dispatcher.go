package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/pkg/utils"
)

const (
	// MaxAttempts after which an event is no longer claimed.
	MaxAttempts = 10
	claimTTL    = time.Minute
)

type messageWriter interface {
	WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error
}

// Dispatcher drains the outbox table and delivers events to Kafka.
type Dispatcher struct {
	repo             repository.OutboxRepository
	producer         messageWriter
	clock            clock.Clock
	pollInterval     time.Duration
	batchSize        int
	shutdownComplete chan struct{}
}

func NewDispatcher(repo repository.OutboxRepository, producer messageWriter, clk clock.Clock, pollInterval time.Duration, batchSize int) *Dispatcher {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Dispatcher{
		repo:             repo,
		producer:         producer,
		clock:            clk,
		pollInterval:     pollInterval,
		batchSize:        batchSize,
		shutdownComplete: make(chan struct{}),
	}
}

// Start launches the polling loop. It should be called in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		if err := d.processBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			utils.Log.Errorf("outbox dispatcher: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait blocks until the dispatcher has stopped.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

func (d *Dispatcher) processBatch(ctx context.Context) error {
	start := time.Now()

	events, err := d.repo.Claim(ctx, d.batchSize, MaxAttempts, d.clock.Now(), claimTTL)
	if err != nil {
		return fmt.Errorf("claim: %w", err)
	}
	if len(events) == 0 {
		return nil
	}
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	var published []uint
	var errs []error
	for topic, batch := range groupByTopic(events) {
		ids := make([]uint, 0, len(batch))
		msgs := make([]kafka.Message, 0, len(batch))
		for _, e := range batch {
			ids = append(ids, e.ID)
			msgs = append(msgs, toMessage(e))
		}

		if err := d.producer.WriteMessages(ctx, topic, msgs...); err != nil {
			failedCounter.WithLabelValues(topic).Add(float64(len(ids)))
			utils.Log.Warnf("outbox: publish %d event(s) to %s: %v", len(ids), topic, err)
			if markErr := d.repo.MarkFailed(ctx, ids, err.Error()); markErr != nil {
				errs = append(errs, fmt.Errorf("mark failed: %w", markErr))
			}
			continue
		}
		published = append(published, ids...)
	}

	if len(published) > 0 {
		if err := d.repo.MarkPublished(ctx, published, d.clock.Now()); err != nil {
			errs = append(errs, fmt.Errorf("mark published: %w", err))
		} else {
			deliveredCounter.Add(float64(len(published)))
		}
	}
	return errors.Join(errs...)
}

func groupByTopic(events []*models.OutboxEvent) map[string][]*models.OutboxEvent {
	out := make(map[string][]*models.OutboxEvent)
	for _, e := range events {
		out[e.Topic] = append(out[e.Topic], e)
	}
	return out
}

func toMessage(e *models.OutboxEvent) kafka.Message {
	return kafka.Message{
		Key:   []byte(e.PartitionKey),
		Value: []byte(e.Payload),
		Time:  e.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.EventType)},
			{Key: "aggregate_type", Value: []byte(e.AggregateType)},
			{Key: "event_id", Value: []byte(fmt.Sprintf("%d", e.ID))},
		},
	}
}
