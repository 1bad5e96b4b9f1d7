// Package outbox persists domain events next to the change that produced them and
// delivers them to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
)

// Recorder writes events to the outbox table. Called with a transactional ctx it joins
// that transaction.
type Recorder struct {
	repo repository.OutboxRepository
}

func NewRecorder(repo repository.OutboxRepository) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) Record(ctx context.Context, event service.Event) error {
	payload, err := json.Marshal(envelope{Type: event.Type, Data: event.Payload})
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.Type, err)
	}
	row := &models.OutboxEvent{
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.Type,
		Topic:         event.Topic,
		PartitionKey:  event.Key,
		Payload:       datatypes.JSON(payload),
	}
	if err := r.repo.Create(ctx, row); err != nil {
		return fmt.Errorf("insert outbox event %s: %w", event.Type, err)
	}
	return nil
}

type envelope struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}
