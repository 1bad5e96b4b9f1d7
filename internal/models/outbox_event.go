package models

import (
	"time"

	"gorm.io/datatypes"
)

// OutboxEvent is a domain event waiting to be published to Kafka.
type OutboxEvent struct {
	ID            uint           `gorm:"primaryKey"`
	AggregateType string         `gorm:"size:32;not null"`
	AggregateID   uint           `gorm:"not null"`
	EventType     string         `gorm:"size:64;not null"`
	Topic         string         `gorm:"size:128;not null"`
	PartitionKey  string         `gorm:"size:64"`
	Payload       datatypes.JSON `gorm:"type:jsonb;not null"`
	Attempts      int            `gorm:"not null;default:0"`
	LastError     string         `gorm:"type:text"`
	CreatedAt     time.Time
	ClaimedAt     *time.Time
	PublishedAt   *time.Time `gorm:"index"`
}
