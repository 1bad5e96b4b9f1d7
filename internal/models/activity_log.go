package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActorAdmin  = "admin"
	ActorMember = "member"
	ActorSystem = "system"
)

// ActivityLog is an append-only audit trail entry.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	GymID      *uint             `gorm:"index" json:"gymId"`
	ActorType  string            `gorm:"size:16;not null" json:"actorType"`
	ActorID    *uint             `json:"actorId"`
	Action     string            `gorm:"size:64;not null" json:"action"`
	EntityType string            `gorm:"size:32;not null" json:"entityType"`
	EntityID   *uint             `json:"entityId"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt  time.Time         `gorm:"index" json:"createdAt"`
}
