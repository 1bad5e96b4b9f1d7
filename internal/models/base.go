package models

import (
	"time"

	"gorm.io/gorm"
)

// Base replaces gorm.Model so that the JSON field names match the API (camelCase, no deletedAt).
type Base struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{
		&Gym{},
		&Admin{},
		&User{},
		&Member{},
		&Specialty{},
		&Trainer{},
		&Class{},
		&Booking{},
		&Equipment{},
		&CheckIn{},
		&ActivityLog{},
		&OutboxEvent{},
	}
}
