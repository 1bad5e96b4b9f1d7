package models

import "time"

const (
	ClassStatusScheduled = "scheduled"
	ClassStatusCancelled = "cancelled"
)

const (
	BookingStatusBooked    = "booked"
	BookingStatusCancelled = "cancelled"
	BookingStatusAttended  = "attended"
)

type Class struct {
	Base
	GymID       uint      `gorm:"not null;index" json:"gymId"`
	TrainerID   *uint     `gorm:"index" json:"trainerId"`
	Trainer     *Trainer  `gorm:"foreignKey:TrainerID" json:"trainer,omitempty"`
	Name        string    `gorm:"type:varchar(150);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Room        string    `gorm:"type:varchar(100)" json:"room"`
	StartsAt    time.Time `gorm:"not null;index" json:"startsAt"`
	EndsAt      time.Time `gorm:"not null" json:"endsAt"`
	Capacity    int       `gorm:"not null" json:"capacity"`
	Status      string    `gorm:"type:varchar(20);not null;default:'scheduled'" json:"status"`
	// BookedCount is filled by list queries, not stored.
	BookedCount int64 `gorm:"-" json:"bookedCount"`
}

type Booking struct {
	Base
	ClassID  uint    `gorm:"not null;uniqueIndex:idx_booking_active,where:status = 'booked' AND deleted_at IS NULL" json:"classId"`
	Class    *Class  `gorm:"foreignKey:ClassID" json:"class,omitempty"`
	MemberID uint    `gorm:"not null;index;uniqueIndex:idx_booking_active,where:status = 'booked' AND deleted_at IS NULL" json:"memberId"`
	Member   *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Status   string  `gorm:"type:varchar(20);not null;default:'booked'" json:"status"`
}
