package models

import "time"

const (
	CheckInGranted = "granted"
	CheckInDenied  = "denied"
)

const (
	CheckInMethodQR     = "qr"
	CheckInMethodManual = "manual"
)

// CheckIn is one access-control event. A granted row with no CheckOutTime is an open session.
type CheckIn struct {
	Base
	MemberID     uint       `gorm:"not null;index:idx_checkin_member_time" json:"memberId"`
	Member       *Member    `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	GymID        uint       `gorm:"not null;index" json:"gymId"`
	CheckInTime  time.Time  `gorm:"not null;index:idx_checkin_member_time" json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime"`
	Status       string     `gorm:"type:varchar(10);not null" json:"status"`
	DenyReason   string     `gorm:"type:varchar(50)" json:"denyReason,omitempty"`
	Method       string     `gorm:"type:varchar(10);not null;default:'qr'" json:"method"`
}
