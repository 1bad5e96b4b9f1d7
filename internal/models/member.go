package models

import "time"

const (
	MemberStatusActive    = "active"
	MemberStatusSuspended = "suspended"
	MemberStatusExpired   = "expired"
	MemberStatusCancelled = "cancelled"
)

const (
	MembershipMonthly    = "monthly"
	MembershipQuarterly  = "quarterly"
	MembershipSemiannual = "semiannual"
	MembershipAnnual     = "annual"
	MembershipCustom     = "custom"
)

// Member is a user's membership at one gym.
type Member struct {
	Base
	UserID            uint       `gorm:"not null;uniqueIndex:idx_member_user_gym,where:deleted_at IS NULL" json:"userId"`
	User              *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	GymID             uint       `gorm:"not null;uniqueIndex:idx_member_user_gym,where:deleted_at IS NULL;index" json:"gymId"`
	Gym               *Gym       `gorm:"foreignKey:GymID" json:"gym,omitempty"`
	MembershipType    string     `gorm:"type:varchar(20);not null;default:'monthly'" json:"membershipType"`
	Status            string     `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	StartDate         time.Time  `gorm:"not null" json:"startDate"`
	ExpiryDate        time.Time  `gorm:"not null;index" json:"expiryDate"`
	SuspendedAt       *time.Time `json:"suspendedAt"`
	SuspensionEndDate *time.Time `gorm:"index" json:"suspensionEndDate"`
	SuspensionReason  string     `gorm:"type:text" json:"suspensionReason"`
	QRCode            string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"qrCode"`
	Notes             string     `gorm:"type:text" json:"notes"`
	// LastReminderAt is when the expiring-soon notification was last sent.
	LastReminderAt *time.Time `json:"-"`
}

// MembershipMonths returns the duration of a membership type in months, 0 for custom or unknown types.
func MembershipMonths(membershipType string) int {
	switch membershipType {
	case MembershipMonthly:
		return 1
	case MembershipQuarterly:
		return 3
	case MembershipSemiannual:
		return 6
	case MembershipAnnual:
		return 12
	}
	return 0
}

func ValidMembershipType(membershipType string) bool {
	return membershipType == MembershipCustom || MembershipMonths(membershipType) > 0
}
