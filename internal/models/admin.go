package models

import "time"

const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleStaff      = "staff"
)

// Admin is a gym-scoped staff account. Only super admins have no gym.
type Admin struct {
	Base
	GymID        *uint      `gorm:"index" json:"gymId"`
	Gym          *Gym       `gorm:"foreignKey:GymID" json:"gym,omitempty"`
	Name         string     `gorm:"type:varchar(150);not null" json:"name"`
	Email        string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(100);not null" json:"-"`
	Role         string     `gorm:"type:varchar(20);not null;default:'admin'" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
}

func (a *Admin) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// ValidRole reports whether role is one of the known admin roles.
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleAdmin, RoleStaff:
		return true
	}
	return false
}
