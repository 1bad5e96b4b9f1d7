package models

type Gym struct {
	Base
	Name         string `gorm:"type:varchar(150);not null" json:"name"`
	Slug         string `gorm:"type:varchar(160);uniqueIndex;not null" json:"slug"`
	Address      string `gorm:"type:text" json:"address"`
	City         string `gorm:"type:varchar(100)" json:"city"`
	Phone        string `gorm:"type:varchar(30)" json:"phone"`
	Email        string `gorm:"type:varchar(150)" json:"email"`
	Website      string `gorm:"type:varchar(255)" json:"website"`
	LogoURL      string `gorm:"type:text" json:"logoUrl"`
	Capacity     int    `gorm:"not null;default:0" json:"capacity"` // 0 = unlimited
	OpeningHours string `gorm:"type:varchar(255)" json:"openingHours"`
	Timezone     string `gorm:"type:varchar(64);default:'UTC'" json:"timezone"`
	IsActive     bool   `gorm:"not null;default:true" json:"isActive"`
}
