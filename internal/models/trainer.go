package models

type Specialty struct {
	Base
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

type Trainer struct {
	Base
	GymID       uint        `gorm:"not null;index" json:"gymId"`
	FirstName   string      `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName    string      `gorm:"type:varchar(100)" json:"lastName"`
	Email       string      `gorm:"type:varchar(150)" json:"email"`
	Phone       string      `gorm:"type:varchar(30)" json:"phone"`
	Bio         string      `gorm:"type:text" json:"bio"`
	HourlyRate  float64     `json:"hourlyRate"`
	IsActive    bool        `gorm:"not null;default:true" json:"isActive"`
	Specialties []Specialty `gorm:"many2many:trainer_specialties;" json:"specialties"`
}
