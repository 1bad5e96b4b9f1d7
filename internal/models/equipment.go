package models

import "time"

const (
	EquipmentOperational = "operational"
	EquipmentMaintenance = "maintenance"
	EquipmentOutOfOrder  = "out_of_order"
)

type Equipment struct {
	Base
	GymID             uint       `gorm:"not null;index" json:"gymId"`
	Name              string     `gorm:"type:varchar(150);not null" json:"name"`
	Category          string     `gorm:"type:varchar(100);index" json:"category"`
	Brand             string     `gorm:"type:varchar(100)" json:"brand"`
	SerialNumber      string     `gorm:"type:varchar(100)" json:"serialNumber"`
	Quantity          int        `gorm:"not null;default:1" json:"quantity"`
	PurchaseDate      *time.Time `gorm:"type:date" json:"purchaseDate"`
	LastMaintenanceAt *time.Time `json:"lastMaintenanceAt"`
	NextMaintenanceAt *time.Time `json:"nextMaintenanceAt"`
	Status            string     `gorm:"type:varchar(20);not null;default:'operational'" json:"status"`
	Notes             string     `gorm:"type:text" json:"notes"`
}

func ValidEquipmentStatus(status string) bool {
	switch status {
	case EquipmentOperational, EquipmentMaintenance, EquipmentOutOfOrder:
		return true
	}
	return false
}
