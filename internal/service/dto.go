package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/falconilham/gym-nexus-sub000/internal/repository"
)

// Date accepts "2006-01-02" as well as RFC 3339 timestamps in JSON.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		d.Time = t.UTC()
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", raw)
	}
	d.Time = t.UTC()
	return nil
}

func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// PageResult is one page of a listing.
type PageResult[T any] struct {
	Items      []*T
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

func newPageResult[T any](items []*T, total int64, p repository.Page) PageResult[T] {
	p = p.Normalize()
	if items == nil {
		items = []*T{}
	}
	return PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages(total),
	}
}

// Auth DTOs
type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterUserDTO struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	BirthDate *Date  `json:"birthDate"`
}

type UpdateProfileDTO struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	BirthDate *Date   `json:"birthDate"`
	Password  *string `json:"password"`
}

// Gym DTOs
type CreateGymDTO struct {
	Name         string `json:"name" binding:"required"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Website      string `json:"website"`
	Capacity     int    `json:"capacity"`
	OpeningHours string `json:"openingHours"`
	Timezone     string `json:"timezone"`
}

type UpdateGymDTO struct {
	Name         *string `json:"name"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	Website      *string `json:"website"`
	Capacity     *int    `json:"capacity"`
	OpeningHours *string `json:"openingHours"`
	Timezone     *string `json:"timezone"`
	IsActive     *bool   `json:"isActive"`
}

// Admin DTOs
type CreateAdminDTO struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type UpdateAdminDTO struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

// Member DTOs
type CreateMemberDTO struct {
	Email          string `json:"email" binding:"required,email"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Phone          string `json:"phone"`
	BirthDate      *Date  `json:"birthDate"`
	Password       string `json:"password"`
	MembershipType string `json:"membershipType"`
	StartDate      *Date  `json:"startDate"`
	ExpiryDate     *Date  `json:"expiryDate"`
	Notes          string `json:"notes"`
}

type UpdateMemberDTO struct {
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	Phone          *string `json:"phone"`
	BirthDate      *Date   `json:"birthDate"`
	MembershipType *string `json:"membershipType"`
	StartDate      *Date   `json:"startDate"`
	ExpiryDate     *Date   `json:"expiryDate"`
	Notes          *string `json:"notes"`
}

type SuspendMemberDTO struct {
	Days   int    `json:"days"`
	Until  *Date  `json:"until"`
	Reason string `json:"reason"`
}

type RenewMemberDTO struct {
	Months         int    `json:"months"`
	MembershipType string `json:"membershipType"`
}

// Trainer DTOs
type CreateTrainerDTO struct {
	FirstName    string  `json:"firstName" binding:"required"`
	LastName     string  `json:"lastName"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Bio          string  `json:"bio"`
	HourlyRate   float64 `json:"hourlyRate"`
	SpecialtyIDs []uint  `json:"specialtyIds"`
}

type UpdateTrainerDTO struct {
	FirstName    *string  `json:"firstName"`
	LastName     *string  `json:"lastName"`
	Email        *string  `json:"email"`
	Phone        *string  `json:"phone"`
	Bio          *string  `json:"bio"`
	HourlyRate   *float64 `json:"hourlyRate"`
	IsActive     *bool    `json:"isActive"`
	SpecialtyIDs *[]uint  `json:"specialtyIds"`
}

type CreateSpecialtyDTO struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Class DTOs
type CreateClassDTO struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	Room        string    `json:"room"`
	TrainerID   *uint     `json:"trainerId"`
	StartsAt    time.Time `json:"startsAt" binding:"required"`
	EndsAt      time.Time `json:"endsAt" binding:"required"`
	Capacity    int       `json:"capacity" binding:"required"`
}

type UpdateClassDTO struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Room        *string    `json:"room"`
	TrainerID   *uint      `json:"trainerId"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	Capacity    *int       `json:"capacity"`
}

type CreateBookingDTO struct {
	MemberID uint `json:"memberId" binding:"required"`
}

// Equipment DTOs
type CreateEquipmentDTO struct {
	Name              string     `json:"name" binding:"required"`
	Category          string     `json:"category"`
	Brand             string     `json:"brand"`
	SerialNumber      string     `json:"serialNumber"`
	Quantity          int        `json:"quantity"`
	PurchaseDate      *Date      `json:"purchaseDate"`
	LastMaintenanceAt *time.Time `json:"lastMaintenanceAt"`
	NextMaintenanceAt *time.Time `json:"nextMaintenanceAt"`
	Status            string     `json:"status"`
	Notes             string     `json:"notes"`
}

type UpdateEquipmentDTO struct {
	Name              *string    `json:"name"`
	Category          *string    `json:"category"`
	Brand             *string    `json:"brand"`
	SerialNumber      *string    `json:"serialNumber"`
	Quantity          *int       `json:"quantity"`
	PurchaseDate      *Date      `json:"purchaseDate"`
	LastMaintenanceAt *time.Time `json:"lastMaintenanceAt"`
	NextMaintenanceAt *time.Time `json:"nextMaintenanceAt"`
	Status            *string    `json:"status"`
	Notes             *string    `json:"notes"`
}

// Check-in DTOs
type ScanDTO struct {
	QRCode string `json:"qrCode" binding:"required"`
}

type ManualCheckInDTO struct {
	MemberID uint `json:"memberId" binding:"required"`
}
