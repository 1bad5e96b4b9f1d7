package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindActive(ctx context.Context, classID, memberID uint) (*models.Booking, error)
	CountActive(ctx context.Context, classID uint) (int64, error)
	ListByClass(ctx context.Context, classID uint) ([]*models.Booking, error)
	ListByMembers(ctx context.Context, memberIDs []uint, p Page) ([]*models.Booking, int64, error)
	Update(ctx context.Context, booking *models.Booking) error
	CancelByClass(ctx context.Context, classID uint) (int64, error)
}

type bookingRepo struct {
	db *gorm.DB
}

func NewBookingRepo(db *gorm.DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	return translate(conn(ctx, r.db).Omit("Class", "Member").Create(booking).Error)
}

func (r *bookingRepo) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := conn(ctx, r.db).Preload("Class").First(&booking, id).Error; err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (r *bookingRepo) FindActive(ctx context.Context, classID, memberID uint) (*models.Booking, error) {
	var booking models.Booking
	err := conn(ctx, r.db).
		Where("class_id = ? AND member_id = ? AND status = ?", classID, memberID, models.BookingStatusBooked).
		First(&booking).Error
	if err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (r *bookingRepo) CountActive(ctx context.Context, classID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Booking{}).
		Where("class_id = ? AND status = ?", classID, models.BookingStatusBooked).
		Count(&count).Error
	return count, translate(err)
}

func (r *bookingRepo) ListByClass(ctx context.Context, classID uint) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := conn(ctx, r.db).Preload("Member.User").
		Where("class_id = ?", classID).
		Order("created_at ASC").
		Find(&bookings).Error
	return bookings, translate(err)
}

func (r *bookingRepo) ListByMembers(ctx context.Context, memberIDs []uint, p Page) ([]*models.Booking, int64, error) {
	q := conn(ctx, r.db).Model(&models.Booking{}).Where("member_id IN ?", memberIDs)
	var bookings []*models.Booking
	total, err := listAndCount(q, p, "created_at DESC", &bookings, "Class")
	return bookings, total, translate(err)
}

func (r *bookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	return translate(conn(ctx, r.db).Omit("Class", "Member").Save(booking).Error)
}

func (r *bookingRepo) CancelByClass(ctx context.Context, classID uint) (int64, error) {
	res := conn(ctx, r.db).Model(&models.Booking{}).
		Where("class_id = ? AND status = ?", classID, models.BookingStatusBooked).
		Update("status", models.BookingStatusCancelled)
	return res.RowsAffected, translate(res.Error)
}
