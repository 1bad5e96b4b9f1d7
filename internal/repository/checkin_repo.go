package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

type CheckInFilter struct {
	Page
	From     *time.Time
	To       *time.Time
	Status   string
	MemberID uint
}

type CheckInRepository interface {
	Create(ctx context.Context, checkIn *models.CheckIn) error
	// FindOpenSession returns the latest granted check-in of the member that has no
	// check-out and started at or after since.
	FindOpenSession(ctx context.Context, memberID uint, since time.Time) (*models.CheckIn, error)
	Update(ctx context.Context, checkIn *models.CheckIn) error
	List(ctx context.Context, gymID uint, f CheckInFilter) ([]*models.CheckIn, int64, error)
	ListInside(ctx context.Context, gymID uint, since time.Time) ([]*models.CheckIn, error)
	CountInside(ctx context.Context, gymID uint, since time.Time) (int64, error)
	CountGrantedSince(ctx context.Context, gymID uint, since time.Time) (int64, error)
	ListByMembers(ctx context.Context, memberIDs []uint, p Page) ([]*models.CheckIn, int64, error)
}

type checkInRepo struct {
	db *gorm.DB
}

func NewCheckInRepo(db *gorm.DB) CheckInRepository {
	return &checkInRepo{db: db}
}

func (r *checkInRepo) Create(ctx context.Context, checkIn *models.CheckIn) error {
	return translate(conn(ctx, r.db).Omit("Member").Create(checkIn).Error)
}

func (r *checkInRepo) FindOpenSession(ctx context.Context, memberID uint, since time.Time) (*models.CheckIn, error) {
	var checkIn models.CheckIn
	err := conn(ctx, r.db).
		Where("member_id = ? AND status = ? AND check_out_time IS NULL AND check_in_time >= ?",
			memberID, models.CheckInGranted, since).
		Order("check_in_time DESC").
		First(&checkIn).Error
	if err != nil {
		return nil, translate(err)
	}
	return &checkIn, nil
}

func (r *checkInRepo) Update(ctx context.Context, checkIn *models.CheckIn) error {
	return translate(conn(ctx, r.db).Omit("Member").Save(checkIn).Error)
}

func (r *checkInRepo) List(ctx context.Context, gymID uint, f CheckInFilter) ([]*models.CheckIn, int64, error) {
	q := conn(ctx, r.db).Model(&models.CheckIn{}).Where("gym_id = ?", gymID)
	if f.From != nil {
		q = q.Where("check_in_time >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("check_in_time < ?", *f.To)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.MemberID != 0 {
		q = q.Where("member_id = ?", f.MemberID)
	}
	var checkIns []*models.CheckIn
	total, err := listAndCount(q, f.Page, "check_in_time DESC", &checkIns, "Member.User")
	return checkIns, total, translate(err)
}

func (r *checkInRepo) inside(ctx context.Context, gymID uint, since time.Time) *gorm.DB {
	return conn(ctx, r.db).Model(&models.CheckIn{}).
		Where("gym_id = ? AND status = ? AND check_out_time IS NULL AND check_in_time >= ?",
			gymID, models.CheckInGranted, since)
}

func (r *checkInRepo) ListInside(ctx context.Context, gymID uint, since time.Time) ([]*models.CheckIn, error) {
	var checkIns []*models.CheckIn
	err := r.inside(ctx, gymID, since).Preload("Member.User").Order("check_in_time ASC").Find(&checkIns).Error
	return checkIns, translate(err)
}

func (r *checkInRepo) CountInside(ctx context.Context, gymID uint, since time.Time) (int64, error) {
	var count int64
	err := r.inside(ctx, gymID, since).Count(&count).Error
	return count, translate(err)
}

func (r *checkInRepo) CountGrantedSince(ctx context.Context, gymID uint, since time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.CheckIn{}).
		Where("gym_id = ? AND status = ? AND check_in_time >= ?", gymID, models.CheckInGranted, since).
		Count(&count).Error
	return count, translate(err)
}

func (r *checkInRepo) ListByMembers(ctx context.Context, memberIDs []uint, p Page) ([]*models.CheckIn, int64, error) {
	q := conn(ctx, r.db).Model(&models.CheckIn{}).Where("member_id IN ?", memberIDs)
	var checkIns []*models.CheckIn
	total, err := listAndCount(q, p, "check_in_time DESC", &checkIns)
	return checkIns, total, translate(err)
}
