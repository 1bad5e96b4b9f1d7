package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

type MemberFilter struct {
	Page
	Search string
	Status string
}

type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	// FindByID returns the membership only if it belongs to gymID.
	FindByID(ctx context.Context, gymID, id uint) (*models.Member, error)
	// Lock re-reads the membership with a row lock; only meaningful inside a transaction.
	Lock(ctx context.Context, id uint) (*models.Member, error)
	FindByQRCode(ctx context.Context, gymID uint, code string) (*models.Member, error)
	FindByUserAndGym(ctx context.Context, userID, gymID uint) (*models.Member, error)
	FindByUser(ctx context.Context, userID uint) ([]*models.Member, error)
	List(ctx context.Context, gymID uint, f MemberFilter) ([]*models.Member, int64, error)
	Update(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, gymID, id uint) error

	FindSuspensionsDue(ctx context.Context, now time.Time) ([]*models.Member, error)
	FindLapsed(ctx context.Context, now time.Time) ([]*models.Member, error)
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Member, error)
	// StampReminder sets last_reminder_at on a still-active membership and reports
	// whether a row was changed. No other column is written.
	StampReminder(ctx context.Context, id uint, at time.Time) (bool, error)
	CountByStatus(ctx context.Context, gymID uint) (map[string]int64, error)
}

type memberRepo struct {
	db *gorm.DB
}

func NewMemberRepo(db *gorm.DB) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) Create(ctx context.Context, member *models.Member) error {
	return translate(conn(ctx, r.db).Omit("User", "Gym").Create(member).Error)
}

func (r *memberRepo) FindByID(ctx context.Context, gymID, id uint) (*models.Member, error) {
	var member models.Member
	err := conn(ctx, r.db).Preload("User").
		Where("gym_id = ?", gymID).
		First(&member, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *memberRepo) Lock(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	if err := conn(ctx, r.db).Clauses(forUpdate()).First(&member, id).Error; err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *memberRepo) FindByQRCode(ctx context.Context, gymID uint, code string) (*models.Member, error) {
	var member models.Member
	err := conn(ctx, r.db).Preload("User").
		Where("gym_id = ? AND qr_code = ?", gymID, code).
		First(&member).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *memberRepo) FindByUserAndGym(ctx context.Context, userID, gymID uint) (*models.Member, error) {
	var member models.Member
	err := conn(ctx, r.db).Where("user_id = ? AND gym_id = ?", userID, gymID).First(&member).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *memberRepo) FindByUser(ctx context.Context, userID uint) ([]*models.Member, error) {
	var members []*models.Member
	err := conn(ctx, r.db).Preload("Gym").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&members).Error
	return members, translate(err)
}

func (r *memberRepo) List(ctx context.Context, gymID uint, f MemberFilter) ([]*models.Member, int64, error) {
	q := conn(ctx, r.db).Model(&models.Member{}).
		Joins("JOIN users ON users.id = members.user_id AND users.deleted_at IS NULL").
		Where("members.gym_id = ?", gymID)
	if f.Status != "" {
		q = q.Where("members.status = ?", f.Status)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		q = q.Where(
			"users.first_name ILIKE ? OR users.last_name ILIKE ? OR users.email ILIKE ? OR users.phone ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	var members []*models.Member
	total, err := listAndCount(q, f.Page, "members.created_at DESC", &members, "User")
	return members, total, translate(err)
}

func (r *memberRepo) Update(ctx context.Context, member *models.Member) error {
	return translate(conn(ctx, r.db).Omit("User", "Gym").Save(member).Error)
}

func (r *memberRepo) Delete(ctx context.Context, gymID, id uint) error {
	res := conn(ctx, r.db).Where("gym_id = ?", gymID).Delete(&models.Member{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *memberRepo) FindSuspensionsDue(ctx context.Context, now time.Time) ([]*models.Member, error) {
	var members []*models.Member
	err := conn(ctx, r.db).Preload("User").Preload("Gym").
		Where("status = ? AND suspension_end_date IS NOT NULL AND suspension_end_date <= ?", models.MemberStatusSuspended, now).
		Find(&members).Error
	return members, translate(err)
}

func (r *memberRepo) FindLapsed(ctx context.Context, now time.Time) ([]*models.Member, error) {
	var members []*models.Member
	err := conn(ctx, r.db).Preload("User").Preload("Gym").
		Where("status = ? AND expiry_date < ?", models.MemberStatusActive, now).
		Find(&members).Error
	return members, translate(err)
}

func (r *memberRepo) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Member, error) {
	var members []*models.Member
	err := conn(ctx, r.db).Preload("User").Preload("Gym").
		Where("status = ? AND expiry_date >= ? AND expiry_date < ?", models.MemberStatusActive, from, to).
		Order("expiry_date ASC").
		Find(&members).Error
	return members, translate(err)
}

func (r *memberRepo) StampReminder(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := conn(ctx, r.db).Model(&models.Member{}).
		Where("id = ? AND status = ?", id, models.MemberStatusActive).
		UpdateColumn("last_reminder_at", at)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *memberRepo) CountByStatus(ctx context.Context, gymID uint) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := conn(ctx, r.db).Model(&models.Member{}).
		Select("status, COUNT(*) AS count").
		Where("gym_id = ?", gymID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
