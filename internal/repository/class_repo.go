package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

type ClassFilter struct {
	Page
	From      *time.Time
	To        *time.Time
	TrainerID uint
	Status    string
	Search    string
}

type ClassRepository interface {
	Create(ctx context.Context, class *models.Class) error
	FindByID(ctx context.Context, gymID, id uint) (*models.Class, error)
	// Lock reads a class by id with a row lock, regardless of gym.
	Lock(ctx context.Context, id uint) (*models.Class, error)
	List(ctx context.Context, gymIDs []uint, f ClassFilter) ([]*models.Class, int64, error)
	CountUpcoming(ctx context.Context, gymID uint, now time.Time) (int64, error)
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, gymID, id uint) error
}

type classRepo struct {
	db *gorm.DB
}

func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) Create(ctx context.Context, class *models.Class) error {
	return translate(conn(ctx, r.db).Omit("Trainer").Create(class).Error)
}

func (r *classRepo) FindByID(ctx context.Context, gymID, id uint) (*models.Class, error) {
	var class models.Class
	err := conn(ctx, r.db).Preload("Trainer").Where("gym_id = ?", gymID).First(&class, id).Error
	if err != nil {
		return nil, translate(err)
	}
	if err := r.fillBookedCounts(ctx, []*models.Class{&class}); err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepo) Lock(ctx context.Context, id uint) (*models.Class, error) {
	var class models.Class
	if err := conn(ctx, r.db).Clauses(forUpdate()).First(&class, id).Error; err != nil {
		return nil, translate(err)
	}
	return &class, nil
}

func (r *classRepo) List(ctx context.Context, gymIDs []uint, f ClassFilter) ([]*models.Class, int64, error) {
	q := conn(ctx, r.db).Model(&models.Class{}).Where("gym_id IN ?", gymIDs)
	if f.From != nil {
		q = q.Where("starts_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("starts_at < ?", *f.To)
	}
	if f.TrainerID != 0 {
		q = q.Where("trainer_id = ?", f.TrainerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		q = q.Where("name ILIKE ?", likePattern(f.Search))
	}
	var classes []*models.Class
	total, err := listAndCount(q, f.Page, "starts_at ASC", &classes, "Trainer")
	if err != nil {
		return nil, 0, translate(err)
	}
	if err := r.fillBookedCounts(ctx, classes); err != nil {
		return nil, 0, err
	}
	return classes, total, nil
}

func (r *classRepo) fillBookedCounts(ctx context.Context, classes []*models.Class) error {
	if len(classes) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.ID)
	}
	var rows []struct {
		ClassID uint
		Count   int64
	}
	err := conn(ctx, r.db).Model(&models.Booking{}).
		Select("class_id, COUNT(*) AS count").
		Where("class_id IN ? AND status = ?", ids, models.BookingStatusBooked).
		Group("class_id").
		Scan(&rows).Error
	if err != nil {
		return translate(err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.ClassID] = row.Count
	}
	for _, c := range classes {
		c.BookedCount = counts[c.ID]
	}
	return nil
}

func (r *classRepo) CountUpcoming(ctx context.Context, gymID uint, now time.Time) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Class{}).
		Where("gym_id = ? AND status = ? AND starts_at >= ?", gymID, models.ClassStatusScheduled, now).
		Count(&count).Error
	return count, translate(err)
}

func (r *classRepo) Update(ctx context.Context, class *models.Class) error {
	return translate(conn(ctx, r.db).Omit("Trainer").Save(class).Error)
}

func (r *classRepo) Delete(ctx context.Context, gymID, id uint) error {
	res := conn(ctx, r.db).Where("gym_id = ?", gymID).Delete(&models.Class{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
