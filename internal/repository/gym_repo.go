package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

type GymFilter struct {
	Page
	Search string
	// IDs restricts the result to these gyms when non-nil (gym-scoped admins).
	IDs []uint
}

type GymRepository interface {
	Create(ctx context.Context, gym *models.Gym) error
	FindAll(ctx context.Context, f GymFilter) ([]*models.Gym, int64, error)
	FindByID(ctx context.Context, id uint) (*models.Gym, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, gym *models.Gym) error
	Delete(ctx context.Context, id uint) error
}

type gymRepo struct {
	db *gorm.DB
}

func NewGymRepo(db *gorm.DB) GymRepository {
	return &gymRepo{db: db}
}

func (r *gymRepo) Create(ctx context.Context, gym *models.Gym) error {
	return translate(conn(ctx, r.db).Create(gym).Error)
}

func (r *gymRepo) FindAll(ctx context.Context, f GymFilter) ([]*models.Gym, int64, error) {
	q := conn(ctx, r.db).Model(&models.Gym{})
	if f.IDs != nil {
		q = q.Where("id IN ?", f.IDs)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		q = q.Where("name ILIKE ? OR city ILIKE ? OR email ILIKE ?", pattern, pattern, pattern)
	}
	var gyms []*models.Gym
	total, err := listAndCount(q, f.Page, "name ASC", &gyms)
	return gyms, total, translate(err)
}

func (r *gymRepo) FindByID(ctx context.Context, id uint) (*models.Gym, error) {
	var gym models.Gym
	if err := conn(ctx, r.db).First(&gym, id).Error; err != nil {
		return nil, translate(err)
	}
	return &gym, nil
}

func (r *gymRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Unscoped().Model(&models.Gym{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, translate(err)
}

func (r *gymRepo) Update(ctx context.Context, gym *models.Gym) error {
	return translate(conn(ctx, r.db).Save(gym).Error)
}

func (r *gymRepo) Delete(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Delete(&models.Gym{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
