package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

type SpecialtyRepository interface {
	Create(ctx context.Context, specialty *models.Specialty) error
	FindAll(ctx context.Context) ([]*models.Specialty, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Specialty, error)
	Delete(ctx context.Context, id uint) error
}

type specialtyRepo struct {
	db *gorm.DB
}

func NewSpecialtyRepo(db *gorm.DB) SpecialtyRepository {
	return &specialtyRepo{db: db}
}

func (r *specialtyRepo) Create(ctx context.Context, specialty *models.Specialty) error {
	return translate(conn(ctx, r.db).Create(specialty).Error)
}

func (r *specialtyRepo) FindAll(ctx context.Context) ([]*models.Specialty, error) {
	var specialties []*models.Specialty
	err := conn(ctx, r.db).Order("name ASC").Find(&specialties).Error
	return specialties, translate(err)
}

func (r *specialtyRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Specialty, error) {
	specialties := []models.Specialty{}
	if len(ids) == 0 {
		return specialties, nil
	}
	err := conn(ctx, r.db).Where("id IN ?", ids).Find(&specialties).Error
	return specialties, translate(err)
}

func (r *specialtyRepo) Delete(ctx context.Context, id uint) error {
	db := conn(ctx, r.db)
	if err := db.Exec("DELETE FROM trainer_specialties WHERE specialty_id = ?", id).Error; err != nil {
		return translate(err)
	}
	res := db.Delete(&models.Specialty{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
