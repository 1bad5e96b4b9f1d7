package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

type TrainerFilter struct {
	Page
	Search      string
	SpecialtyID uint
	ActiveOnly  bool
}

type TrainerRepository interface {
	Create(ctx context.Context, trainer *models.Trainer) error
	FindByID(ctx context.Context, gymID, id uint) (*models.Trainer, error)
	List(ctx context.Context, gymID uint, f TrainerFilter) ([]*models.Trainer, int64, error)
	// Update saves the trainer and, when specialties is non-nil, replaces its specialties.
	Update(ctx context.Context, trainer *models.Trainer, specialties []models.Specialty) error
	Delete(ctx context.Context, gymID, id uint) error
}

type trainerRepo struct {
	db *gorm.DB
}

func NewTrainerRepo(db *gorm.DB) TrainerRepository {
	return &trainerRepo{db: db}
}

func (r *trainerRepo) Create(ctx context.Context, trainer *models.Trainer) error {
	return translate(conn(ctx, r.db).Create(trainer).Error)
}

func (r *trainerRepo) FindByID(ctx context.Context, gymID, id uint) (*models.Trainer, error) {
	var trainer models.Trainer
	err := conn(ctx, r.db).Preload("Specialties").Where("gym_id = ?", gymID).First(&trainer, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &trainer, nil
}

func (r *trainerRepo) List(ctx context.Context, gymID uint, f TrainerFilter) ([]*models.Trainer, int64, error) {
	q := conn(ctx, r.db).Model(&models.Trainer{}).Where("trainers.gym_id = ?", gymID)
	if f.ActiveOnly {
		q = q.Where("trainers.is_active = ?", true)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		q = q.Where("trainers.first_name ILIKE ? OR trainers.last_name ILIKE ? OR trainers.email ILIKE ?", pattern, pattern, pattern)
	}
	if f.SpecialtyID != 0 {
		q = q.Where("EXISTS (SELECT 1 FROM trainer_specialties ts WHERE ts.trainer_id = trainers.id AND ts.specialty_id = ?)", f.SpecialtyID)
	}
	var trainers []*models.Trainer
	total, err := listAndCount(q, f.Page, "trainers.last_name ASC, trainers.first_name ASC", &trainers, "Specialties")
	return trainers, total, translate(err)
}

func (r *trainerRepo) Update(ctx context.Context, trainer *models.Trainer, specialties []models.Specialty) error {
	db := conn(ctx, r.db)
	if err := db.Omit("Specialties").Save(trainer).Error; err != nil {
		return translate(err)
	}
	if specialties == nil {
		return nil
	}
	if err := db.Model(trainer).Association("Specialties").Replace(specialties); err != nil {
		return translate(err)
	}
	trainer.Specialties = specialties
	return nil
}

func (r *trainerRepo) Delete(ctx context.Context, gymID, id uint) error {
	res := conn(ctx, r.db).Where("gym_id = ?", gymID).Delete(&models.Trainer{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
