package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

type EquipmentFilter struct {
	Page
	Search   string
	Status   string
	Category string
}

type EquipmentRepository interface {
	Create(ctx context.Context, item *models.Equipment) error
	FindByID(ctx context.Context, gymID, id uint) (*models.Equipment, error)
	List(ctx context.Context, gymID uint, f EquipmentFilter) ([]*models.Equipment, int64, error)
	CountByStatus(ctx context.Context, gymID uint) (map[string]int64, error)
	Update(ctx context.Context, item *models.Equipment) error
	Delete(ctx context.Context, gymID, id uint) error
}

type equipmentRepo struct {
	db *gorm.DB
}

func NewEquipmentRepo(db *gorm.DB) EquipmentRepository {
	return &equipmentRepo{db: db}
}

func (r *equipmentRepo) Create(ctx context.Context, item *models.Equipment) error {
	return translate(conn(ctx, r.db).Create(item).Error)
}

func (r *equipmentRepo) FindByID(ctx context.Context, gymID, id uint) (*models.Equipment, error) {
	var item models.Equipment
	if err := conn(ctx, r.db).Where("gym_id = ?", gymID).First(&item, id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *equipmentRepo) List(ctx context.Context, gymID uint, f EquipmentFilter) ([]*models.Equipment, int64, error) {
	q := conn(ctx, r.db).Model(&models.Equipment{}).Where("gym_id = ?", gymID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		q = q.Where("name ILIKE ? OR brand ILIKE ? OR serial_number ILIKE ?", pattern, pattern, pattern)
	}
	var items []*models.Equipment
	total, err := listAndCount(q, f.Page, "name ASC", &items)
	return items, total, translate(err)
}

func (r *equipmentRepo) CountByStatus(ctx context.Context, gymID uint) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := conn(ctx, r.db).Model(&models.Equipment{}).
		Select("status, COALESCE(SUM(quantity), 0) AS count").
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

func (r *equipmentRepo) Update(ctx context.Context, item *models.Equipment) error {
	return translate(conn(ctx, r.db).Save(item).Error)
}

func (r *equipmentRepo) Delete(ctx context.Context, gymID, id uint) error {
	res := conn(ctx, r.db).Where("gym_id = ?", gymID).Delete(&models.Equipment{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
