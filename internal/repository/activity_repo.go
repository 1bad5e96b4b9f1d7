package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

type ActivityLogFilter struct {
	Page
	EntityType string
	Action     string
}

type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, gymID uint, f ActivityLogFilter) ([]*models.ActivityLog, int64, error)
}

type activityLogRepo struct {
	db *gorm.DB
}

func NewActivityLogRepo(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepo{db: db}
}

func (r *activityLogRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	return translate(conn(ctx, r.db).Create(entry).Error)
}

func (r *activityLogRepo) List(ctx context.Context, gymID uint, f ActivityLogFilter) ([]*models.ActivityLog, int64, error) {
	q := conn(ctx, r.db).Model(&models.ActivityLog{}).Where("gym_id = ?", gymID)
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	var entries []*models.ActivityLog
	total, err := listAndCount(q, f.Page, "created_at DESC, id DESC", &entries)
	return entries, total, translate(err)
}
