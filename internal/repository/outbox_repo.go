package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

type OutboxRepository interface {
	Create(ctx context.Context, event *models.OutboxEvent) error
	// Claim locks up to limit deliverable events, stamps claimed_at and returns them.
	// Claims older than claimTTL are considered abandoned and may be taken again.
	Claim(ctx context.Context, limit, maxAttempts int, now time.Time, claimTTL time.Duration) ([]*models.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []uint, at time.Time) error
	MarkFailed(ctx context.Context, ids []uint, reason string) error
}

type outboxRepo struct {
	db *gorm.DB
}

func NewOutboxRepo(db *gorm.DB) OutboxRepository {
	return &outboxRepo{db: db}
}

func (r *outboxRepo) Create(ctx context.Context, event *models.OutboxEvent) error {
	return translate(conn(ctx, r.db).Create(event).Error)
}

func (r *outboxRepo) Claim(ctx context.Context, limit, maxAttempts int, now time.Time, claimTTL time.Duration) ([]*models.OutboxEvent, error) {
	var events []*models.OutboxEvent
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("published_at IS NULL AND attempts < ? AND (claimed_at IS NULL OR claimed_at < ?)",
				maxAttempts, now.Add(-claimTTL)).
			Order("id ASC").
			Limit(limit).
			Find(&events).Error
		if err != nil || len(events) == 0 {
			return err
		}
		ids := make([]uint, 0, len(events))
		for _, e := range events {
			ids = append(ids, e.ID)
			e.ClaimedAt = &now
		}
		return tx.Model(&models.OutboxEvent{}).Where("id IN ?", ids).Update("claimed_at", now).Error
	})
	return events, translate(err)
}

func (r *outboxRepo) MarkPublished(ctx context.Context, ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return translate(conn(ctx, r.db).Model(&models.OutboxEvent{}).
		Where("id IN ?", ids).
		Update("published_at", at).Error)
}

func (r *outboxRepo) MarkFailed(ctx context.Context, ids []uint, reason string) error {
	if len(ids) == 0 {
		return nil
	}
	return translate(conn(ctx, r.db).Model(&models.OutboxEvent{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"claimed_at": nil,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
		}).Error)
}
