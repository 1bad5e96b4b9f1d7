package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
)

const (
	TopicCheckIns    = "gym.checkins"
	TopicMemberships = "gym.memberships"
)

// Event is a domain event handed to the outbox inside the caller's transaction.
type Event struct {
	AggregateType string
	AggregateID   uint
	Type          string
	Topic         string
	Key           string
	Payload       map[string]any
}

type EventRecorder interface {
	Record(ctx context.Context, event Event) error
}

// NopRecorder drops events; used when no broker is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) error { return nil }

// Notifier delivers a short text message to a user (Telegram when linked).
type Notifier interface {
	Notify(ctx context.Context, user *models.User, text string) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, *models.User, string) error { return nil }

// activityLogger writes audit entries; errors are returned so that a failing insert
// rolls back the surrounding transaction.
type activityLogger struct {
	repo repository.ActivityLogRepository
}

func (l activityLogger) log(ctx context.Context, gymID uint, action, entityType string, entityID uint, metadata map[string]any) error {
	if l.repo == nil {
		return nil
	}
	actor := ActorFrom(ctx)
	entry := &models.ActivityLog{
		ActorType:  actor.Type,
		Action:     action,
		EntityType: entityType,
		Metadata:   datatypes.JSONMap(metadata),
	}
	if actor.ID != 0 {
		id := actor.ID
		entry.ActorID = &id
	}
	if gymID != 0 {
		entry.GymID = &gymID
	}
	if entityID != 0 {
		entry.EntityID = &entityID
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("activity log %s: %w", action, err)
	}
	return nil
}

func memberEvent(eventType string, m *models.Member, extra map[string]any) Event {
	payload := map[string]any{
		"memberId":       m.ID,
		"gymId":          m.GymID,
		"userId":         m.UserID,
		"status":         m.Status,
		"membershipType": m.MembershipType,
		"expiryDate":     m.ExpiryDate,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return Event{
		AggregateType: "member",
		AggregateID:   m.ID,
		Type:          eventType,
		Topic:         TopicMemberships,
		Key:           fmt.Sprintf("%d", m.GymID),
		Payload:       payload,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
