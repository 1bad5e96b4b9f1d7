package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/observability"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/pkg/utils"
)

const (
	DefaultCheckInterval  = time.Hour
	DefaultReminderWindow = 72 * time.Hour
	reminderCooldown      = 24 * time.Hour
)

var errNoTransition = errors.New("membership no longer eligible")

// CheckReport summarises one checker pass.
type CheckReport struct {
	Reactivated int
	Expired     int
	Reminded    int
}

// MembershipChecker periodically lifts due suspensions, expires lapsed memberships and
// sends expiring-soon reminders.
type MembershipChecker struct {
	members        repository.MemberRepository
	service        *MemberService
	notifier       Notifier
	clock          clock.Clock
	interval       time.Duration
	reminderWindow time.Duration
	done           chan struct{}
}

func NewMembershipChecker(service *MemberService, notifier Notifier, interval, reminderWindow time.Duration) *MembershipChecker {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if reminderWindow <= 0 {
		reminderWindow = DefaultReminderWindow
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &MembershipChecker{
		members:        service.members,
		service:        service,
		notifier:       notifier,
		clock:          service.clock,
		interval:       interval,
		reminderWindow: reminderWindow,
		done:           make(chan struct{}),
	}
}

// Start runs a pass immediately and then on every tick until ctx is cancelled.
// It should be called in a goroutine.
func (c *MembershipChecker) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer func() {
		ticker.Stop()
		close(c.done)
	}()

	for {
		report, err := c.RunOnce(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			utils.Log.Errorf("membership checker: %v", err)
		} else if report.Reactivated+report.Expired+report.Reminded > 0 {
			utils.Log.Infof("membership checker: reactivated=%d expired=%d reminded=%d",
				report.Reactivated, report.Expired, report.Reminded)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait blocks until Start has returned.
func (c *MembershipChecker) Wait() {
	<-c.done
}

// RunOnce performs one pass. Failures on single memberships are logged and skipped.
func (c *MembershipChecker) RunOnce(ctx context.Context) (CheckReport, error) {
	var report CheckReport
	now := c.clock.Now()

	due, err := c.members.FindSuspensionsDue(ctx, now)
	if err != nil {
		return report, fmt.Errorf("find due suspensions: %w", err)
	}
	for _, m := range due {
		updated, err := c.apply(ctx, m, "reactivated", func(m *models.Member, now time.Time) (map[string]any, error) {
			if m.Status != models.MemberStatusSuspended || m.SuspensionEndDate == nil || m.SuspensionEndDate.After(now) {
				return nil, errNoTransition
			}
			return reactivateChange(m, now)
		})
		if updated == nil {
			c.skip(m, err)
			continue
		}
		// The frozen days may not cover the time spent suspended.
		if updated.Status == models.MemberStatusExpired {
			report.Expired++
			observability.RecordMembershipTransition("expired")
			c.notify(ctx, updated, fmt.Sprintf("Your suspension%s has ended but the membership expired on %s. Renew it at the front desk.",
				atGym(updated), updated.ExpiryDate.Format("2006-01-02")))
			continue
		}
		report.Reactivated++
		observability.RecordMembershipTransition("reactivated")
		c.notify(ctx, updated, fmt.Sprintf("Your membership%s is active again. New expiry date: %s.",
			atGym(updated), updated.ExpiryDate.Format("2006-01-02")))
	}

	lapsed, err := c.members.FindLapsed(ctx, now)
	if err != nil {
		return report, fmt.Errorf("find lapsed memberships: %w", err)
	}
	for _, m := range lapsed {
		updated, err := c.apply(ctx, m, "expired", func(m *models.Member, now time.Time) (map[string]any, error) {
			if m.Status != models.MemberStatusActive || !m.ExpiryDate.Before(now) {
				return nil, errNoTransition
			}
			m.Status = models.MemberStatusExpired
			return nil, nil
		})
		if updated == nil {
			c.skip(m, err)
			continue
		}
		report.Expired++
		observability.RecordMembershipTransition("expired")
		c.notify(ctx, updated, fmt.Sprintf("Your membership%s expired on %s. Renew it at the front desk.",
			atGym(updated), updated.ExpiryDate.Format("2006-01-02")))
	}

	expiring, err := c.members.FindExpiringBetween(ctx, now, now.Add(c.reminderWindow))
	if err != nil {
		return report, fmt.Errorf("find expiring memberships: %w", err)
	}
	for _, m := range expiring {
		if !linked(m.User) || (m.LastReminderAt != nil && now.Sub(*m.LastReminderAt) < reminderCooldown) {
			continue
		}
		days := ceilDays(m.ExpiryDate.Sub(now))
		text := fmt.Sprintf("Your membership%s expires on %s (in %d day(s)).", atGym(m), m.ExpiryDate.Format("2006-01-02"), days)
		if err := c.notifier.Notify(ctx, m.User, text); err != nil {
			utils.Log.Warnf("membership checker: reminder for member %d: %v", m.ID, err)
			continue
		}
		stamped, err := c.members.StampReminder(ctx, m.ID, now)
		if err != nil {
			utils.Log.Warnf("membership checker: stamp reminder for member %d: %v", m.ID, err)
			continue
		}
		if !stamped {
			continue
		}
		observability.RecordReminderSent()
		report.Reminded++
	}

	return report, nil
}

func (c *MembershipChecker) apply(ctx context.Context, m *models.Member, kind string, change memberChange) (*models.Member, error) {
	var updated *models.Member
	err := c.service.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = c.service.applyLocked(ctx, m, kind, change)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *MembershipChecker) skip(m *models.Member, err error) {
	if err != nil && !errors.Is(err, errNoTransition) {
		utils.Log.Warnf("membership checker: member %d: %v", m.ID, err)
	}
}

func (c *MembershipChecker) notify(ctx context.Context, m *models.Member, text string) {
	if !linked(m.User) {
		return
	}
	if err := c.notifier.Notify(ctx, m.User, text); err != nil {
		utils.Log.Warnf("membership checker: notify member %d: %v", m.ID, err)
	}
}

func linked(u *models.User) bool {
	return u != nil && u.TelegramID != nil
}

func atGym(m *models.Member) string {
	if m.Gym == nil || m.Gym.Name == "" {
		return ""
	}
	return " at " + m.Gym.Name
}
