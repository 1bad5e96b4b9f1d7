package service

import (
	"time"

	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

const (
	MinSuspensionDays = 1
	MaxSuspensionDays = 365
	maxRenewMonths    = 36
	day               = 24 * time.Hour
)

// addMonths moves t forward by n calendar months, clamping to the last day of the
// target month (Jan 31 + 1 month = Feb 28/29).
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// ceilDays rounds a duration up to whole days; zero or negative durations are 0.
func ceilDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	return days
}

// membershipWindow resolves start and expiry for a new membership.
func membershipWindow(membershipType string, start, expiry *time.Time, now time.Time) (time.Time, time.Time, error) {
	if !models.ValidMembershipType(membershipType) {
		return time.Time{}, time.Time{}, invalid("unknown membership type %q", membershipType)
	}
	from := clock.StartOfDay(now)
	if start != nil {
		from = *start
	}
	var until time.Time
	switch {
	case expiry != nil:
		until = *expiry
	case membershipType == models.MembershipCustom:
		return time.Time{}, time.Time{}, invalid("expiryDate is required for custom memberships")
	default:
		until = addMonths(from, models.MembershipMonths(membershipType))
	}
	if !until.After(from) {
		return time.Time{}, time.Time{}, invalid("expiryDate must be after startDate")
	}
	return from, until, nil
}

// statusForExpiry is the status of a non-suspended, non-cancelled membership.
func statusForExpiry(expiry, now time.Time) string {
	if expiry.Before(now) {
		return models.MemberStatusExpired
	}
	return models.MemberStatusActive
}

func suspend(m *models.Member, days int, until *time.Time, reason string, now time.Time) error {
	if m.Status != models.MemberStatusActive {
		return invalid("only active memberships can be suspended (status is %s)", m.Status)
	}
	var end time.Time
	switch {
	case until != nil:
		end = *until
		if !end.After(now) {
			return invalid("suspension end must be in the future")
		}
		if end.After(now.Add(MaxSuspensionDays * day)) {
			return invalid("suspension cannot exceed %d days", MaxSuspensionDays)
		}
	case days >= MinSuspensionDays && days <= MaxSuspensionDays:
		end = now.Add(time.Duration(days) * day)
	default:
		return invalid("days must be between %d and %d", MinSuspensionDays, MaxSuspensionDays)
	}
	suspendedAt := now
	m.Status = models.MemberStatusSuspended
	m.SuspendedAt = &suspendedAt
	m.SuspensionEndDate = &end
	m.SuspensionReason = reason
	return nil
}

// reactivate lifts a suspension and extends expiry by the frozen time, counted up to the
// earlier of now and the planned suspension end. It returns the number of days added.
func reactivate(m *models.Member, now time.Time) (int, error) {
	if m.Status != models.MemberStatusSuspended {
		return 0, invalid("membership is not suspended (status is %s)", m.Status)
	}
	frozen := 0
	if m.SuspendedAt != nil {
		end := now
		if m.SuspensionEndDate != nil && m.SuspensionEndDate.Before(end) {
			end = *m.SuspensionEndDate
		}
		frozen = ceilDays(end.Sub(*m.SuspendedAt))
	}
	m.ExpiryDate = m.ExpiryDate.AddDate(0, 0, frozen)
	m.Status = statusForExpiry(m.ExpiryDate, now)
	m.SuspendedAt = nil
	m.SuspensionEndDate = nil
	m.SuspensionReason = ""
	return frozen, nil
}

// renew extends expiry from the later of the current expiry and now.
func renew(m *models.Member, months int, membershipType string, now time.Time) error {
	if membershipType != "" {
		if !models.ValidMembershipType(membershipType) || membershipType == models.MembershipCustom {
			return invalid("cannot renew with membership type %q", membershipType)
		}
		if months == 0 {
			months = models.MembershipMonths(membershipType)
		}
	}
	if months == 0 {
		months = models.MembershipMonths(m.MembershipType)
	}
	if months < 1 || months > maxRenewMonths {
		return invalid("months must be between 1 and %d", maxRenewMonths)
	}
	base := m.ExpiryDate
	if base.Before(now) {
		base = now
	}
	m.ExpiryDate = addMonths(base, months)
	if membershipType != "" {
		m.MembershipType = membershipType
	}
	if m.Status != models.MemberStatusSuspended {
		m.Status = models.MemberStatusActive
	}
	return nil
}

func cancel(m *models.Member) error {
	if m.Status == models.MemberStatusCancelled {
		return invalid("membership is already cancelled")
	}
	m.Status = models.MemberStatusCancelled
	m.SuspendedAt = nil
	m.SuspensionEndDate = nil
	return nil
}

// denyReason returns why a membership may not enter the gym, or "" when it may.
func denyReason(m *models.Member, now time.Time) string {
	switch m.Status {
	case models.MemberStatusSuspended:
		return DenyMembershipSuspended
	case models.MemberStatusCancelled:
		return DenyMembershipCancelled
	case models.MemberStatusExpired:
		return DenyMembershipExpired
	}
	if m.ExpiryDate.Before(now) {
		return DenyMembershipExpired
	}
	return ""
}
