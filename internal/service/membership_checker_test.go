package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
)

func linkTelegram(u *models.User, id int64) {
	u.TelegramID = &id
}

func TestCheckerReactivatesExpiresAndReminds(t *testing.T) {
	f := newMemberFixture()
	ctx := context.Background()
	notifier := &fakeNotifier{}
	checker := NewMembershipChecker(f.svc, notifier, time.Hour, 72*time.Hour)

	suspended, err := f.svc.Create(ctx, 1, CreateMemberDTO{Email: "s@example.com", FirstName: "Sam"})
	require.NoError(t, err)
	_, err = f.svc.Suspend(ctx, 1, suspended.ID, SuspendMemberDTO{Days: 7})
	require.NoError(t, err)

	lapsing, err := f.svc.Create(ctx, 1, CreateMemberDTO{
		Email: "l@example.com", FirstName: "Lee", MembershipType: models.MembershipCustom,
		ExpiryDate: &Date{f.clock.Now().AddDate(0, 0, 8)},
	})
	require.NoError(t, err)

	expiring, err := f.svc.Create(ctx, 1, CreateMemberDTO{
		Email: "e@example.com", FirstName: "Eve", MembershipType: models.MembershipCustom,
		ExpiryDate: &Date{f.clock.Now().AddDate(0, 0, 10)},
	})
	require.NoError(t, err)

	for _, u := range f.users.rows {
		linkTelegram(u, int64(1000+u.ID))
	}

	f.clock.Add(8*24*time.Hour + time.Hour)
	report, err := checker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, CheckReport{Reactivated: 1, Expired: 1, Reminded: 1}, report)

	assert.Equal(t, models.MemberStatusActive, f.members.rows[suspended.ID].Status)
	assert.Equal(t, suspended.ExpiryDate.AddDate(0, 0, 7), f.members.rows[suspended.ID].ExpiryDate)
	assert.Equal(t, models.MemberStatusExpired, f.members.rows[lapsing.ID].Status)
	require.NotNil(t, f.members.rows[expiring.ID].LastReminderAt)
	assert.Len(t, notifier.sent, 3)
	assert.Contains(t, notifier.sent[0].text, "active again")
	assert.Contains(t, notifier.sent[1].text, "expired")
	assert.Contains(t, notifier.sent[2].text, "Downtown")

	systemEntries := 0
	for _, e := range f.activity.entries {
		if e.ActorType == models.ActorSystem && (e.Action == "member.reactivated" || e.Action == "member.expired") {
			systemEntries++
		}
	}
	assert.Equal(t, 2, systemEntries)

	// a second pass on the same day is a no-op
	f.clock.Add(2 * time.Hour)
	report, err = checker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, CheckReport{}, report)
	assert.Len(t, notifier.sent, 3)

	// next day the reminder goes out again
	f.clock.Add(23 * time.Hour)
	report, err = checker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reminded)
}

func TestCheckerSkipsUnlinkedUsers(t *testing.T) {
	f := newMemberFixture()
	ctx := context.Background()
	notifier := &fakeNotifier{}
	checker := NewMembershipChecker(f.svc, notifier, 0, 0)

	_, err := f.svc.Create(ctx, 1, CreateMemberDTO{
		Email: "e@example.com", FirstName: "Eve", MembershipType: models.MembershipCustom,
		ExpiryDate: &Date{f.clock.Now().AddDate(0, 0, 1)},
	})
	require.NoError(t, err)

	report, err := checker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Reminded)

	f.clock.Add(48 * time.Hour)
	report, err = checker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Expired)
	assert.Empty(t, notifier.sent)
}

func TestCheckerStopsOnCancel(t *testing.T) {
	f := newMemberFixture()
	checker := NewMembershipChecker(f.svc, nil, time.Hour, 0)
	ctx, cancel := context.WithCancel(context.Background())

	go checker.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		checker.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("checker did not stop")
	}
}

func TestReminderKeepsChangesMadeWhileNotifying(t *testing.T) {
	f := newMemberFixture()
	ctx := context.Background()
	notifier := &fakeNotifier{}
	checker := NewMembershipChecker(f.svc, notifier, time.Hour, 72*time.Hour)

	m, err := f.svc.Create(ctx, 1, CreateMemberDTO{
		Email: "e@example.com", FirstName: "Eve", MembershipType: models.MembershipCustom,
		ExpiryDate: &Date{f.clock.Now().AddDate(0, 0, 2)},
	})
	require.NoError(t, err)
	linkTelegram(f.users.rows[m.UserID], 4242)

	// the front desk suspends the membership while the reminder is in flight
	notifier.onNotify = func(*models.User) {
		_, err := f.svc.Suspend(ctx, 1, m.ID, SuspendMemberDTO{Days: 10})
		require.NoError(t, err)
	}

	report, err := checker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Reminded)
	require.Len(t, notifier.sent, 1)

	stored := f.members.rows[m.ID]
	assert.Equal(t, models.MemberStatusSuspended, stored.Status)
	require.NotNil(t, stored.SuspensionEndDate)
	assert.Nil(t, stored.LastReminderAt)
}

func TestSuspensionEndingPastExpiryIsReportedExpired(t *testing.T) {
	f := newMemberFixture()
	ctx := context.Background()
	notifier := &fakeNotifier{}
	checker := NewMembershipChecker(f.svc, notifier, time.Hour, time.Hour)

	m, err := f.svc.Create(ctx, 1, CreateMemberDTO{
		Email: "s@example.com", FirstName: "Sam", MembershipType: models.MembershipCustom,
		ExpiryDate: &Date{f.clock.Now().AddDate(0, 0, 2)},
	})
	require.NoError(t, err)
	linkTelegram(f.users.rows[m.UserID], 5151)
	_, err = f.svc.Suspend(ctx, 1, m.ID, SuspendMemberDTO{Days: 7})
	require.NoError(t, err)

	// 7 frozen days push expiry to day 9, which has already passed
	f.clock.Add(9*24*time.Hour + time.Hour)
	report, err := checker.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, CheckReport{Expired: 1}, report)
	assert.Equal(t, models.MemberStatusExpired, f.members.rows[m.ID].Status)
	require.Len(t, notifier.sent, 1)
	assert.NotContains(t, notifier.sent[0].text, "active again")
	assert.Contains(t, notifier.sent[0].text, "expired")
	assert.Contains(t, notifier.sent[0].text, "Downtown")
}
