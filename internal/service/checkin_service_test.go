package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
)

type checkInFixture struct {
	svc      *CheckInService
	clock    *clock.Manual
	gyms     *fakeGyms
	members  *fakeMembers
	checkIns *fakeCheckIns
	activity *fakeActivity
	events   *recordedEvents
	tx       *fakeTx
}

func newCheckInFixture(t *testing.T) *checkInFixture {
	t.Helper()
	f := &checkInFixture{
		clock:    clock.NewManual(time.Date(2025, time.June, 2, 7, 0, 0, 0, time.UTC)),
		gyms:     newFakeGyms(&models.Gym{Name: "Downtown", Slug: "downtown", IsActive: true}),
		checkIns: &fakeCheckIns{},
		activity: &fakeActivity{},
		events:   &recordedEvents{},
		tx:       &fakeTx{},
	}
	users := newFakeUsers()
	require.NoError(t, users.Create(context.Background(), &models.User{Email: "ana@example.com", FirstName: "Ana"}))
	f.members = newFakeMembers(users, f.gyms)
	f.svc = NewCheckInService(f.tx, f.gyms, f.members, f.checkIns, f.activity, f.events, f.clock, 12*time.Hour)
	return f
}

func (f *checkInFixture) addMember(t *testing.T, qr, status string, expiry time.Time) *models.Member {
	t.Helper()
	m := &models.Member{
		UserID:     uint(len(f.members.rows) + 1),
		GymID:      1,
		Status:     status,
		StartDate:  f.clock.Now().AddDate(0, -1, 0),
		ExpiryDate: expiry,
		QRCode:     qr,
	}
	require.NoError(t, f.members.Create(context.Background(), m))
	return m
}

func TestScanTogglesInAndOut(t *testing.T) {
	f := newCheckInFixture(t)
	ctx := context.Background()
	f.addMember(t, "qr-1", models.MemberStatusActive, f.clock.Now().AddDate(0, 1, 0))

	in, err := f.svc.Scan(ctx, 1, "qr-1")
	require.NoError(t, err)
	assert.Equal(t, ActionCheckIn, in.Action)
	assert.Equal(t, models.CheckInGranted, in.CheckIn.Status)
	assert.Nil(t, in.CheckIn.CheckOutTime)

	f.clock.Add(90 * time.Minute)
	out, err := f.svc.Scan(ctx, 1, "qr-1")
	require.NoError(t, err)
	assert.Equal(t, ActionCheckOut, out.Action)
	assert.Equal(t, in.CheckIn.ID, out.CheckIn.ID)
	require.NotNil(t, out.CheckIn.CheckOutTime)
	assert.Equal(t, f.clock.Now(), *out.CheckIn.CheckOutTime)

	f.clock.Add(time.Hour)
	again, err := f.svc.Scan(ctx, 1, "qr-1")
	require.NoError(t, err)
	assert.Equal(t, ActionCheckIn, again.Action)
	assert.Len(t, f.checkIns.rows, 2)

	assert.Equal(t, []string{"checkin.granted", "checkin.checkout", "checkin.granted"}, f.events.types())
	assert.Equal(t, []string{"checkin.granted", "checkin.checkout", "checkin.granted"}, f.activity.actions())
	for _, e := range f.events.events {
		assert.Equal(t, TopicCheckIns, e.Topic)
	}
	assert.Equal(t, 3, f.members.locks, "every toggle locks the member row")
}

func TestScanAfterWindowStartsNewSession(t *testing.T) {
	f := newCheckInFixture(t)
	ctx := context.Background()
	f.addMember(t, "qr-1", models.MemberStatusActive, f.clock.Now().AddDate(0, 1, 0))

	first, err := f.svc.Scan(ctx, 1, "qr-1")
	require.NoError(t, err)

	f.clock.Add(12*time.Hour + time.Minute)
	second, err := f.svc.Scan(ctx, 1, "qr-1")
	require.NoError(t, err)

	assert.Equal(t, ActionCheckIn, second.Action)
	assert.NotEqual(t, first.CheckIn.ID, second.CheckIn.ID)
	assert.Nil(t, f.checkIns.rows[0].CheckOutTime, "stale session is left open")
}

func TestScanDenials(t *testing.T) {
	tests := []struct {
		name   string
		status string
		expiry time.Duration
		reason string
	}{
		{name: "suspended", status: models.MemberStatusSuspended, expiry: 720 * time.Hour, reason: DenyMembershipSuspended},
		{name: "cancelled", status: models.MemberStatusCancelled, expiry: 720 * time.Hour, reason: DenyMembershipCancelled},
		{name: "expired status", status: models.MemberStatusExpired, expiry: -time.Hour, reason: DenyMembershipExpired},
		{name: "past expiry", status: models.MemberStatusActive, expiry: -time.Minute, reason: DenyMembershipExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckInFixture(t)
			f.addMember(t, "qr-x", tt.status, f.clock.Now().Add(tt.expiry))

			res, err := f.svc.Scan(context.Background(), 1, "qr-x")
			require.NoError(t, err)
			assert.True(t, res.Denied())
			assert.Equal(t, models.CheckInDenied, res.CheckIn.Status)
			assert.Equal(t, tt.reason, res.CheckIn.DenyReason)
			assert.Equal(t, []string{"checkin.denied"}, f.events.types())
		})
	}
}

func TestScanDeniedWhenGymInactive(t *testing.T) {
	f := newCheckInFixture(t)
	f.gyms.rows[1].IsActive = false
	f.addMember(t, "qr-1", models.MemberStatusActive, f.clock.Now().AddDate(0, 1, 0))

	res, err := f.svc.Scan(context.Background(), 1, "qr-1")
	require.NoError(t, err)
	assert.Equal(t, DenyGymInactive, res.CheckIn.DenyReason)
}

func TestScanDeniedWhenGymFullButCheckoutAllowed(t *testing.T) {
	f := newCheckInFixture(t)
	ctx := context.Background()
	f.gyms.rows[1].Capacity = 1
	f.addMember(t, "qr-1", models.MemberStatusActive, f.clock.Now().AddDate(0, 1, 0))
	f.addMember(t, "qr-2", models.MemberStatusActive, f.clock.Now().AddDate(0, 1, 0))

	_, err := f.svc.Scan(ctx, 1, "qr-1")
	require.NoError(t, err)

	full, err := f.svc.Scan(ctx, 1, "qr-2")
	require.NoError(t, err)
	assert.Equal(t, DenyGymFull, full.CheckIn.DenyReason)

	out, err := f.svc.Scan(ctx, 1, "qr-1")
	require.NoError(t, err)
	assert.Equal(t, ActionCheckOut, out.Action)

	in, err := f.svc.Scan(ctx, 1, "qr-2")
	require.NoError(t, err)
	assert.Equal(t, ActionCheckIn, in.Action)
}

func TestScanUnknownCodeWritesNothing(t *testing.T) {
	f := newCheckInFixture(t)
	f.addMember(t, "qr-1", models.MemberStatusActive, f.clock.Now().AddDate(0, 1, 0))

	_, err := f.svc.Scan(context.Background(), 1, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Scan(context.Background(), 2, "qr-1")
	assert.ErrorIs(t, err, ErrNotFound, "codes are scoped to the gym")

	_, err = f.svc.Scan(context.Background(), 1, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.checkIns.rows)
}

func TestManualCheckInAndInside(t *testing.T) {
	f := newCheckInFixture(t)
	ctx := context.Background()
	m := f.addMember(t, "qr-1", models.MemberStatusActive, f.clock.Now().AddDate(0, 1, 0))

	res, err := f.svc.Manual(ctx, 1, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CheckInMethodManual, res.CheckIn.Method)
	require.NotNil(t, res.Member.User)
	assert.Equal(t, "Ana", res.Member.User.FirstName)

	inside, err := f.svc.Inside(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, inside, 1)

	history, err := f.svc.MemberHistory(ctx, 1, m.ID, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), history.Total)

	_, err = f.svc.List(ctx, 1, repository.CheckInFilter{Status: "maybe"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
