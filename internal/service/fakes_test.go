package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
)

type fakeTx struct{ calls int }

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeGyms struct {
	rows map[uint]*models.Gym
	next uint
}

func newFakeGyms(gyms ...*models.Gym) *fakeGyms {
	f := &fakeGyms{rows: map[uint]*models.Gym{}}
	for _, g := range gyms {
		_ = f.Create(context.Background(), g)
	}
	return f
}

func (f *fakeGyms) Create(_ context.Context, gym *models.Gym) error {
	for _, g := range f.rows {
		if g.Slug == gym.Slug && gym.Slug != "" {
			return repository.ErrDuplicate
		}
	}
	if gym.ID == 0 {
		f.next++
		gym.ID = f.next
	} else if gym.ID > f.next {
		f.next = gym.ID
	}
	f.rows[gym.ID] = gym
	return nil
}

func (f *fakeGyms) FindAll(_ context.Context, p repository.GymFilter) ([]*models.Gym, int64, error) {
	var out []*models.Gym
	for _, g := range f.rows {
		out = append(out, g)
	}
	return out, int64(len(out)), nil
}

func (f *fakeGyms) FindByID(_ context.Context, id uint) (*models.Gym, error) {
	if g, ok := f.rows[id]; ok {
		return g, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeGyms) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, g := range f.rows {
		if g.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGyms) Update(_ context.Context, gym *models.Gym) error {
	f.rows[gym.ID] = gym
	return nil
}

func (f *fakeGyms) Delete(_ context.Context, id uint) error {
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeUsers struct {
	rows map[uint]*models.User
	next uint
}

func newFakeUsers() *fakeUsers { return &fakeUsers{rows: map[uint]*models.User{}} }

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	for _, u := range f.rows {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	f.next++
	user.ID = f.next
	f.rows[user.ID] = user
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := f.rows[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.rows {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) FindByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	for _, u := range f.rows {
		if u.TelegramID != nil && *u.TelegramID == telegramID {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) FindByLinkCode(_ context.Context, code string) (*models.User, error) {
	for _, u := range f.rows {
		if u.TelegramLinkCode == code {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) Update(_ context.Context, user *models.User) error {
	for _, u := range f.rows {
		if u.ID != user.ID && user.TelegramLinkCode != "" && u.TelegramLinkCode == user.TelegramLinkCode {
			return repository.ErrDuplicate
		}
	}
	f.rows[user.ID] = user
	return nil
}

type fakeMembers struct {
	rows  map[uint]*models.Member
	users *fakeUsers
	gyms  *fakeGyms
	next  uint
	locks int
}

func newFakeMembers(users *fakeUsers, gyms *fakeGyms) *fakeMembers {
	return &fakeMembers{rows: map[uint]*models.Member{}, users: users, gyms: gyms}
}

// copyOf returns a detached row the way a database read would.
func (f *fakeMembers) copyOf(m *models.Member) *models.Member {
	c := *m
	if u, ok := f.users.rows[m.UserID]; ok {
		c.User = u
	}
	if f.gyms != nil {
		if g, ok := f.gyms.rows[m.GymID]; ok {
			c.Gym = g
		}
	}
	return &c
}

func (f *fakeMembers) Create(_ context.Context, member *models.Member) error {
	for _, m := range f.rows {
		if m.UserID == member.UserID && m.GymID == member.GymID {
			return repository.ErrDuplicate
		}
	}
	f.next++
	member.ID = f.next
	stored := *member
	stored.User, stored.Gym = nil, nil
	f.rows[member.ID] = &stored
	return nil
}

func (f *fakeMembers) FindByID(_ context.Context, gymID, id uint) (*models.Member, error) {
	if m, ok := f.rows[id]; ok && m.GymID == gymID {
		return f.copyOf(m), nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMembers) Lock(_ context.Context, id uint) (*models.Member, error) {
	f.locks++
	if m, ok := f.rows[id]; ok {
		c := *m
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMembers) FindByQRCode(_ context.Context, gymID uint, code string) (*models.Member, error) {
	for _, m := range f.rows {
		if m.GymID == gymID && m.QRCode == code {
			return f.copyOf(m), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMembers) FindByUserAndGym(_ context.Context, userID, gymID uint) (*models.Member, error) {
	for _, m := range f.rows {
		if m.UserID == userID && m.GymID == gymID {
			return f.copyOf(m), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMembers) FindByUser(_ context.Context, userID uint) ([]*models.Member, error) {
	var out []*models.Member
	for _, id := range f.sortedIDs() {
		if m := f.rows[id]; m.UserID == userID {
			out = append(out, f.copyOf(m))
		}
	}
	return out, nil
}

func (f *fakeMembers) List(_ context.Context, gymID uint, p repository.MemberFilter) ([]*models.Member, int64, error) {
	var out []*models.Member
	for _, id := range f.sortedIDs() {
		m := f.rows[id]
		if m.GymID == gymID && (p.Status == "" || m.Status == p.Status) {
			out = append(out, f.copyOf(m))
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeMembers) Update(_ context.Context, member *models.Member) error {
	stored := *member
	stored.User, stored.Gym = nil, nil
	f.rows[member.ID] = &stored
	return nil
}

func (f *fakeMembers) Delete(_ context.Context, gymID, id uint) error {
	if m, ok := f.rows[id]; ok && m.GymID == gymID {
		delete(f.rows, id)
		return nil
	}
	return repository.ErrNotFound
}

func (f *fakeMembers) filter(keep func(m *models.Member) bool) []*models.Member {
	var out []*models.Member
	for _, id := range f.sortedIDs() {
		if m := f.rows[id]; keep(m) {
			out = append(out, f.copyOf(m))
		}
	}
	return out
}

func (f *fakeMembers) FindSuspensionsDue(_ context.Context, now time.Time) ([]*models.Member, error) {
	return f.filter(func(m *models.Member) bool {
		return m.Status == models.MemberStatusSuspended && m.SuspensionEndDate != nil && !m.SuspensionEndDate.After(now)
	}), nil
}

func (f *fakeMembers) FindLapsed(_ context.Context, now time.Time) ([]*models.Member, error) {
	return f.filter(func(m *models.Member) bool {
		return m.Status == models.MemberStatusActive && m.ExpiryDate.Before(now)
	}), nil
}

func (f *fakeMembers) FindExpiringBetween(_ context.Context, from, to time.Time) ([]*models.Member, error) {
	return f.filter(func(m *models.Member) bool {
		return m.Status == models.MemberStatusActive && !m.ExpiryDate.Before(from) && m.ExpiryDate.Before(to)
	}), nil
}

func (f *fakeMembers) StampReminder(_ context.Context, id uint, at time.Time) (bool, error) {
	m, ok := f.rows[id]
	if !ok || m.Status != models.MemberStatusActive {
		return false, nil
	}
	m.LastReminderAt = &at
	return true, nil
}

func (f *fakeMembers) CountByStatus(_ context.Context, gymID uint) (map[string]int64, error) {
	out := map[string]int64{}
	for _, m := range f.rows {
		if m.GymID == gymID {
			out[m.Status]++
		}
	}
	return out, nil
}

func (f *fakeMembers) sortedIDs() []uint {
	ids := make([]uint, 0, len(f.rows))
	for id := range f.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type fakeCheckIns struct {
	rows []*models.CheckIn
}

func (f *fakeCheckIns) Create(_ context.Context, c *models.CheckIn) error {
	c.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, c)
	return nil
}

func (f *fakeCheckIns) FindOpenSession(_ context.Context, memberID uint, since time.Time) (*models.CheckIn, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		c := f.rows[i]
		if c.MemberID == memberID && c.Status == models.CheckInGranted && c.CheckOutTime == nil && !c.CheckInTime.Before(since) {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCheckIns) Update(_ context.Context, c *models.CheckIn) error {
	f.rows[c.ID-1] = c
	return nil
}

func (f *fakeCheckIns) List(_ context.Context, gymID uint, p repository.CheckInFilter) ([]*models.CheckIn, int64, error) {
	var out []*models.CheckIn
	for _, c := range f.rows {
		if c.GymID == gymID && (p.MemberID == 0 || c.MemberID == p.MemberID) && (p.Status == "" || c.Status == p.Status) {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeCheckIns) ListInside(_ context.Context, gymID uint, since time.Time) ([]*models.CheckIn, error) {
	var out []*models.CheckIn
	for _, c := range f.rows {
		if c.GymID == gymID && c.Status == models.CheckInGranted && c.CheckOutTime == nil && !c.CheckInTime.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCheckIns) CountInside(ctx context.Context, gymID uint, since time.Time) (int64, error) {
	inside, _ := f.ListInside(ctx, gymID, since)
	return int64(len(inside)), nil
}

func (f *fakeCheckIns) CountGrantedSince(_ context.Context, gymID uint, since time.Time) (int64, error) {
	var n int64
	for _, c := range f.rows {
		if c.GymID == gymID && c.Status == models.CheckInGranted && !c.CheckInTime.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeCheckIns) ListByMembers(_ context.Context, memberIDs []uint, _ repository.Page) ([]*models.CheckIn, int64, error) {
	var out []*models.CheckIn
	for _, c := range f.rows {
		for _, id := range memberIDs {
			if c.MemberID == id {
				out = append(out, c)
			}
		}
	}
	return out, int64(len(out)), nil
}

type fakeActivity struct {
	entries []*models.ActivityLog
}

func (f *fakeActivity) Create(_ context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeActivity) List(_ context.Context, gymID uint, _ repository.ActivityLogFilter) ([]*models.ActivityLog, int64, error) {
	var out []*models.ActivityLog
	for i := len(f.entries) - 1; i >= 0; i-- {
		if e := f.entries[i]; e.GymID != nil && *e.GymID == gymID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeActivity) actions() []string {
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeClasses struct {
	rows     map[uint]*models.Class
	bookings *fakeBookings
	next     uint
	locks    int
}

func newFakeClasses(bookings *fakeBookings) *fakeClasses {
	f := &fakeClasses{rows: map[uint]*models.Class{}, bookings: bookings}
	bookings.classes = f
	return f
}

func (f *fakeClasses) Create(_ context.Context, class *models.Class) error {
	f.next++
	class.ID = f.next
	c := *class
	f.rows[class.ID] = &c
	return nil
}

func (f *fakeClasses) FindByID(ctx context.Context, gymID, id uint) (*models.Class, error) {
	c, ok := f.rows[id]
	if !ok || c.GymID != gymID {
		return nil, repository.ErrNotFound
	}
	out := *c
	out.BookedCount, _ = f.bookings.CountActive(ctx, id)
	return &out, nil
}

func (f *fakeClasses) Lock(_ context.Context, id uint) (*models.Class, error) {
	f.locks++
	c, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (f *fakeClasses) List(_ context.Context, gymIDs []uint, _ repository.ClassFilter) ([]*models.Class, int64, error) {
	var out []*models.Class
	for _, c := range f.rows {
		for _, g := range gymIDs {
			if c.GymID == g {
				cp := *c
				out = append(out, &cp)
			}
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeClasses) CountUpcoming(_ context.Context, gymID uint, now time.Time) (int64, error) {
	var n int64
	for _, c := range f.rows {
		if c.GymID == gymID && c.Status == models.ClassStatusScheduled && !c.StartsAt.Before(now) {
			n++
		}
	}
	return n, nil
}

func (f *fakeClasses) Update(_ context.Context, class *models.Class) error {
	c := *class
	f.rows[class.ID] = &c
	return nil
}

func (f *fakeClasses) Delete(_ context.Context, gymID, id uint) error {
	if c, ok := f.rows[id]; ok && c.GymID == gymID {
		delete(f.rows, id)
		return nil
	}
	return repository.ErrNotFound
}

type fakeBookings struct {
	rows    []*models.Booking
	classes *fakeClasses
}

func (f *fakeBookings) Create(_ context.Context, b *models.Booking) error {
	b.ID = uint(len(f.rows) + 1)
	c := *b
	f.rows = append(f.rows, &c)
	return nil
}

func (f *fakeBookings) FindByID(_ context.Context, id uint) (*models.Booking, error) {
	if id == 0 || int(id) > len(f.rows) {
		return nil, repository.ErrNotFound
	}
	b := *f.rows[id-1]
	if c, ok := f.classes.rows[b.ClassID]; ok {
		cp := *c
		b.Class = &cp
	}
	return &b, nil
}

func (f *fakeBookings) FindActive(_ context.Context, classID, memberID uint) (*models.Booking, error) {
	for _, b := range f.rows {
		if b.ClassID == classID && b.MemberID == memberID && b.Status == models.BookingStatusBooked {
			return b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBookings) CountActive(_ context.Context, classID uint) (int64, error) {
	var n int64
	for _, b := range f.rows {
		if b.ClassID == classID && b.Status == models.BookingStatusBooked {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookings) ListByClass(_ context.Context, classID uint) ([]*models.Booking, error) {
	var out []*models.Booking
	for _, b := range f.rows {
		if b.ClassID == classID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookings) ListByMembers(_ context.Context, memberIDs []uint, _ repository.Page) ([]*models.Booking, int64, error) {
	var out []*models.Booking
	for _, b := range f.rows {
		for _, id := range memberIDs {
			if b.MemberID == id {
				out = append(out, b)
			}
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeBookings) Update(_ context.Context, b *models.Booking) error {
	c := *b
	c.Class, c.Member = nil, nil
	f.rows[b.ID-1] = &c
	return nil
}

func (f *fakeBookings) CancelByClass(_ context.Context, classID uint) (int64, error) {
	var n int64
	for _, b := range f.rows {
		if b.ClassID == classID && b.Status == models.BookingStatusBooked {
			b.Status = models.BookingStatusCancelled
			n++
		}
	}
	return n, nil
}

type fakeTrainers struct {
	rows map[uint]*models.Trainer
	next uint
}

func (f *fakeTrainers) Create(_ context.Context, t *models.Trainer) error {
	if f.rows == nil {
		f.rows = map[uint]*models.Trainer{}
	}
	f.next++
	t.ID = f.next
	f.rows[t.ID] = t
	return nil
}

func (f *fakeTrainers) FindByID(_ context.Context, gymID, id uint) (*models.Trainer, error) {
	if t, ok := f.rows[id]; ok && t.GymID == gymID {
		return t, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTrainers) List(_ context.Context, gymID uint, _ repository.TrainerFilter) ([]*models.Trainer, int64, error) {
	var out []*models.Trainer
	for _, t := range f.rows {
		if t.GymID == gymID {
			out = append(out, t)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeTrainers) Update(_ context.Context, t *models.Trainer, specialties []models.Specialty) error {
	if specialties != nil {
		t.Specialties = specialties
	}
	f.rows[t.ID] = t
	return nil
}

func (f *fakeTrainers) Delete(_ context.Context, gymID, id uint) error {
	if t, ok := f.rows[id]; ok && t.GymID == gymID {
		delete(f.rows, id)
		return nil
	}
	return repository.ErrNotFound
}

type fakeSpecialties struct {
	rows []*models.Specialty
}

func (f *fakeSpecialties) Create(_ context.Context, s *models.Specialty) error {
	for _, existing := range f.rows {
		if existing.Name == s.Name {
			return repository.ErrDuplicate
		}
	}
	s.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, s)
	return nil
}

func (f *fakeSpecialties) FindAll(context.Context) ([]*models.Specialty, error) {
	return f.rows, nil
}

func (f *fakeSpecialties) FindByIDs(_ context.Context, ids []uint) ([]models.Specialty, error) {
	out := []models.Specialty{}
	for _, s := range f.rows {
		for _, id := range ids {
			if s.ID == id {
				out = append(out, *s)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeSpecialties) Delete(_ context.Context, id uint) error {
	for i, s := range f.rows {
		if s.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeAdmins struct {
	rows map[uint]*models.Admin
	next uint
}

func newFakeAdmins() *fakeAdmins { return &fakeAdmins{rows: map[uint]*models.Admin{}} }

func (f *fakeAdmins) Create(_ context.Context, a *models.Admin) error {
	for _, existing := range f.rows {
		if existing.Email == a.Email {
			return repository.ErrDuplicate
		}
	}
	f.next++
	a.ID = f.next
	f.rows[a.ID] = a
	return nil
}

func (f *fakeAdmins) FindByID(_ context.Context, id uint) (*models.Admin, error) {
	if a, ok := f.rows[id]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAdmins) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	for _, a := range f.rows {
		if a.Email == strings.ToLower(email) {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAdmins) FindByGym(_ context.Context, gymID uint, _ repository.Page) ([]*models.Admin, int64, error) {
	var out []*models.Admin
	for _, a := range f.rows {
		if a.GymID != nil && *a.GymID == gymID {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeAdmins) CountSuperAdmins(context.Context) (int64, error) {
	var n int64
	for _, a := range f.rows {
		if a.Role == models.RoleSuperAdmin {
			n++
		}
	}
	return n, nil
}

func (f *fakeAdmins) Update(_ context.Context, a *models.Admin) error {
	f.rows[a.ID] = a
	return nil
}

func (f *fakeAdmins) Delete(_ context.Context, id uint) error {
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type recordedEvents struct {
	events []Event
}

func (r *recordedEvents) Record(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recordedEvents) types() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type sentMessage struct {
	userID uint
	text   string
}

type fakeNotifier struct {
	sent []sentMessage
	// onNotify runs after a message is recorded.
	onNotify func(user *models.User)
}

func (f *fakeNotifier) Notify(_ context.Context, user *models.User, text string) error {
	f.sent = append(f.sent, sentMessage{userID: user.ID, text: text})
	if f.onNotify != nil {
		f.onNotify(user)
	}
	return nil
}
