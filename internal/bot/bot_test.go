package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
)

const (
	chatID     int64 = 500
	telegramID int64 = 9001
)

type sentMessage struct {
	ChatID int64
	Text   string
}

type stubSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (s *stubSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		s.sent = append(s.sent, sentMessage{ChatID: msg.ChatID, Text: msg.Text})
	}
	return tgbotapi.Message{}, nil
}

func (s *stubSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return ""
	}
	return s.sent[len(s.sent)-1].Text
}

type stubUsers struct {
	linked    map[int64]*models.User
	codes     map[string]*models.User
	linkCalls []string
}

func (s *stubUsers) ByTelegramID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := s.linked[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: user not found", service.ErrNotFound)
}

func (s *stubUsers) LinkTelegram(_ context.Context, code string, id int64) (*models.User, error) {
	s.linkCalls = append(s.linkCalls, code)
	u, ok := s.codes[code]
	if !ok {
		return nil, service.ErrLinkCodeInvalid
	}
	u.TelegramID = &id
	s.linked[id] = u
	return u, nil
}

type stubMembers struct{ members []*models.Member }

func (s *stubMembers) ForUser(context.Context, uint) ([]*models.Member, error) {
	return s.members, nil
}

type stubClasses struct {
	gymIDs []uint
	filter repository.ClassFilter
	items  []*models.Class
}

func (s *stubClasses) ListForGyms(_ context.Context, gymIDs []uint, f repository.ClassFilter) (service.PageResult[models.Class], error) {
	s.gymIDs = gymIDs
	s.filter = f
	return service.PageResult[models.Class]{Items: s.items, Total: int64(len(s.items))}, nil
}

type stubBookings struct {
	booked    []uint
	cancelled []uint
	bookErr   error
}

func (s *stubBookings) BookForUser(_ context.Context, _ uint, classID uint) (*models.Booking, error) {
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	s.booked = append(s.booked, classID)
	b := &models.Booking{ClassID: classID, Status: models.BookingStatusBooked}
	b.ID = 77
	return b, nil
}

func (s *stubBookings) CancelForUser(_ context.Context, _ uint, bookingID uint) (*models.Booking, error) {
	s.cancelled = append(s.cancelled, bookingID)
	return &models.Booking{Status: models.BookingStatusCancelled}, nil
}

func (s *stubBookings) ListForUser(context.Context, uint, repository.Page) (service.PageResult[models.Booking], error) {
	return service.PageResult[models.Booking]{}, nil
}

type stubCheckIns struct{ items []*models.CheckIn }

func (s *stubCheckIns) UserHistory(context.Context, uint, repository.Page) (service.PageResult[models.CheckIn], error) {
	return service.PageResult[models.CheckIn]{Items: s.items, Total: int64(len(s.items))}, nil
}

type botFixture struct {
	bot      *BotApp
	sender   *stubSender
	users    *stubUsers
	classes  *stubClasses
	bookings *stubBookings
	checkIns *stubCheckIns
	clock    *clock.Manual
}

func newBotFixture() *botFixture {
	user := &models.User{Email: "ann@example.com", FirstName: "Ann"}
	user.ID = 4
	downtown := &models.Member{GymID: 1, Gym: &models.Gym{Name: "Downtown"}, Status: models.MemberStatusActive,
		MembershipType: models.MembershipMonthly, ExpiryDate: time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)}
	f := &botFixture{
		sender:   &stubSender{},
		users:    &stubUsers{linked: map[int64]*models.User{}, codes: map[string]*models.User{"123456": user}},
		classes:  &stubClasses{},
		bookings: &stubBookings{},
		checkIns: &stubCheckIns{},
		clock:    clock.NewManual(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
	}
	f.bot = NewBotApp(f.sender, Services{
		Users:    f.users,
		Members:  &stubMembers{members: []*models.Member{downtown}},
		Classes:  f.classes,
		Bookings: f.bookings,
		CheckIns: f.checkIns,
	}, f.clock)
	return f
}

func (f *botFixture) linkAnn() {
	f.users.linked[telegramID] = f.users.codes["123456"]
}

func (f *botFixture) send(text string) string {
	msg := &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: telegramID},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		length := strings.IndexByte(text, ' ')
		if length < 0 {
			length = len(text)
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}
	f.bot.HandleUpdate(context.Background(), tgbotapi.Update{Message: msg})
	return f.sender.last()
}

func TestUnlinkedChatIsAskedToLink(t *testing.T) {
	f := newBotFixture()

	assert.Contains(t, f.send("/status"), "not linked")
	assert.Contains(t, f.send("/start"), "/link")
}

func TestLinkConversation(t *testing.T) {
	f := newBotFixture()

	assert.Contains(t, f.send("/link"), "6-digit code")
	state, ok := f.bot.Fsm.GetState(chatID)
	require.True(t, ok)
	assert.Equal(t, actionAwaitLinkCode, state.Action)

	assert.Contains(t, f.send("000000"), "invalid or expired")
	_, ok = f.bot.Fsm.GetState(chatID)
	assert.False(t, ok)

	f.send("/link")
	assert.Contains(t, f.send("123456"), "Linked to ann@example.com")
	assert.Equal(t, []string{"000000", "123456"}, f.users.linkCalls)
	assert.Contains(t, f.send("/status"), "Downtown: active (monthly), expires 2025-04-10")
}

func TestLinkWithInlineCode(t *testing.T) {
	f := newBotFixture()

	assert.Contains(t, f.send("/link 123456"), "Linked")
	_, ok := f.bot.Fsm.GetState(chatID)
	assert.False(t, ok)
}

func TestCommandAbandonsPendingLink(t *testing.T) {
	f := newBotFixture()
	f.linkAnn()

	f.send("/link")
	f.send("/help")
	assert.Contains(t, f.send("123456"), "only understand commands")
	assert.Empty(t, f.users.linkCalls)
}

func TestClassesNextSevenDays(t *testing.T) {
	f := newBotFixture()
	f.linkAnn()
	yoga := &models.Class{GymID: 1, Name: "Yoga", Capacity: 20, BookedCount: 5,
		StartsAt: time.Date(2025, 3, 11, 18, 0, 0, 0, time.UTC)}
	yoga.ID = 12
	f.classes.items = []*models.Class{yoga}

	reply := f.send("/classes")
	assert.Contains(t, reply, "#12 Yoga, Tue 11 Mar 18:00, 5/20 booked, Downtown")
	assert.Equal(t, []uint{1}, f.classes.gymIDs)
	require.NotNil(t, f.classes.filter.From)
	require.NotNil(t, f.classes.filter.To)
	assert.Equal(t, 7*24*time.Hour, f.classes.filter.To.Sub(*f.classes.filter.From))
	assert.Equal(t, models.ClassStatusScheduled, f.classes.filter.Status)
}

func TestBookAndCancel(t *testing.T) {
	f := newBotFixture()
	f.linkAnn()

	assert.Contains(t, f.send("/book"), "Usage: /book <classId>")
	assert.Contains(t, f.send("/book abc"), "Usage")
	assert.Contains(t, f.send("/book 12"), "booking #77")
	assert.Equal(t, []uint{12}, f.bookings.booked)

	f.bookings.bookErr = service.ErrClassFull
	assert.Contains(t, f.send("/book 13"), "class is full")

	f.bookings.bookErr = fmt.Errorf("db down")
	assert.Contains(t, f.send("/book 14"), "Something went wrong")

	assert.Contains(t, f.send("/cancel #77"), "Booking #77 cancelled")
	assert.Equal(t, []uint{77}, f.bookings.cancelled)
}

func TestHistory(t *testing.T) {
	f := newBotFixture()
	f.linkAnn()

	in := time.Date(2025, 3, 9, 7, 0, 0, 0, time.UTC)
	out := in.Add(90 * time.Minute)
	f.checkIns.items = []*models.CheckIn{
		{GymID: 1, CheckInTime: in.Add(24 * time.Hour), Status: models.CheckInGranted},
		{GymID: 1, CheckInTime: in, CheckOutTime: &out, Status: models.CheckInGranted},
		{GymID: 1, CheckInTime: in.Add(-time.Hour), Status: models.CheckInDenied, DenyReason: service.DenyMembershipExpired},
	}

	reply := f.send("/history")
	assert.Contains(t, reply, "Mon 10 Mar 07:00 Downtown, inside")
	assert.Contains(t, reply, "Sun 09 Mar 07:00 Downtown, 1h30m0s")
	assert.Contains(t, reply, "denied (membership_expired)")
}

func TestNotifier(t *testing.T) {
	sender := &stubSender{}
	n := NewNotifier(sender)
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, &models.User{}, "ignored"))
	assert.Empty(t, sender.sent)

	id := telegramID
	require.NoError(t, n.Notify(ctx, &models.User{TelegramID: &id}, "Your membership expires soon"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, sentMessage{ChatID: telegramID, Text: "Your membership expires soon"}, sender.sent[0])
}

func TestLinkLockedAfterRepeatedWrongCodes(t *testing.T) {
	f := newBotFixture()

	for i := 0; i < maxLinkFailures-1; i++ {
		assert.Contains(t, f.send(fmt.Sprintf("/link %06d", i)), "invalid or expired")
	}
	assert.Contains(t, f.send("/link 999999"), "blocked for 15 minutes")

	// the right code is refused while locked, without reaching the service
	calls := len(f.users.linkCalls)
	assert.Contains(t, f.send("/link 123456"), "Too many wrong codes")
	assert.Len(t, f.users.linkCalls, calls)
	f.send("/link")
	assert.Contains(t, f.send("123456"), "Too many wrong codes")

	f.clock.Add(linkLockout)
	assert.Contains(t, f.send("/link 123456"), "Linked to ann@example.com")
}

func TestSuccessfulLinkClearsFailures(t *testing.T) {
	f := newBotFixture()

	for i := 0; i < maxLinkFailures-1; i++ {
		f.send("/link 000000")
	}
	assert.Contains(t, f.send("/link 123456"), "Linked")
	assert.Contains(t, f.send("/link 000000"), "invalid or expired")
	_, locked := f.bot.Fsm.LinkLockedUntil(telegramID, f.clock.Now())
	assert.False(t, locked)
}
