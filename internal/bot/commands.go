package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
)

const (
	classesHorizon = 7 * 24 * time.Hour
	listLimit      = 10
	timeLayout     = "Mon 02 Jan 15:04"
	dateLayout     = "2006-01-02"
)

const helpText = `Gym Nexus bot

/link - link this chat to your gym account
/status - your memberships
/classes - classes in the next 7 days
/book <classId> - book a class
/bookings - your bookings
/cancel <bookingId> - cancel a booking
/history - your last check-ins
/help - this message`

func (b *BotApp) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	// Any command abandons a pending conversation step.
	b.Fsm.DeleteState(chatID)

	switch msg.Command() {
	case "start":
		b.start(ctx, msg)
	case "help":
		b.sendText(chatID, helpText)
	case "link":
		b.link(ctx, msg)
	case "status":
		b.status(ctx, msg)
	case "classes":
		b.classes(ctx, msg)
	case "book":
		b.book(ctx, msg)
	case "bookings":
		b.bookings(ctx, msg)
	case "cancel":
		b.cancel(ctx, msg)
	case "history":
		b.history(ctx, msg)
	default:
		b.sendText(chatID, "Unknown command. Use /help")
	}
}

func (b *BotApp) start(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.svc.Users.ByTelegramID(ctx, msg.From.ID)
	if err != nil {
		b.sendText(msg.Chat.ID, "👋 Welcome! Get a link code in the Gym Nexus app, then send /link to connect this chat.")
		return
	}
	b.sendText(msg.Chat.ID, fmt.Sprintf("👋 Welcome back, %s!\n\n%s", user.FirstName, helpText))
}

func (b *BotApp) link(ctx context.Context, msg *tgbotapi.Message) {
	if code := strings.TrimSpace(msg.CommandArguments()); code != "" {
		b.linkAccount(ctx, msg.Chat.ID, msg.From.ID, code)
		return
	}
	b.Fsm.SetState(msg.Chat.ID, &ChatState{Action: actionAwaitLinkCode, Step: 1})
	b.sendText(msg.Chat.ID, "Send the 6-digit code shown in the app.")
}

func (b *BotApp) linkAccount(ctx context.Context, chatID, telegramID int64, code string) {
	now := b.clock.Now()
	if until, locked := b.Fsm.LinkLockedUntil(telegramID, now); locked {
		b.sendText(chatID, fmt.Sprintf("Too many wrong codes. Try again after %s UTC.", until.Format("15:04")))
		return
	}
	user, err := b.svc.Users.LinkTelegram(ctx, code, telegramID)
	if errors.Is(err, service.ErrLinkCodeInvalid) && b.Fsm.RecordLinkFailure(telegramID, now) {
		b.sendText(chatID, fmt.Sprintf("Too many wrong codes. Linking is blocked for %d minutes.", int(linkLockout/time.Minute)))
		return
	}
	if err != nil {
		b.fail(chatID, "link telegram", err)
		return
	}
	b.Fsm.ResetLinkFailures(telegramID)
	b.sendText(chatID, fmt.Sprintf("✅ Linked to %s. You will get membership notifications here.", user.Email))
}

func (b *BotApp) status(ctx context.Context, msg *tgbotapi.Message) {
	user, ok := b.currentUser(ctx, msg)
	if !ok {
		return
	}
	members, err := b.svc.Members.ForUser(ctx, user.ID)
	if err != nil {
		b.fail(msg.Chat.ID, "list memberships", err)
		return
	}
	if len(members) == 0 {
		b.sendText(msg.Chat.ID, "You have no memberships yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your memberships:\n")
	for _, m := range members {
		fmt.Fprintf(&sb, "\n%s: %s (%s), expires %s", gymName(m), m.Status, m.MembershipType, m.ExpiryDate.Format(dateLayout))
		if m.Status == models.MemberStatusSuspended && m.SuspensionEndDate != nil {
			fmt.Fprintf(&sb, ", suspended until %s", m.SuspensionEndDate.Format(dateLayout))
		}
	}
	b.sendText(msg.Chat.ID, sb.String())
}

func (b *BotApp) classes(ctx context.Context, msg *tgbotapi.Message) {
	user, ok := b.currentUser(ctx, msg)
	if !ok {
		return
	}
	members, err := b.svc.Members.ForUser(ctx, user.ID)
	if err != nil {
		b.fail(msg.Chat.ID, "list memberships", err)
		return
	}
	names := gymNames(members)
	gymIDs := make([]uint, 0, len(names))
	for id := range names {
		gymIDs = append(gymIDs, id)
	}

	now := b.clock.Now()
	until := now.Add(classesHorizon)
	res, err := b.svc.Classes.ListForGyms(ctx, gymIDs, repository.ClassFilter{
		Page:   repository.Page{Page: 1, Limit: repository.MaxLimit},
		From:   &now,
		To:     &until,
		Status: models.ClassStatusScheduled,
	})
	if err != nil {
		b.fail(msg.Chat.ID, "list classes", err)
		return
	}
	if len(res.Items) == 0 {
		b.sendText(msg.Chat.ID, "No classes scheduled in the next 7 days.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Upcoming classes:\n")
	for _, c := range res.Items {
		fmt.Fprintf(&sb, "\n#%d %s, %s, %d/%d booked, %s", c.ID, c.Name, c.StartsAt.Format(timeLayout), c.BookedCount, c.Capacity, names[c.GymID])
	}
	sb.WriteString("\n\nBook with /book <classId>")
	b.sendText(msg.Chat.ID, sb.String())
}

func (b *BotApp) book(ctx context.Context, msg *tgbotapi.Message) {
	classID, ok := b.idArgument(msg, "/book <classId>")
	if !ok {
		return
	}
	user, ok := b.currentUser(ctx, msg)
	if !ok {
		return
	}
	booking, err := b.svc.Bookings.BookForUser(ctx, user.ID, classID)
	if err != nil {
		b.fail(msg.Chat.ID, "book class", err)
		return
	}
	b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Booked (booking #%d). Cancel with /cancel %d", booking.ID, booking.ID))
}

func (b *BotApp) bookings(ctx context.Context, msg *tgbotapi.Message) {
	user, ok := b.currentUser(ctx, msg)
	if !ok {
		return
	}
	res, err := b.svc.Bookings.ListForUser(ctx, user.ID, repository.Page{Page: 1, Limit: listLimit})
	if err != nil {
		b.fail(msg.Chat.ID, "list bookings", err)
		return
	}
	if len(res.Items) == 0 {
		b.sendText(msg.Chat.ID, "You have no bookings.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your bookings:\n")
	for _, bk := range res.Items {
		if bk.Class == nil {
			fmt.Fprintf(&sb, "\n#%d class %d, %s", bk.ID, bk.ClassID, bk.Status)
			continue
		}
		fmt.Fprintf(&sb, "\n#%d %s, %s, %s", bk.ID, bk.Class.Name, bk.Class.StartsAt.Format(timeLayout), bk.Status)
	}
	b.sendText(msg.Chat.ID, sb.String())
}

func (b *BotApp) cancel(ctx context.Context, msg *tgbotapi.Message) {
	bookingID, ok := b.idArgument(msg, "/cancel <bookingId>")
	if !ok {
		return
	}
	user, ok := b.currentUser(ctx, msg)
	if !ok {
		return
	}
	if _, err := b.svc.Bookings.CancelForUser(ctx, user.ID, bookingID); err != nil {
		b.fail(msg.Chat.ID, "cancel booking", err)
		return
	}
	b.sendText(msg.Chat.ID, fmt.Sprintf("Booking #%d cancelled.", bookingID))
}

func (b *BotApp) history(ctx context.Context, msg *tgbotapi.Message) {
	user, ok := b.currentUser(ctx, msg)
	if !ok {
		return
	}
	members, err := b.svc.Members.ForUser(ctx, user.ID)
	if err != nil {
		b.fail(msg.Chat.ID, "list memberships", err)
		return
	}
	res, err := b.svc.CheckIns.UserHistory(ctx, user.ID, repository.Page{Page: 1, Limit: listLimit})
	if err != nil {
		b.fail(msg.Chat.ID, "list check-ins", err)
		return
	}
	if len(res.Items) == 0 {
		b.sendText(msg.Chat.ID, "No check-ins yet.")
		return
	}

	names := gymNames(members)
	var sb strings.Builder
	sb.WriteString("Last check-ins:\n")
	for _, ci := range res.Items {
		fmt.Fprintf(&sb, "\n%s %s", ci.CheckInTime.Format(timeLayout), names[ci.GymID])
		switch {
		case ci.Status == models.CheckInDenied:
			fmt.Fprintf(&sb, ", denied (%s)", ci.DenyReason)
		case ci.CheckOutTime != nil:
			fmt.Fprintf(&sb, ", %s", ci.CheckOutTime.Sub(ci.CheckInTime).Round(time.Minute))
		default:
			sb.WriteString(", inside")
		}
	}
	b.sendText(msg.Chat.ID, sb.String())
}

func (b *BotApp) idArgument(msg *tgbotapi.Message, usage string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(msg.CommandArguments()), "#"), 10, 32)
	if err != nil || id == 0 {
		b.sendText(msg.Chat.ID, "Usage: "+usage)
		return 0, false
	}
	return uint(id), true
}

func gymName(m *models.Member) string {
	if m.Gym != nil {
		return m.Gym.Name
	}
	return fmt.Sprintf("gym %d", m.GymID)
}

func gymNames(members []*models.Member) map[uint]string {
	names := make(map[uint]string, len(members))
	for _, m := range members {
		names[m.GymID] = gymName(m)
	}
	return names
}
