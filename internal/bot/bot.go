// Package bot is the Telegram member bot: members link their account with a code from
// the app, then check memberships, book classes and read their history.
package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/models"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
	"github.com/falconilham/gym-nexus-sub000/pkg/utils"
)

// Sender is the part of *tgbotapi.BotAPI the bot writes through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type UserService interface {
	ByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	LinkTelegram(ctx context.Context, code string, telegramID int64) (*models.User, error)
}

type MemberService interface {
	ForUser(ctx context.Context, userID uint) ([]*models.Member, error)
}

type ClassService interface {
	ListForGyms(ctx context.Context, gymIDs []uint, f repository.ClassFilter) (service.PageResult[models.Class], error)
}

type BookingService interface {
	BookForUser(ctx context.Context, userID, classID uint) (*models.Booking, error)
	CancelForUser(ctx context.Context, userID, bookingID uint) (*models.Booking, error)
	ListForUser(ctx context.Context, userID uint, p repository.Page) (service.PageResult[models.Booking], error)
}

type CheckInService interface {
	UserHistory(ctx context.Context, userID uint, p repository.Page) (service.PageResult[models.CheckIn], error)
}

type Services struct {
	Users    UserService
	Members  MemberService
	Classes  ClassService
	Bookings BookingService
	CheckIns CheckInService
}

// BotApp routes Telegram updates to the member services.
type BotApp struct {
	API   Sender
	Fsm   *ChatFSM
	svc   Services
	clock clock.Clock
}

func NewBotApp(api Sender, svc Services, clk clock.Clock) *BotApp {
	return &BotApp{
		API:   api,
		Fsm:   NewChatFSM(),
		svc:   svc,
		clock: clk,
	}
}

// Run long-polls updates until ctx is cancelled.
func Run(ctx context.Context, api *tgbotapi.BotAPI, b *BotApp) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	utils.Log.Infof("Bot @%s started", api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

func (b *BotApp) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	if update.Message.IsCommand() {
		b.handleCommand(ctx, update.Message)
		return
	}
	b.handleRegularMessage(ctx, update.Message)
}

func (b *BotApp) handleRegularMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	state, ok := b.Fsm.GetState(chatID)
	if ok && state.Action == actionAwaitLinkCode {
		b.Fsm.DeleteState(chatID)
		b.linkAccount(ctx, chatID, msg.From.ID, msg.Text)
		return
	}
	b.sendText(chatID, "I only understand commands. Use /help to see them.")
}

// currentUser resolves the linked user, telling the chat to link first when there is none.
func (b *BotApp) currentUser(ctx context.Context, msg *tgbotapi.Message) (*models.User, bool) {
	user, err := b.svc.Users.ByTelegramID(ctx, msg.From.ID)
	if err == nil {
		return user, true
	}
	if errors.Is(err, service.ErrNotFound) {
		b.sendText(msg.Chat.ID, "Your Telegram account is not linked yet. Open the app, get a link code and send /link.")
		return nil, false
	}
	b.fail(msg.Chat.ID, "lookup user", err)
	return nil, false
}

func (b *BotApp) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.API.Send(msg); err != nil {
		utils.Log.Errorf("[sendText] chat %d: %v", chatID, err)
	}
}

// fail reports a user-facing error; unexpected errors are logged and hidden.
func (b *BotApp) fail(chatID int64, op string, err error) {
	for _, known := range []error{service.ErrInvalidInput, service.ErrNotFound, service.ErrForbidden, service.ErrConflict, service.ErrClassFull} {
		if errors.Is(err, known) {
			b.sendText(chatID, "❌ "+err.Error())
			return
		}
	}
	utils.Log.Errorf("bot %s: %v", op, err)
	b.sendText(chatID, "❌ Something went wrong, please try again later.")
}
