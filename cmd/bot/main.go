package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/falconilham/gym-nexus-sub000/internal/auth"
	"github.com/falconilham/gym-nexus-sub000/internal/bot"
	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/config"
	"github.com/falconilham/gym-nexus-sub000/internal/database"
	"github.com/falconilham/gym-nexus-sub000/internal/outbox"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
	"github.com/falconilham/gym-nexus-sub000/pkg/utils"
)

func main() {
	// -----------------------
	// ENV
	cfg, err := config.Load()
	if err != nil {
		utils.Log.Error("Failed to load config: " + err.Error())
		os.Exit(1)
	}
	if cfg.TelegramToken == "" {
		utils.Log.Error("TELEGRAM_TOKEN not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// -----------------------
	// DATABASE
	db, err := database.NewPostgres(cfg.DatabaseURL, database.Options{
		LogLevel:     cfg.DBLogLevel,
		MaxOpenConns: cfg.DBMaxOpenConns,
	})
	if err != nil {
		utils.Log.Error("Failed to connect to database: " + err.Error())
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		utils.Log.Error("Failed to migrate database: " + err.Error())
		os.Exit(1)
	}

	// -----------------------
	// REPOSITORIES
	tx := repository.NewTransactor(db)
	gymRepo := repository.NewGymRepo(db)
	userRepo := repository.NewUserRepo(db)
	memberRepo := repository.NewMemberRepo(db)
	checkInRepo := repository.NewCheckInRepo(db)
	classRepo := repository.NewClassRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	trainerRepo := repository.NewTrainerRepo(db)
	activityRepo := repository.NewActivityLogRepo(db)

	// -----------------------
	// SERVICES
	clk := clock.Real{}
	tokens := auth.NewTokens(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: cfg.JWTTTL})
	var events service.EventRecorder = service.NopRecorder{}
	if cfg.OutboxEnabled() {
		events = outbox.NewRecorder(repository.NewOutboxRepo(db))
	}

	services := bot.Services{
		Users:    service.NewUserService(tx, userRepo, tokens, clk),
		Members:  service.NewMemberService(tx, gymRepo, userRepo, memberRepo, activityRepo, events, clk),
		Classes:  service.NewClassService(tx, classRepo, trainerRepo, bookingRepo, activityRepo, clk),
		Bookings: service.NewBookingService(tx, classRepo, bookingRepo, memberRepo, activityRepo, clk),
		CheckIns: service.NewCheckInService(tx, gymRepo, memberRepo, checkInRepo, activityRepo, events, clk, cfg.CheckInWindow),
	}

	// -----------------------
	// BOT
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		utils.Log.Error("Failed to create bot: " + err.Error())
		os.Exit(1)
	}

	utils.Log.Info("Telegram bot starting...")
	bot.Run(ctx, botAPI, bot.NewBotApp(botAPI, services, clk))
	utils.Log.Info("Telegram bot stopped")
}
