package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"github.com/falconilham/gym-nexus-sub000/internal/api"
	"github.com/falconilham/gym-nexus-sub000/internal/auth"
	"github.com/falconilham/gym-nexus-sub000/internal/bot"
	"github.com/falconilham/gym-nexus-sub000/internal/clock"
	"github.com/falconilham/gym-nexus-sub000/internal/config"
	"github.com/falconilham/gym-nexus-sub000/internal/database"
	"github.com/falconilham/gym-nexus-sub000/internal/outbox"
	"github.com/falconilham/gym-nexus-sub000/internal/repository"
	"github.com/falconilham/gym-nexus-sub000/internal/service"
	"github.com/falconilham/gym-nexus-sub000/internal/storage"
	"github.com/falconilham/gym-nexus-sub000/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Log.Error("Failed to load config: " + err.Error())
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
	adminRepo := repository.NewAdminRepo(db)
	userRepo := repository.NewUserRepo(db)
	memberRepo := repository.NewMemberRepo(db)
	checkInRepo := repository.NewCheckInRepo(db)
	trainerRepo := repository.NewTrainerRepo(db)
	specialtyRepo := repository.NewSpecialtyRepo(db)
	classRepo := repository.NewClassRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	equipmentRepo := repository.NewEquipmentRepo(db)
	activityRepo := repository.NewActivityLogRepo(db)
	outboxRepo := repository.NewOutboxRepo(db)

	// -----------------------
	// INFRASTRUCTURE
	clk := clock.Real{}
	tokens := auth.NewTokens(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TTL: cfg.JWTTTL})
	files, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		utils.Log.Error("Failed to prepare upload dir: " + err.Error())
		os.Exit(1)
	}

	var events service.EventRecorder = service.NopRecorder{}
	var dispatcher *outbox.Dispatcher
	var producer *outbox.KafkaProducer
	if cfg.OutboxEnabled() {
		events = outbox.NewRecorder(outboxRepo)
		producer = outbox.NewKafkaProducer(cfg.KafkaBrokers)
		dispatcher = outbox.NewDispatcher(outboxRepo, producer, clk, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
	} else {
		utils.Log.Info("KAFKA_BROKERS not set, outbox disabled")
	}

	var notifier service.Notifier = service.NopNotifier{}
	if cfg.TelegramToken != "" {
		botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			utils.Log.Warnf("Telegram notifications disabled: %v", err)
		} else {
			notifier = bot.NewNotifier(botAPI)
		}
	}

	// -----------------------
	// SERVICES
	adminService := service.NewAdminService(adminRepo, gymRepo, activityRepo, tokens, clk)
	memberService := service.NewMemberService(tx, gymRepo, userRepo, memberRepo, activityRepo, events, clk)
	svc := api.Services{
		Tokens:      tokens,
		Gyms:        service.NewGymService(gymRepo, activityRepo, files, cfg.MaxUploadBytes),
		Admins:      adminService,
		Users:       service.NewUserService(tx, userRepo, tokens, clk),
		Members:     memberService,
		CheckIns:    service.NewCheckInService(tx, gymRepo, memberRepo, checkInRepo, activityRepo, events, clk, cfg.CheckInWindow),
		Trainers:    service.NewTrainerService(trainerRepo, specialtyRepo, activityRepo),
		Specialties: service.NewSpecialtyService(specialtyRepo),
		Classes:     service.NewClassService(tx, classRepo, trainerRepo, bookingRepo, activityRepo, clk),
		Bookings:    service.NewBookingService(tx, classRepo, bookingRepo, memberRepo, activityRepo, clk),
		Equipment:   service.NewEquipmentService(equipmentRepo, activityRepo),
		Stats:       service.NewStatsService(gymRepo, memberRepo, checkInRepo, classRepo, equipmentRepo, clk, cfg.CheckInWindow),
		Activity:    service.NewActivityService(activityRepo),
		Health:      func(ctx context.Context) error { return database.Ping(ctx, db) },
	}

	created, err := adminService.EnsureSuperAdmin(ctx, cfg.SuperAdminEmail, cfg.SuperAdminPassword)
	if err != nil {
		utils.Log.Error("Failed to bootstrap super admin: " + err.Error())
		os.Exit(1)
	}
	if created {
		utils.Log.Infof("Created super admin %s", cfg.SuperAdminEmail)
	}

	// -----------------------
	// WORKERS
	checker := service.NewMembershipChecker(memberService, notifier, cfg.MembershipCheckInterval, cfg.ExpiryReminderWindow)
	go checker.Start(ctx)
	if dispatcher != nil {
		go dispatcher.Start(ctx)
	}

	// -----------------------
	// HTTP
	router := api.NewRouter(api.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		UploadDir:      files.Root(),
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, svc)
	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Log.Infof("API listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Log.Error("HTTP server failed: " + err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	utils.Log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.Log.Warnf("HTTP shutdown: %v", err)
	}
	checker.Wait()
	if dispatcher != nil {
		dispatcher.Wait()
		if err := producer.Close(); err != nil {
			utils.Log.Warnf("Kafka producer close: %v", err)
		}
	}
	closeDB(db)
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		utils.Log.Warnf("Database close: %v", err)
	}
}
