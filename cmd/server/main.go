package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fair-rice-portal/internal/chatbot"
	"github.com/iliyamo/fair-rice-portal/internal/config"
	"github.com/iliyamo/fair-rice-portal/internal/database"
	"github.com/iliyamo/fair-rice-portal/internal/handler"
	"github.com/iliyamo/fair-rice-portal/internal/logger"
	"github.com/iliyamo/fair-rice-portal/internal/middleware"
	"github.com/iliyamo/fair-rice-portal/internal/queue"
	"github.com/iliyamo/fair-rice-portal/internal/repository"
	"github.com/iliyamo/fair-rice-portal/internal/router"
	"github.com/iliyamo/fair-rice-portal/internal/service"
	"github.com/iliyamo/fair-rice-portal/internal/storage"
	"github.com/iliyamo/fair-rice-portal/internal/utils"
)

func main() {
	cfg := config.Load() // Load environment config

	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat, "rice-portal")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	db, err := database.Open(ctx, database.Settings{
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
	})
	if err != nil {
		cancel()
		lg.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	if err := database.CreateSchema(ctx, db); err != nil {
		cancel()
		lg.Fatal("schema", zap.Error(err))
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		lg.Warn("redis unavailable; response cache off, rate limiting is per process")
	} else {
		defer rdb.Close()
	}

	blobs, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		lg.Fatal("storage", zap.Error(err))
	}

	var events service.EventPublisher = queue.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		events = queue.NewPublisher(cfg.RabbitMQURL, lg)
	} else {
		lg.Info("RABBITMQ_URL not set; domain events are not published")
	}

	// Repositories
	families := repository.NewFamilyRepo(db, utils.NewFamilyLabel)
	records := repository.NewDistributionRepo(db, families)
	grievanceRepo := repository.NewGrievanceRepo(db)
	admins := repository.NewAdminRepo(db)
	announcementRepo := repository.NewAnnouncementRepo(db)

	// Services
	registry := service.NewRegistry(families)
	ledger := service.NewLedger(records, service.RiceRules{PerPersonKg: cfg.Rice.PerPersonKg}, events, lg)
	grievances := service.NewGrievances(grievanceRepo, blobs, events, lg)
	announcements := service.NewAnnouncements(announcementRepo)
	creds := service.NewCredentials(admins, service.TokenConfig{
		Secret:     cfg.JWTSecret,
		TTLMinutes: cfg.AccessTTLMin,
		BcryptCost: cfg.BcryptCost,
	}, lg)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	created, err := creds.EnsureInitialAdmin(ctx, cfg.InitialAdmin.Username, cfg.InitialAdmin.Password)
	cancel()
	if err != nil {
		lg.Fatal("initial admin", zap.Error(err))
	}
	if created {
		lg.Info("initial admin account created", zap.String("username", cfg.InitialAdmin.Username))
	}

	bot := chatbot.New(chatbot.Config{
		PerPersonKg:   cfg.Rice.PerPersonKg,
		PricePerKg:    cfg.Rice.PricePerKg,
		ContactName:   cfg.Rice.ContactName,
		ContactNumber: cfg.Rice.ContactNumber,
	}, announcements, grievances)

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, lg)
	h := router.Handlers{
		Auth:          handler.NewAuthHandler(creds, lg),
		Records:       handler.NewRecordHandler(ledger, lg),
		Families:      handler.NewFamilyHandler(registry, lg),
		Grievances:    handler.NewGrievanceHandler(grievances, lg),
		Announcements: handler.NewAnnouncementHandler(announcements, cache, lg),
		Chatbot:       handler.NewChatbotHandler(bot, lg),
		Uploads:       handler.NewUploadHandler(blobs, lg),
	}
	guards := router.Guards{
		JWTSecret:  cfg.JWTSecret,
		Principals: creds,
		RateLimit:  middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb, lg),
		Cache:      cache.Middleware(),
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	router.Use(e, cfg.CORS, lg)
	router.RegisterRoutes(e, db, h.Uploads)
	router.RegisterPublic(e, h, guards)
	router.RegisterAdmin(e, h, guards)

	addr := ":" + cfg.Port
	go func() {
		lg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		lg.Error("shutdown", zap.Error(err))
	}
	lg.Info("stopped")
}
