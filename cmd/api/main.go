package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/smartcardai/trialdesk/internal/http/handlers"
	"github.com/smartcardai/trialdesk/internal/platform/mailer"
	"github.com/smartcardai/trialdesk/internal/service"
	"github.com/smartcardai/trialdesk/internal/store/sqlite"
	"github.com/smartcardai/trialdesk/pkg/config"
	"github.com/smartcardai/trialdesk/pkg/events"
	"github.com/smartcardai/trialdesk/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Open database
	store, err := sqlite.Open(cfg.Database.Path, cfg.Database.BusyTimeout)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", cfg.Database.Path)
		os.Exit(1)
	}
	defer store.Close()

	// Connect to event bus; without NATS configured events are dropped
	var eventBus events.Publisher
	if cfg.Events.NATSURL != "" {
		bus, err := events.NewNATSBus(cfg.Events.NATSURL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err, "url", cfg.Events.NATSURL)
			os.Exit(1)
		}
		eventBus = bus
	} else {
		eventBus = events.NewNoopBus()
	}
	defer eventBus.Close()

	// Pick a mailer
	var mail mailer.Service
	switch {
	case cfg.Email.DevMode:
		mail = mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		mail = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.SMTPFrom)
	default:
		mail = mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom,
			cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS)
	}

	// Initialize repositories
	db := store.DB()
	trialRepo := sqlite.NewTrialRepo(db)
	internRepo := sqlite.NewInternRepo(db)
	demoRepo := sqlite.NewDemoRepo(db)
	notificationRepo := sqlite.NewNotificationRepo(db)
	rateLimitRepo := sqlite.NewRateLimitRepo(db)

	// Initialize services
	notifier := service.NewNotifier(notificationRepo)
	trialService := service.NewTrialService(trialRepo, internRepo, notifier, mail, eventBus)
	staffService := service.NewStaffService(internRepo, eventBus)
	demoService := service.NewDemoService(demoRepo, internRepo, notifier, mail, eventBus)
	authService := service.NewAuthService(internRepo, cfg)
	notificationService := service.NewNotificationService(notificationRepo)

	// Initialize handlers and router
	h := handlers.New(authService, trialService, staffService, demoService, notificationService, cfg)
	router := h.NewRouter(rateLimitRepo)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting trialdesk API", "port", cfg.Server.Port, "database", store.Path())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
