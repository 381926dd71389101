package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/parisxmas/oxiforms/internal/ai"
	"github.com/parisxmas/oxiforms/internal/config"
	"github.com/parisxmas/oxiforms/internal/db"
	"github.com/parisxmas/oxiforms/internal/handler"
	"github.com/parisxmas/oxiforms/internal/logging"
	"github.com/parisxmas/oxiforms/internal/notify"
	"github.com/parisxmas/oxiforms/internal/repository"
	"github.com/parisxmas/oxiforms/internal/router"
	"github.com/parisxmas/oxiforms/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	closeLogs := logging.Setup(logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		File:    cfg.LogFile,
		GELF:    cfg.GELFAddr,
		Service: "oxiforms",
	})
	defer closeLogs()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	database, err := db.Open(ctx, db.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL, MaxOpenConns: cfg.DBMaxOpenConns})
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer database.Close()
	go database.Keepalive(30 * time.Second)
	log.WithField("driver", cfg.DBDriver).Info("Database ready")

	store := repository.NewStore(database)

	// AI provider
	provider, err := ai.NewProvider(ctx, ai.Config{
		Provider:         cfg.AIProvider,
		AnthropicAPIKey:  cfg.AnthropicAPIKey,
		AnthropicModel:   cfg.AnthropicModel,
		AnthropicBaseURL: cfg.AnthropicBaseURL,
		GeminiAPIKey:     cfg.GeminiAPIKey,
		GeminiModel:      cfg.GeminiModel,
		GeminiBaseURL:    cfg.GeminiBaseURL,
		Timeout:          cfg.AITimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to configure AI provider")
	}
	enhancer := ai.NewEnhancer(provider)
	if !enhancer.Enabled() {
		log.Warn("AI provider not configured, enhancement endpoints will return 503")
	} else {
		log.WithField("provider", enhancer.Provider()).Info("AI provider ready")
	}

	// Notifications
	mailer := notify.NewMailer(notify.MailConfig{
		SendGridAPIKey: cfg.SendGridAPIKey,
		SMTPHost:       cfg.SMTPHost,
		SMTPPort:       cfg.SMTPPort,
		SMTPUsername:   cfg.SMTPUsername,
		SMTPPassword:   cfg.SMTPPassword,
	})
	dispatcher := notify.NewDispatcher(notify.Multi{
		notify.NewEmailNotifier(mailer, cfg.NotifyFrom),
		notify.NewSlackNotifier(cfg.SlackWebhookURL),
	}, cfg.NotifyConcurrency, cfg.NotifyQueueSize, cfg.NotifyTimeout)

	// Services
	authSvc := service.NewAuthService(store, cfg.JWTSecret)
	formSvc := service.NewFormService(store)
	responseSvc := service.NewResponseService(store, enhancer, dispatcher)
	aiSvc := service.NewAIService(store, enhancer)

	if err := authSvc.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.WithError(err).Warn("Failed to seed admin")
	}

	// Router
	r := router.New(cfg.JWTSecret, cfg.CORSOrigins, router.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Forms:     handler.NewFormHandler(formSvc),
		Responses: handler.NewResponseHandler(responseSvc),
		Search:    handler.NewSearchHandler(responseSvc),
		AI:        handler.NewAIHandler(aiSvc),
		Dashboard: handler.NewDashboardHandler(formSvc),
		Health:    handler.NewHealthHandler(store),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.AITimeout + 30*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("oxiforms server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server failed")
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP shutdown incomplete")
	}
	dispatcher.Close()
	log.Info("Server stopped")
}
