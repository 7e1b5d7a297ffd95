// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lewismosage/acna-sub000/internal/config"
	"github.com/lewismosage/acna-sub000/internal/database"
	"github.com/lewismosage/acna-sub000/internal/handler"
	"github.com/lewismosage/acna-sub000/internal/mail"
	"github.com/lewismosage/acna-sub000/internal/payments"
	"github.com/lewismosage/acna-sub000/internal/repository"
	"github.com/lewismosage/acna-sub000/internal/service"
	"github.com/lewismosage/acna-sub000/internal/upload"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.FromEnv()
	ctx := context.Background()

	// Database: connect, then apply pending migrations.
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()
	if err := database.Migrate(cfg.Database); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	logger.Info("connected to postgres", zap.String("database", cfg.Database.DBName))

	// Outbound mail is optional: without an SMTP host every send becomes a
	// no-op and registration flows proceed without email.
	var mailer mail.Mailer = mail.NoopMailer{}
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		logger.Warn("SMTP_HOST not set, outbound email disabled")
	}

	gateway := payments.NewStripeGateway(
		cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret,
		cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)

	// Wire up layers.
	workshopRepo := repository.NewWorkshopRepository(pool)
	regRepo := repository.NewRegistrationRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	newsRepo := repository.NewNewsRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	deps := handler.Deps{
		Workshops: service.NewWorkshopService(workshopRepo, regRepo, mailer, logger),
		Payments:  service.NewPaymentService(workshopRepo, paymentRepo, gateway, mailer, logger),
		News:      service.NewNewsService(newsRepo),
		Auth:      service.NewAuthService(userRepo, cfg.JWTSecret),
		Uploads:   upload.NewService(upload.NewDiskStorage(cfg.Upload.Dir, cfg.Upload.BaseURL)),
		Metrics:   handler.NewMetrics(),
		Logger:    logger,
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in a background goroutine so we can listen for shutdown signals.
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
