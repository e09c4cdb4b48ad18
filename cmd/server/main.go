package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/eersi/marketplace/internal/auth"
	"github.com/eersi/marketplace/internal/booking"
	"github.com/eersi/marketplace/internal/budget"
	"github.com/eersi/marketplace/internal/category"
	"github.com/eersi/marketplace/internal/config"
	"github.com/eersi/marketplace/internal/docstore"
	"github.com/eersi/marketplace/internal/handlers"
	"github.com/eersi/marketplace/internal/listing"
	"github.com/eersi/marketplace/internal/logger"
	"github.com/eersi/marketplace/internal/notify"
	"github.com/eersi/marketplace/internal/seed"
)

var seedFlag = flag.Bool("seed", false, "Seed demo legacy vendors and traditions, then continue")

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.App.LogLevel, cfg.App.LogFormat)
	defer log.Sync()

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	backend, err := openBackend(cfg.Store)
	if err != nil {
		log.Fatal("open store backend", zap.Error(err))
	}
	store := docstore.New(backend)

	ctx := context.Background()
	if *seedFlag {
		if err := seed.Run(ctx, store); err != nil {
			log.Fatal("seed failed", zap.Error(err))
		}
		log.Info("seed data written")
	}

	var mailer notify.Mailer
	if cfg.Mail.Enabled {
		mailer, err = notify.NewSESMailer(ctx, cfg.Mail.SESRegion, cfg.Mail.From)
		if err != nil {
			// Email is best-effort; run without it rather than refuse to start.
			log.Warn("mailer unavailable, email disabled", zap.Error(err))
			mailer = nil
		}
	}

	registry := category.Default()
	tokens := auth.NewTokens(cfg.Auth.JWTSecret)
	notifier := notify.NewDispatcher(store, mailer, cfg.App.Name, log)
	listings := listing.NewService(store, registry)
	budgets := budget.NewService(store)
	engine := booking.NewEngine(store, listings, budgets, notifier)

	app := NewApp(tokens, Handlers{
		Auth:          handlers.NewAuthHandler(store, tokens, cfg.Auth.AdminRegisterKey),
		Categories:    handlers.NewCategoriesHandler(listings),
		Vendors:       handlers.NewVendorsHandler(listings),
		Bookings:      handlers.NewBookingsHandler(engine),
		Budget:        handlers.NewBudgetHandler(budgets),
		VendorPortal:  handlers.NewVendorPortalHandler(store, registry, engine),
		Admin:         handlers.NewAdminHandler(store, notifier),
		Notifications: handlers.NewNotificationsHandler(notifier),
		Traditions:    handlers.NewTraditionsHandler(store),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(log, app),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server stopped gracefully")
}

// openBackend selects the document store backend from config.
func openBackend(cfg config.Store) (docstore.Backend, error) {
	if cfg.Driver == "sqlite" {
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
		if err != nil {
			return nil, err
		}
		return docstore.NewGormBackend(db)
	}
	return docstore.NewFileBackend(cfg.DataDir)
}

// withLogging adds request logging middleware.
func withLogging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}
