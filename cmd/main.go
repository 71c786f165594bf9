package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"nectix/internal/config"
	"nectix/internal/db"
	"nectix/internal/domain"
	httpapi "nectix/internal/http"
	"nectix/internal/logger"
	"nectix/internal/payment"
	"nectix/internal/repository"
	"nectix/internal/service"
	"nectix/internal/storage"

	_ "nectix/docs"
)

// @title Nectix Store API
// @version 1.0
// @description Storefront backend: catalog, cart, checkout with PIX payments, favorites, sessions.
// @BasePath /api/v1
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Logger)
	if err != nil {
		stdlog.Fatalf("logger: %v", err)
	}
	defer log.Sync()

	store, err := storage.New(cfg.Storage.Dir)
	if err != nil {
		log.Fatal("storage", zap.Error(err))
	}

	catalog := repository.NewMemoryCatalog(repository.SeedProducts()...)

	// демо-пользователь для входа на витрину
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("hash demo password", zap.Error(err))
	}
	users := repository.NewMemoryUsers(domain.User{
		ID:           uuid.NewString(),
		Email:        cfg.Auth.DemoEmail,
		PasswordHash: string(hash),
	})

	var favRemote repository.FavoritesRepository
	if cfg.Postgres.DSN != "" {
		conn, err := db.Open(cfg.Postgres.DSN)
		if err != nil {
			log.Fatal("favorites db", zap.Error(err))
		}
		defer conn.Close()
		if err := db.RunMigrations(conn, log); err != nil {
			log.Fatal("migrations", zap.Error(err))
		}
		favRemote = repository.NewPgFavorites(conn)
	} else {
		log.Info("favorites db not configured, using local slots only")
	}

	var payClient payment.Client
	if cfg.Payment.BaseURL != "" {
		payClient = payment.NewRESTClient(cfg.Payment.BaseURL, cfg.Payment.Timeout, log)
	} else {
		log.Info("payment backend not configured, running in mock mode")
		payClient = payment.NewMockClient(3)
	}
	policy := payment.Policy{
		InitialInterval: cfg.Payment.PollInitialInterval,
		MaxInterval:     cfg.Payment.PollMaxInterval,
		Multiplier:      cfg.Payment.PollMultiplier,
		MaxAttempts:     cfg.Payment.PollMaxAttempts,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := service.NewSessionService(users, store, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, log)
	sessions.StartWatcher(ctx, cfg.Auth.WatchInterval)

	checkout := service.NewCheckoutService(payClient, policy, log)
	defer checkout.Close()

	srv := httpapi.NewServer(
		service.NewProductService(catalog),
		service.NewCartStore(store, service.DefaultCartSlot, log),
		checkout,
		service.NewFavoritesService(favRemote, repository.NewLocalFavorites(store), log),
		sessions,
	)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
