package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ntu-food/internal/admin"
	"ntu-food/internal/auth"
	"ntu-food/internal/config"
	"ntu-food/internal/db"
	apihttp "ntu-food/internal/handler/http"
	"ntu-food/internal/menu"
	"ntu-food/internal/order"
	"ntu-food/internal/queue"
	"ntu-food/internal/stall"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "ntu-food-api").Logger()

	log.Info().Msg("API server starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx := context.Background()
	dbConn, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	if cfg.App.AutoMigrate {
		if err := db.ApplyMigrations(cfg.Postgres, "migrations"); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	authRepo := auth.NewRepository(dbConn.Pool)
	stallRepo := stall.NewRepository(dbConn.Pool)
	menuRepo := menu.NewRepository(dbConn.Pool)
	orderRepo := order.NewRepository(dbConn.Pool)
	queueRepo := queue.NewRepository(dbConn.Pool)
	adminRepo := admin.NewRepository(dbConn.Pool)

	authSvc := auth.NewService(authRepo, tokens, auth.LogMailer{}, cfg.Auth.OTPTTL)
	stallSvc := stall.NewService(stallRepo)
	menuSvc := menu.NewService(menuRepo, stallRepo)
	orderSvc := order.NewService(orderRepo, queueRepo, stallRepo, menuRepo)
	queueSvc := queue.NewService(queueRepo)
	adminSvc := admin.NewService(adminRepo, authRepo)

	router := apihttp.NewRouter(apihttp.Handlers{
		Auth:          apihttp.NewAuthHandler(authSvc),
		Stall:         apihttp.NewStallHandler(stallSvc),
		Menu:          apihttp.NewMenuHandler(menuSvc),
		Order:         apihttp.NewOrderHandler(orderSvc),
		Queue:         apihttp.NewQueueHandler(queueSvc),
		Admin:         apihttp.NewAdminHandler(adminSvc),
		Authenticator: apihttp.NewAuthenticator(tokens, authSvc),
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown failed")
	}
	log.Info().Msg("Server stopped gracefully")
}
