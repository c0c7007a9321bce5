package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"kudos/api"
	"kudos/config"
	"kudos/database"
	"kudos/events"
	"kudos/repository"
	"kudos/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	userService := service.NewUserService(uowFactory, cfg)
	cardService := service.NewCardService(uowFactory)
	likeService := service.NewLikeService(uowFactory, cfg)
	resetService := service.NewResetService(uowFactory, cfg)
	statsService := service.NewStatsService(uowFactory, cfg)

	// The sweep is idempotent, so running it hourly is safe; the per-user
	// last_reset_at condition decides whether anything actually changes
	resetService.Start(ctx, cfg.ResetInterval)

	router := api.SetupRouter(cfg, userService, cardService, likeService, statsService)
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		db.Close()
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithField("error", err).Warn("HTTP server shutdown error")
	}

	db.Close()
	log.Info("Shutdown completed")

	return nil
}
