// @title           Task Manager API
// @version         1.0
// @description     Accounts, bearer tokens and per-user tasks.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-manager/config"
	"task-manager/db"
	"task-manager/handlers"
	"task-manager/middlewares"
	"task-manager/services"
	"task-manager/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := cfg.NewLogger()

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Error("close store failed", slog.String("error", err.Error()))
		}
	}()

	var opts []services.CredentialOption
	if mailer := utils.NewAccountMailer(cfg.Email); mailer != nil {
		opts = append(opts, services.WithNotifier(mailer))
		logger.Info("email notifications enabled", slog.String("provider", cfg.Email.Provider))
	}
	if cfg.Cloudinary.Enabled() {
		mirror, err := utils.NewCloudinaryMirror(cfg.Cloudinary)
		if err != nil {
			return err
		}
		opts = append(opts, services.WithAvatarMirror(mirror))
		logger.Info("avatar mirror enabled", slog.String("cloud", cfg.Cloudinary.CloudName))
	}

	users, err := services.NewCredentialStore(store, cfg.BcryptCost, logger, opts...)
	if err != nil {
		return err
	}

	router := handlers.NewRouter(handlers.Deps{
		Store:        store,
		Users:        users,
		Tokens:       services.NewTokenService(store, cfg.JWTSecret, cfg.TokenTTL),
		Tasks:        services.NewTaskStore(store),
		Avatars:      services.NewAvatarProcessor(cfg.AvatarSize, cfg.AvatarMaxPixels),
		AvatarLimit:  cfg.AvatarMaxBytes,
		LoginLimiter: middlewares.NewClientLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst),
		Maintenance:  cfg.MaintenanceMode,
		CORSOrigins:  cfg.CORSAllowedOrigins,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", cfg.HTTPAddr), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	users.Wait()
	return err
}
