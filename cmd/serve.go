package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"apartmani/internal/caching"
	"apartmani/internal/config"
	"apartmani/internal/handlers"
	"apartmani/internal/jobs/background"
	"apartmani/internal/mailer"
	"apartmani/internal/repositories"
	"apartmani/internal/server"
	"apartmani/internal/services"
	"apartmani/pkg/database"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(logger *slog.Logger, envFile *string) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(logger, *envFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, migrate, logger)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply migrations before serving")
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, migrate bool, logger *slog.Logger) error {
	if migrate {
		if err := database.Migrate(ctx, cfg.DatabaseURL, logger); err != nil {
			return err
		}
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	var (
		locker  caching.Locker = caching.NewLocalLocker()
		limiter caching.RateLimiter
		cache   handlers.Pinger
	)
	if cfg.RedisAddr != "" {
		cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ReservationLockTTL, logger)
		defer cacheSvc.Close()
		locker, limiter, cache = cacheSvc, cacheSvc, cacheSvc
	} else {
		logger.Warn("REDIS_ADDR not set, using in-process reservation locks and no rate limiting")
	}

	accountRepo := repositories.NewAccountRepository(pool)
	unitRepo := repositories.NewUnitRepository(pool)
	reservationRepo := repositories.NewReservationRepository(pool)

	dispatcher := mailer.NewDispatcher(mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		Timeout:  cfg.SMTPTimeout,
	}), cfg.AppBaseURL, logger)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.OneShotTokenLength, services.SystemClock, services.SecureRandom)
	accounts := services.NewAccountService(services.AccountServiceConfig{
		Accounts:    accountRepo,
		Credentials: services.NewCredentialService(cfg.BcryptCost),
		Tokens:      tokens,
		Notifier:    dispatcher,
		Clock:       services.SystemClock,
		ResetTTL:    cfg.ResetTokenTTL,
		Logger:      logger,
	})
	units := services.NewUnitService(unitRepo, services.SystemClock)
	reservations := services.NewReservationService(reservationRepo, units, locker, services.SystemClock, logger)

	scheduler, err := background.NewJobScheduler(accountRepo, cfg.ResetSweepInterval, services.SystemClock.Now, logger)
	if err != nil {
		return err
	}
	scheduler.Start()

	e := server.NewRouter(server.Deps{
		Accounts:           accounts,
		Units:              units,
		Reservations:       reservations,
		Tokens:             tokens,
		Resolver:           accountRepo,
		Health:             handlers.NewHealthHandlers(pool, cache),
		RateLimiter:        limiter,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Logger:             logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("apartmani server starting", "version", version, "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	if err := scheduler.Stop(); err != nil {
		logger.Error("scheduler shutdown failed", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Error("mail dispatcher did not drain", "error", err)
	}
	return nil
}
