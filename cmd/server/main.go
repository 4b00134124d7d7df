package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/expensetracker/api/config"
	"github.com/expensetracker/api/internal/email"
	"github.com/expensetracker/api/internal/health"
	"github.com/expensetracker/api/internal/infrastructure/postgres"
	ctxlog "github.com/expensetracker/api/internal/log"
	"github.com/expensetracker/api/internal/metrics"
	"github.com/expensetracker/api/internal/otp"
	httptransport "github.com/expensetracker/api/internal/transport/http"
	"github.com/expensetracker/api/internal/transport/http/handler"
	"github.com/expensetracker/api/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

// Stale passcodes older than this get swept; at one minute of validity
// they are long dead by then, so the sweep never races a verification.
const staleOTPAge = 24 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	lookupRepo := postgres.NewLookupRepository(pool)

	// Auth
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, sender, otp.NewGenerator(), []byte(cfg.JWTSecret))
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Expenses
	expenseUsecase := usecase.NewExpenseUsecase(expenseRepo, lookupRepo, userRepo)
	expenseHandler := handler.NewExpenseHandler(expenseUsecase, logger)

	// Users
	userUsecase := usecase.NewUserUsecase(userRepo)
	userHandler := handler.NewUserHandler(userUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, expenseHandler, userHandler, []byte(cfg.JWTSecret)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	sweeper := cron.New()
	_, err = sweeper.AddFunc("@hourly", func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cleared, err := userRepo.ClearStaleOTPs(sweepCtx, staleOTPAge)
		if err != nil {
			logger.Error("otp sweep", "error", err)
			return
		}
		if cleared > 0 {
			metrics.StaleOTPsClearedTotal.Add(float64(cleared))
			logger.Info("otp sweep", "cleared", cleared)
		}
	})
	if err != nil {
		stop()
		log.Fatalf("cron: %v", err)
	}
	sweeper.Start()

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	<-sweeper.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
