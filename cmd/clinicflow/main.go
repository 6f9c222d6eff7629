package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/domain/appointment"
	v1 "github.com/dmehra2102/prod-golang-projects/clinicflow/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/service"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/internal/staging"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/clinicflow/pkg/tracer"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "clinicflow: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("service", cfg.App.Name), zap.String("env", cfg.App.Environment))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		return fmt.Errorf("initialising tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	m := metrics.NewCollector(cfg.App.Name, prometheus.DefaultRegisterer)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Instrument(db, m, log, cfg.Database.SlowQueryThreshold); err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	consultationRepo := postgres.NewConsultationRepository(db)
	vitalsRepo := postgres.NewVitalsRepository(db)
	directory := postgres.NewDirectoryRepository(db)
	userRepo := postgres.NewUserRepository(db)

	auditSvc := service.NewAuditService(postgres.NewAuditRepository(db), log.Named("audit"))
	auditSvc.OnDrop(m.AuditDropped)
	defer auditSvc.Shutdown()

	// Services
	loc := cfg.App.Location()
	vitalsSvc := service.NewVitalsService(vitalsRepo, m, log)
	appointmentSvc := service.NewAppointmentService(
		appointmentRepo, consultationRepo, directory,
		appointment.PolicyFor(cfg.Engine.StrictTransitions), loc,
		auditSvc, m, log,
	)
	consultationSvc := service.NewConsultationService(consultationRepo, appointmentRepo, directory, vitalsSvc, auditSvc, m, log)
	guestSvc := service.NewGuestBookingService(staging.NewRedisGuestStore(rdb), cfg.Engine.GuestBookingTTL, log)
	jwtManager := auth.NewJWTManager(cfg.JWT)
	authSvc := service.NewAuthService(userRepo, directory, jwtManager, guestSvc, appointmentSvc, auditSvc, log)

	secureCookie := cfg.App.Environment == "production"
	router := v1.NewRouter(v1.RouterDeps{
		Config:        cfg,
		Tokens:        jwtManager,
		Appointments:  v1.NewAppointmentHandler(appointmentSvc, guestSvc, cfg.Engine.GuestBookingTTL, secureCookie, log),
		Consultations: v1.NewConsultationHandler(consultationSvc),
		Auth:          v1.NewAuthHandler(authSvc, appointmentSvc, secureCookie),
		Vitals:        v1.NewVitalsHandler(vitalsSvc),
		Metrics:       m,
		Log:           log,
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			return rdb.Ping(ctx).Err()
		},
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("timezone", loc.String()),
			zap.Bool("strict_transitions", cfg.Engine.StrictTransitions),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
