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

	"github.com/go-chi/httplog/v3"
	"github.com/onestaff/onestaff-os/internal/config"
	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	appHTTP "github.com/onestaff/onestaff-os/internal/handler/http"
	"github.com/onestaff/onestaff-os/internal/handler/http/middleware"
	"github.com/onestaff/onestaff-os/internal/pkg/cron"
	"github.com/onestaff/onestaff-os/internal/pkg/database"
	"github.com/onestaff/onestaff-os/internal/pkg/document"
	"github.com/onestaff/onestaff-os/internal/pkg/jwt"
	"github.com/onestaff/onestaff-os/internal/pkg/sse"
	"github.com/onestaff/onestaff-os/internal/pkg/storage"
	"github.com/onestaff/onestaff-os/internal/repository/postgresql"
	payrollService "github.com/onestaff/onestaff-os/internal/service/payroll"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	policy, err := loadPolicy(cfg.Payroll.PolicyFile)
	if err != nil {
		return err
	}
	slog.Info("Payroll policy loaded", "version", policy.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath)
		if err != nil {
			return fmt.Errorf("initialize local storage: %w", err)
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}

	repos := payrollService.Repositories{
		Runs:                postgresql.NewRunRepository(db),
		Payslips:            postgresql.NewPayslipRepository(db),
		SigningBonuses:      postgresql.NewSigningBonusRepository(db),
		TerminationBenefits: postgresql.NewTerminationBenefitRepository(db),
		Penalties:           postgresql.NewPenaltyRepository(db),
		Employees:           postgresql.NewEmployeeRepository(db),
		Attendance:          postgresql.NewAttendanceRepository(db),
		Leaves:              postgresql.NewLeaveRepository(db),
		Config:              postgresql.NewConfigRepository(db),
	}

	hub := sse.NewHub()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	renderer := document.NewPayslipRenderer(cfg.Payroll.DefaultEntity, cfg.Payroll.Currency)

	reconciler := payrollService.NewSigningBonusReconciler(repos.Employees, repos.Config, repos.SigningBonuses)
	runSvc := payrollService.NewRunService(
		postgresql.NewTransactor(db),
		repos,
		payrollService.NewCalculator(policy),
		reconciler,
		hub,
	)
	payslipSvc := payrollService.NewPayslipService(repos.Runs, repos.Payslips, repos.Employees, fileStorage, renderer, hub)
	reviewSvc := payrollService.NewReviewService(repos.SigningBonuses, repos.TerminationBenefits)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Logger:         logger,
		LogLevel:       cfg.SlogLevel(),
		AllowedOrigins: cfg.App.AllowedOrigins,
		RateLimiter:    middleware.NewUserRateLimiter(cfg.RateLimit.RunCreationPerMinute, cfg.RateLimit.Burst),
	}, JWTService, appHTTP.Handlers{
		Runs:     appHTTP.NewPayrollRunHandler(runSvc),
		Payslips: appHTTP.NewPayslipHandler(payslipSvc),
		Reviews:  appHTTP.NewPayrollReviewHandler(reviewSvc),
		Events:   appHTTP.NewPayrollEventsHandler(hub, JWTService),
	})

	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(reconciler, cfg.Payroll.ReconcileInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Open event streams never finish on their own
	server.RegisterOnShutdown(func() {
		slog.Info("Closing event streams", "subscribers", hub.TotalSubscribers())
		hub.Close()
	})

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}

func loadPolicy(path string) (payroll.Policy, error) {
	if path == "" {
		return payroll.DefaultPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return payroll.Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	policy, err := payroll.ParsePolicy(data)
	if err != nil {
		return payroll.Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	return policy, nil
}
