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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/settler/internal/config"
	"github.com/MrJamesThe3rd/settler/internal/database"
	settlerHttp "github.com/MrJamesThe3rd/settler/internal/http"
	jobsHandler "github.com/MrJamesThe3rd/settler/internal/http/jobs"
	reportHandler "github.com/MrJamesThe3rd/settler/internal/http/report"
	reservationHandler "github.com/MrJamesThe3rd/settler/internal/http/reservation"
	"github.com/MrJamesThe3rd/settler/internal/logging"
	"github.com/MrJamesThe3rd/settler/internal/metrics"
	"github.com/MrJamesThe3rd/settler/internal/reservation"
	reservationStore "github.com/MrJamesThe3rd/settler/internal/reservation/store"
	"github.com/MrJamesThe3rd/settler/internal/scheduler"
	"github.com/MrJamesThe3rd/settler/internal/settlement"
	settlementStore "github.com/MrJamesThe3rd/settler/internal/settlement/store"
	"github.com/MrJamesThe3rd/settler/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.App.LogLevel, cfg.App.LogFormat).With("app", cfg.App.Name)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := database.New(cfg.ConnectionString(), cfg.DB.MaxOpenConns)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterDB(reg, db, cfg.DB.Name)
	m := metrics.New(reg)

	var (
		settlements  = settlementStore.New(db)
		reservations = reservationStore.New(db)
	)

	var (
		settlementService = settlement.NewService(settlements, settlement.Config{
			PageSize:   cfg.Settlement.PageSize,
			ChunkSize:  cfg.Settlement.ChunkSize,
			RunTimeout: cfg.Settlement.RunTimeout,
			Location:   loc,
		}, logger.With("job", worker.JobSettle))
		sweeper = reservation.NewSweeper(reservations, reservation.Config{
			TTL:        cfg.Reservation.TTL,
			BatchLimit: cfg.Reservation.BatchLimit,
			ChunkSize:  cfg.Reservation.ChunkSize,
		}, logger.With("job", worker.JobExpireReservations))
	)

	sched, err := scheduler.New(worker.Jobs(settlementService, sweeper, worker.Intervals{
		Settle: cfg.Settlement.Interval,
		Sweep:  cfg.Reservation.SweepInterval,
	}, m), m, logger)
	if err != nil {
		return err
	}

	router := settlerHttp.New(
		db,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		cfg.Server.CORSOrigins,
		jobsHandler.NewHandler(sched, rate.NewLimiter(rate.Limit(cfg.Server.JobTriggerRate), cfg.Server.JobTriggerBurst)),
		reportHandler.NewHandler(reportHandler.NewCachedReader(settlements, loc, cfg.Server.ReportCacheTTL)),
		reservationHandler.NewHandler(reservations),
	)

	srv := &http.Server{
		Addr:              cfg.App.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + cfg.Settlement.RunTimeout,
	}

	serveErr := make(chan error, 1)

	go func() {
		logger.Info("starting server", "addr", cfg.App.HTTPAddr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	schedDone := make(chan error, 1)

	go func() { schedDone <- sched.Start(ctx) }()

	var (
		schedErr     error
		schedStopped bool
	)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		stop()
		<-schedDone

		return err
	case schedErr = <-schedDone:
		schedStopped = true
		logger.Error("scheduler stopped, shutting down", "error", schedErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}

	if schedStopped {
		return schedErr
	}

	return <-schedDone
}
