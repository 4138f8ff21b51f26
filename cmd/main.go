package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/inhouse/internal/adapters/http/api"
	"github.com/okian/inhouse/internal/adapters/http/swagger"
	"github.com/okian/inhouse/internal/adapters/rating"
	"github.com/okian/inhouse/internal/adapters/repository"
	service "github.com/okian/inhouse/internal/app"
	"github.com/okian/inhouse/internal/config"
	"github.com/okian/inhouse/internal/domain/optimizer"
	"github.com/okian/inhouse/pkg/logger"
	"github.com/okian/inhouse/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Defaults -> optional file -> env.
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.LogFormat != "text" {
		if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := buildService(cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop(context.WithoutCancel(ctx))

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	mux := http.NewServeMux()
	api.NewServer(svc, svc, cfg.MaxStandingsLimit).Register(mux)
	swagger.Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// buildService wires the directory, rating lookup and optimizer settings
// from cfg into a service.
func buildService(cfg *config.Config, log logger.Logger) (*service.Service, error) {
	dir, err := openDirectory(cfg)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.JobQueueSize),
		service.WithLedgerCacheSize(cfg.LedgerCacheSize),
		service.WithLockPolicy(cfg.LockPolicy),
		service.WithPreferenceWeight(cfg.PreferenceWeight),
		service.WithBudget(budget(cfg)),
		service.WithSeed(cfg.Seed),
		service.WithMaxListLimit(cfg.MaxStandingsLimit),
		service.WithProwessModel(rating.ProwessModel{
			TierWeight:    cfg.TierWeight,
			WinRateWeight: cfg.WinRateWeight,
			RoleWeight:    cfg.RoleWeight,
		}),
	}
	if cfg.RatingAPIKey != "" {
		opts = append(opts, service.WithRatingLookup(rating.NewClient(
			rating.WithAPIKey(cfg.RatingAPIKey),
			rating.WithBaseURLs(cfg.RatingAccountURL, cfg.RatingLeagueURL),
			rating.WithTimeout(time.Duration(cfg.RatingTimeoutMS)*time.Millisecond),
		)))
	} else {
		log.Warn(context.Background(), "rating_api_key not set; participants onboard unranked")
	}
	return service.New(dir, opts...), nil
}

func openDirectory(cfg *config.Config) (repository.Directory, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		dir, err := repository.OpenSQLite(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open directory: %w", err)
		}
		return dir, nil
	default:
		return repository.NewMemoryDirectory(), nil
	}
}

func budget(cfg *config.Config) optimizer.Budget {
	return optimizer.Budget{
		MaxEpochs:   cfg.MaxEpochs,
		MaxDuration: time.Duration(cfg.SearchBudgetMS) * time.Millisecond,
		Threshold:   cfg.FitnessThreshold,
		Neighbors:   cfg.NeighborsPerEpoch,
	}
}

// startSystemMetricsUpdater updates system metrics until ctx ends.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater updates service metrics until ctx ends.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges GetStats does not set itself.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
