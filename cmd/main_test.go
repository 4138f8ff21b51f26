package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/inhouse/internal/adapters/http/api"
	"github.com/okian/inhouse/internal/adapters/http/swagger"
	"github.com/okian/inhouse/internal/config"
	"github.com/okian/inhouse/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("INHOUSE_ADDR", ":8080")
			_ = os.Setenv("INHOUSE_QUEUE_SIZE", "1000")
			_ = os.Setenv("INHOUSE_WORKER_COUNT", "4")
			_ = os.Setenv("INHOUSE_SEARCH_BUDGET_MS", "40")
			defer func() {
				_ = os.Unsetenv("INHOUSE_ADDR")
				_ = os.Unsetenv("INHOUSE_QUEUE_SIZE")
				_ = os.Unsetenv("INHOUSE_WORKER_COUNT")
				_ = os.Unsetenv("INHOUSE_SEARCH_BUDGET_MS")
			}()

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then it reaches the service options", func() {
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.JobQueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)

				b := budget(cfg)
				convey.So(b.MaxDuration, convey.ShouldEqual, 40*time.Millisecond)
				convey.So(b.MaxEpochs, convey.ShouldEqual, cfg.MaxEpochs)
				convey.So(b.Neighbors, convey.ShouldEqual, cfg.NeighborsPerEpoch)

				svc, err := buildService(cfg, logger.Get())
				convey.So(err, convey.ShouldBeNil)
				stats := svc.GetStats()
				convey.So(stats["workerCount"], convey.ShouldEqual, 4)
				convey.So(stats["queueSize"], convey.ShouldEqual, 1000)
			})
		})

		convey.Convey("When the sqlite store is selected", func() {
			cfg := config.New()
			cfg.Store = config.StoreSQLite
			cfg.DatabasePath = filepath.Join(t.TempDir(), "inhouse.db")

			convey.Convey("Then the directory opens and serves the API", func() {
				svc, err := buildService(cfg, logger.Get())
				convey.So(err, convey.ShouldBeNil)
				ctx := context.Background()
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer svc.Stop(ctx)

				mux := http.NewServeMux()
				api.NewServer(svc, svc, cfg.MaxStandingsLimit).Register(mux)
				swagger.Register(mux)

				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/standings", nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

				w = httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When the configuration is invalid", func() {
			_ = os.Setenv("INHOUSE_LOCK_POLICY", "sometimes")
			defer func() { _ = os.Unsetenv("INHOUSE_LOCK_POLICY") }()

			err := run(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "failed to load config")
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		svc, err := buildService(config.New(), logger.Get())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the updaters run until their context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("When metrics are refreshed directly", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestRunShutdown(t *testing.T) {
	convey.Convey("Given a running server", t, func() {
		_ = os.Setenv("INHOUSE_ADDR", "127.0.0.1:0")
		defer func() { _ = os.Unsetenv("INHOUSE_ADDR") }()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- run(ctx) }()

		convey.Convey("When its context is cancelled", func() {
			time.Sleep(50 * time.Millisecond)
			cancel()

			convey.Convey("Then it shuts down cleanly", func() {
				convey.So(<-done, convey.ShouldBeNil)
			})
		})
	})
}
