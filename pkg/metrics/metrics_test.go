package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(
			WithNamespace("test"),
			WithSubsystem("unit"),
			WithLatencyBuckets([]float64{1, 10, 100}),
			WithEpochBuckets([]float64{10, 100}),
			WithFitnessBuckets([]float64{1, 5}),
			WithConstLabels(map[string]string{"env": "test"}),
			WithPrometheusRegistry(registry),
		)

		Convey("Then collectors are registered under the configured names", func() {
			m.actions.WithLabelValues("join", "ok").Inc()
			m.actions.WithLabelValues("join", "ok").Inc()
			So(testutil.ToFloat64(m.actions.WithLabelValues("join", "ok")), ShouldEqual, 2)

			families, err := registry.Gather()
			So(err, ShouldBeNil)
			names := map[string]bool{}
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["test_unit_actions_total"], ShouldBeTrue)
		})

		Convey("Then a second manager on the same registry panics on duplicate registration", func() {
			So(func() { NewManager(WithNamespace("test"), WithSubsystem("unit"), WithPrometheusRegistry(registry)) }, ShouldPanic)
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording optimizer runs", func() {
			before := testutil.ToFloat64(globalManager.optimizerRuns.WithLabelValues("threshold"))
			RecordOptimizerRun("threshold", 12, 0.5, 3.2, 4)
			So(testutil.ToFloat64(globalManager.optimizerRuns.WithLabelValues("threshold")), ShouldEqual, before+1)
		})

		Convey("When recording ledger activity", func() {
			before := testutil.ToFloat64(globalManager.awardsApplied)
			RecordMatchScored(10)
			RecordScoreDuplicate()
			RecordToxicity()
			So(testutil.ToFloat64(globalManager.awardsApplied), ShouldEqual, before+10)
		})

		Convey("When moving gauges", func() {
			UpdatePoolSize("g1", "queued", 7)
			AddActiveMatches(2)
			AddActiveMatches(-1)
			UpdateQueueCapacity(64)
			So(testutil.ToFloat64(globalManager.poolSize.WithLabelValues("g1", "queued")), ShouldEqual, 7)
			So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64)
		})

		Convey("When recording the remaining helpers", func() {
			So(func() {
				RecordAction("finalize", "ok")
				RecordTransition("proposed", "in_progress")
				UpdateGuilds(1)
				UpdateParticipants(30)
				RecordRatingLookup("stale")
				UpdateQueueSize(3)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				AddWorkerActive(1)
				RecordWorkerProcessingLatency(12)
				RecordWorkerError()
				RecordHTTPRequest("/v1/standings", "GET", 200, 0.01)
				RecordError("ledger", "duplicate")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
