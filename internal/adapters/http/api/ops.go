package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/inhouse/pkg/metrics"
)

// StatsProvider reports service statistics for /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// OpsHandler serves the operational endpoints: the Prometheus exposition on
// /healthz and the service statistics on /stats.
type OpsHandler struct {
	exposition http.Handler
	stats      StatsProvider
	started    time.Time
}

// NewOpsHandler creates an ops handler reporting stats from provider.
func NewOpsHandler(provider StatsProvider) *OpsHandler {
	return &OpsHandler{
		exposition: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
		stats:      provider,
		started:    time.Now(),
	}
}

// HandleHealth handles GET /healthz.
func (h *OpsHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.exposition.ServeHTTP(w, r)
}

// HandleStats handles GET /stats. The provider's map is extended with the
// handler's uptime in seconds.
func (h *OpsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	out := map[string]interface{}{}
	if h.stats != nil {
		for k, v := range h.stats.GetStats() {
			out[k] = v
		}
	}
	out["uptimeSeconds"] = int64(time.Since(h.started).Seconds())
	writeJSON(w, http.StatusOK, out)
}
