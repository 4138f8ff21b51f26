package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/okian/inhouse/pkg/metrics"
)

// Instrument records the request count and latency of next under endpoint.
// Failed requests also count an http error labelled with the response's
// error code, or the status class when the handler wrote no code.
func Instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		metrics.RecordHTTPRequest(endpoint, r.Method, rec.status, time.Since(start).Seconds())
		if rec.status < http.StatusBadRequest {
			return
		}
		kind := rec.code
		if kind == "" {
			kind = statusClass(rec.status)
		}
		metrics.RecordError("http", kind)
	}
}

func statusClass(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case status == http.StatusNotFound:
		return "not_found"
	default:
		return "client_error"
	}
}

// statusRecorder captures the status and error code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	code   string
}

func (rw *statusRecorder) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

// noteErrorCode tags an instrumented response with its error code.
func noteErrorCode(w http.ResponseWriter, code string) {
	if rw, ok := w.(*statusRecorder); ok {
		rw.code = code
	}
}
