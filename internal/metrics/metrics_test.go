package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleetops/internal/metrics"
)

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.Dispatch(metrics.OutcomeRejected, "capacity exceeded")
	m.Dispatch(metrics.OutcomeRejected, "capacity exceeded")
	m.Dispatch(metrics.OutcomeDispatched, "")
	m.Transition("", "DISPATCHED")
	m.Transition("DISPATCHED", "COMPLETED")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DispatchTotal.WithLabelValues("rejected", "capacity exceeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DispatchTotal.WithLabelValues("dispatched", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("NONE", "DISPATCHED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("DISPATCHED", "COMPLETED")))
}

func TestMetrics_TxDuration(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.Tx("dispatch", true, 20*time.Millisecond)
	m.Tx("dispatch", false, 5*time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(m.TxDuration))
}

func TestMetrics_Request(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.Request(http.MethodGet, "/trips/{id}", http.StatusOK, time.Millisecond)
	m.Request(http.MethodGet, "/trips/{id}", http.StatusNotFound, time.Millisecond)
	m.Request(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 3, testutil.CollectAndCount(m.HTTPDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Dispatch(metrics.OutcomeError, "")
		m.Transition("DRAFT", "CANCELLED")
		m.Tx("update_status", true, time.Millisecond)
		m.Request(http.MethodGet, "/trips", http.StatusOK, time.Millisecond)
	})
}

func TestHandler_ExposesRegisteredMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	m := metrics.New(reg)
	m.Dispatch(metrics.OutcomeDispatched, "")

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `fleet_dispatch_total{outcome="dispatched",reason=""} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
