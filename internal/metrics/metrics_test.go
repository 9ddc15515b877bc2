package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveProxy(t *testing.T) {
	m := New()

	m.ObserveProxy("login", http.StatusOK, 10*time.Millisecond)
	m.ObserveProxy("login", http.StatusOK, 20*time.Millisecond)
	m.ObserveProxy("login", http.StatusUnauthorized, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.proxyRequests.WithLabelValues("login", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.proxyRequests.WithLabelValues("login", "401")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.upstreamLatency))
}

func TestCountProxy(t *testing.T) {
	m := New()

	m.CountProxy("session", http.StatusUnauthorized)
	m.CountProxy("session", http.StatusUnauthorized)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.proxyRequests.WithLabelValues("session", "401")))
	assert.Zero(t, testutil.CollectAndCount(m.upstreamLatency), "no upstream call, no latency sample")
}

func TestObserveGateAndUpstream(t *testing.T) {
	m := New()

	m.ObserveGate("continue")
	m.ObserveGate("login")
	m.ObserveGate("login")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.gateDecisions.WithLabelValues("login")))

	m.SetUpstreamUp(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamUp))
	m.SetUpstreamUp(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.upstreamUp))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveGate("unauthorized")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `devis_gateway_gate_decisions_total{outcome="unauthorized"} 1`)
}
