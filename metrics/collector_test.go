package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.ObservePoll("success")
	c.ObservePoll("success")
	c.ObservePoll("transport_error")
	c.ObserveReconnect(true)
	c.ObserveReconnect(false)
	c.SetHealthCounter(2)
	c.ObserveCapture("conflict")
	c.ObserveToggle()
	c.ObserveResize(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.polls.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.polls.WithLabelValues("transport_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.reconnects.WithLabelValues("failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.health))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.captures.WithLabelValues("conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.toggles))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.resizes.WithLabelValues("failure")))
}

func TestRegistryIsServed(t *testing.T) {
	c := NewCollector()
	c.ObservePoll("soft_disconnect")

	srv := httptest.NewServer(promhttp.HandlerFor(c.Registry(), promhttp.HandlerOpts{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `matchlens_polls_total{outcome="soft_disconnect"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestShutdownWithoutSetup(t *testing.T) {
	assert.NoError(t, NewServer(0, "/metrics").Shutdown(context.Background()))
}
