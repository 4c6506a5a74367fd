package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/core/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })
	return logs
}

func TestTransport_Completed(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	logs := observe(t)
	before := testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("orders-test", "202"))

	resp, err := NewClient("orders-test", time.Second).Get(ts.URL + "/orders?token=secret")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, UserAgent, gotUA)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("orders-test", "202")))

	entries := logs.FilterMessage("Upstream call completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "orders-test", fields["upstream"])
	assert.Equal(t, "/orders", fields["path"])
	assert.Equal(t, int64(http.StatusAccepted), fields["status_code"])
	for _, v := range fields {
		if s, ok := v.(string); ok {
			assert.NotContains(t, s, "secret")
		}
	}
}

func TestTransport_KeepsCallerUserAgent(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer ts.Close()
	observe(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom")

	resp, err := NewClient("webhook-test", time.Second).Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "custom", gotUA)
}

func TestTransport_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()
	logs := observe(t)

	resp, err := NewClient("webhook-test", time.Second).Get(ts.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 1, logs.FilterMessage("Upstream returned server error").Len())
}

func TestTransport_Error(t *testing.T) {
	logs := observe(t)
	before := testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("broken-test", "error"))

	_, err := NewClient("broken-test", time.Second).Get("http://invalid-url-that-does-not-exist.local")
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Upstream call failed").Len())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.UpstreamRequests.WithLabelValues("broken-test", "error")))
}
