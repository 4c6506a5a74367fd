package httpclient

import (
	"net/http"
	"strconv"
	"time"

	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/core/metrics"

	"go.uber.org/zap"
)

// UserAgent is sent on every outbound call that does not set its own.
const UserAgent = "courier-dispatch/1.0"

// Transport instruments calls to a single named upstream (orders API,
// notification webhook). Query strings are never logged since upstream
// URLs may carry tokens.
type Transport struct {
	// Upstream labels logs and metrics.
	Upstream string
	// Base performs the request; http.DefaultTransport when nil.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	elapsed := time.Since(start)

	log := logger.Named("httpclient").With(
		zap.String("upstream", t.Upstream),
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
		zap.Duration("duration", elapsed),
	)

	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(t.Upstream, "error").Inc()
		metrics.UpstreamDuration.WithLabelValues(t.Upstream).Observe(elapsed.Seconds())
		log.Warn("Upstream call failed", zap.Error(err))
		return nil, err
	}

	metrics.UpstreamRequests.WithLabelValues(t.Upstream, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.UpstreamDuration.WithLabelValues(t.Upstream).Observe(elapsed.Seconds())
	if resp.StatusCode >= http.StatusInternalServerError {
		log.Warn("Upstream returned server error", zap.Int("status_code", resp.StatusCode))
	} else {
		log.Debug("Upstream call completed", zap.Int("status_code", resp.StatusCode))
	}
	return resp, nil
}

// NewClient returns a client for the named upstream with the given timeout.
func NewClient(upstream string, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &Transport{Upstream: upstream},
		Timeout:   timeout,
	}
}
