package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"courier-dispatch/internal/core/httpclient"
	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/core/metrics"
	"courier-dispatch/internal/core/retry"
	"courier-dispatch/internal/features/dispatch/domain"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// WebhookNotifier posts notifications to a webhook from a background worker.
// Notify only enqueues, so a slow or failing sink never delays dispatch.
type WebhookNotifier struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	queue   chan domain.Notification
	policy  retry.Policy
	log     *zap.Logger
}

// NewWebhookNotifier creates a notifier sending at most perSecond requests.
func NewWebhookNotifier(url string, perSecond float64, buffer int, policy retry.Policy) *WebhookNotifier {
	if buffer <= 0 {
		buffer = 256
	}
	return &WebhookNotifier{
		url:     url,
		client:  httpclient.NewClient("webhook", 5*time.Second),
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		queue:   make(chan domain.Notification, buffer),
		policy:  policy,
		log:     logger.Named("webhook_notifier"),
	}
}

// Notify enqueues n. A full queue drops the notification.
func (w *WebhookNotifier) Notify(_ context.Context, n domain.Notification) error {
	select {
	case w.queue <- n:
		return nil
	default:
		metrics.NotificationDeliveries.WithLabelValues(string(n.Kind), "dropped").Inc()
		w.log.Warn("notification queue full, dropping", zap.String("order_id", n.OrderID), zap.String("kind", string(n.Kind)))
		return fmt.Errorf("notification queue full")
	}
}

// Run delivers queued notifications until ctx is done.
func (w *WebhookNotifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-w.queue:
			if err := w.limiter.Wait(ctx); err != nil {
				return nil
			}
			w.deliver(ctx, n)
		}
	}
}

func (w *WebhookNotifier) deliver(ctx context.Context, n domain.Notification) {
	body, err := json.Marshal(n)
	if err != nil {
		w.log.Error("failed to encode notification", zap.Error(err))
		return
	}

	err = retry.Do(ctx, "webhook.deliver", w.policy, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Event-Type", string(n.Kind))

		resp, err := w.client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("webhook returned status: %d", resp.StatusCode)
		case resp.StatusCode >= 400:
			return retry.Permanent(fmt.Errorf("webhook rejected notification: %d", resp.StatusCode))
		}
		return nil
	})

	status := "delivered"
	if err != nil {
		status = "failed"
		w.log.Warn("notification delivery failed",
			zap.String("order_id", n.OrderID),
			zap.String("kind", string(n.Kind)),
			zap.Error(err),
		)
	}
	metrics.NotificationDeliveries.WithLabelValues(string(n.Kind), status).Inc()
}

// LogNotifier writes notifications to the log. Used when no webhook is configured.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.Named("notifier")}
}

func (l *LogNotifier) Notify(_ context.Context, n domain.Notification) error {
	l.log.Info("notification",
		zap.String("kind", string(n.Kind)),
		zap.String("order_id", n.OrderID),
		zap.Int("recipients", len(n.Recipients)),
	)
	return nil
}
