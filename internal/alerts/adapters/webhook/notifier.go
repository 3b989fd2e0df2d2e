// Package webhook posts fired alerts as JSON to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"site-analytics-service/internal/alerts/core/domain"
	"site-analytics-service/internal/alerts/core/ports"
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Payload is the request body sent for every fired alert.
type Payload struct {
	Status    string    `json:"status"`
	Alert     string    `json:"alert"`
	Domain    string    `json:"domain"`
	Property  string    `json:"property"`
	Metric    string    `json:"metric"`
	Key       string    `json:"key"`
	Value     float64   `json:"value"`
	Condition string    `json:"condition"`
	Threshold float64   `json:"threshold"`
	Window    string    `json:"window"`
	Bucket    time.Time `json:"bucket"`
	FiredAt   time.Time `json:"fired_at"`
}

type Notifier struct {
	client   HTTPDoer
	attempts int
	backoff  time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

type Option func(*Notifier)

func WithHTTPClient(c HTTPDoer) Option {
	return func(n *Notifier) { n.client = c }
}

// WithRetry sets how many times a failed delivery is tried and the initial
// pause between tries, doubled after each failure.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(n *Notifier) {
		n.attempts = attempts
		n.backoff = backoff
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(n *Notifier) { n.logger = l }
}

func NewNotifier(opts ...Option) *Notifier {
	n := &Notifier{
		client:   &http.Client{Timeout: 10 * time.Second},
		attempts: 3,
		backoff:  100 * time.Millisecond,
		timeout:  10 * time.Second,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.attempts < 1 {
		n.attempts = 1
	}
	return n
}

var _ ports.Notifier = (*Notifier)(nil)

func (n *Notifier) Notify(ctx context.Context, target string, alert domain.Notification) error {
	payload, err := json.Marshal(Payload{
		Status:    "firing",
		Alert:     alert.Alert,
		Domain:    alert.Domain,
		Property:  alert.Property,
		Metric:    alert.Metric,
		Key:       alert.Key,
		Value:     alert.Value,
		Condition: string(alert.Condition.Op),
		Threshold: alert.Condition.Threshold,
		Window:    alert.Window.String(),
		Bucket:    alert.Bucket,
		FiredAt:   alert.FiredAt,
	})
	if err != nil {
		return err
	}

	backoff := n.backoff
	for attempt := 1; ; attempt++ {
		err = n.send(ctx, target, payload)
		if err == nil {
			return nil
		}
		if attempt >= n.attempts {
			return fmt.Errorf("webhook %s: %w", target, err)
		}
		n.logger.Debug("webhook delivery failed, retrying",
			zap.String("target", target),
			zap.Int("attempt", attempt),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}

func (n *Notifier) send(ctx context.Context, url string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
