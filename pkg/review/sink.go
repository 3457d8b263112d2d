package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// LogSink is a PresentationSink that emits a structured log line instead of
// rendering a prompt. It is the sink for headless deployments; hosts with a
// UI supply their own implementation.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a log-backed sink. A nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "review.sink")}
}

// Present implements PresentationSink.
func (s *LogSink) Present(_ context.Context, c Candidate) error {
	s.logger.Info("review prompt",
		"engagement_id", c.EngagementID,
		"role", string(c.Role),
		"ends_at", c.Engagement.EndsAt,
		"context", map[string]string(c.Context),
	)
	return nil
}

// WebhookSink is a PresentationSink that POSTs the committed candidate as a
// JSON document to a fixed URL. Delivery failures are reported to the engine,
// which logs and counts them; the decision stands either way, so the receiver
// must treat redelivery as impossible and absence as the only failure mode.
type WebhookSink struct {
	url    string
	client *http.Client
}

// NewWebhookSink creates a webhook-backed sink. A non-positive timeout
// defaults to 5 seconds.
func NewWebhookSink(url string, timeout time.Duration) *WebhookSink {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Present implements PresentationSink.
func (s *WebhookSink) Present(ctx context.Context, c Candidate) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode candidate: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the transport can reuse the connection.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
