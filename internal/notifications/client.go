package notifications

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"blasting_tracker/internal/retry"

	"github.com/rs/zerolog/log"
)

// failuresBeforeOpen consecutive failures open the circuit for circuitCooldown.
const (
	failuresBeforeOpen = 5
	circuitCooldown    = 30 * time.Second
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	topic      string
	enabled    bool
	priority   string
	retry      retry.Config
	// Circuit breaker state
	failures    int
	lastFailure time.Time
	circuitOpen bool
	mutex       sync.Mutex
	// Metrics
	totalSent   int64
	totalFailed int64
}

type NotificationError struct {
	Type       string
	StatusCode int
	Underlying error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification failed [%s]: %v", e.Type, e.Underlying)
}

func (e *NotificationError) Unwrap() error {
	return e.Underlying
}

func (e *NotificationError) IsRetryable() bool {
	switch e.Type {
	case "network", "server", "rate_limit":
		return true
	case "auth", "client", "circuit_open":
		return false
	default:
		return e.StatusCode >= 500
	}
}

func NewClient(baseURL, topic string, enabled bool, priority string, retryConfig retry.Config) *Client {
	retryConfig.Retryable = func(err error) bool {
		var notifErr *NotificationError
		if errors.As(err, &notifErr) {
			return notifErr.IsRetryable()
		}
		return true
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		topic:    topic,
		enabled:  enabled,
		priority: priority,
		retry:    retryConfig,
	}
}

func (c *Client) Enabled() bool {
	return c.enabled
}

func (c *Client) SendNotification(ctx context.Context, title, message string) error {
	if !c.enabled {
		log.Debug().Msg("Notifications disabled, skipping")
		return nil
	}

	if c.isCircuitOpen() {
		log.Warn().Msg("Circuit breaker open, skipping notification")
		return &NotificationError{Type: "circuit_open", Underlying: fmt.Errorf("circuit breaker is open")}
	}

	err := retry.Do(ctx, c.retry, func(ctx context.Context) error {
		return c.sendSingleNotification(ctx, title, message)
	})
	if err != nil {
		c.recordFailure()
		log.Warn().Err(err).Str("topic", c.topic).Msg("Notification failed")
		return err
	}
	c.recordSuccess()
	return nil
}

func (c *Client) sendSingleNotification(ctx context.Context, title, message string) error {
	url := fmt.Sprintf("%s/%s", c.baseURL, c.topic)

	log.Debug().
		Str("url", url).
		Str("title", title).
		Msg("Sending notification")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(message))
	if err != nil {
		return &NotificationError{Type: "client", Underlying: err}
	}

	req.Header.Set("Content-Type", "text/plain")
	if title != "" {
		req.Header.Set("Title", title)
	}
	if c.priority != "" {
		req.Header.Set("Priority", c.priority)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NotificationError{Type: "network", Underlying: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &NotificationError{
			Type:       categorizeHTTPError(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Underlying: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status),
		}
	}

	log.Debug().Int("status_code", resp.StatusCode).Msg("Notification sent successfully")
	return nil
}

// NotifyStatusChange announces that a trip moved to another status bucket.
func (c *Client) NotifyStatusChange(ctx context.Context, trackingID, from, to string) {
	if !c.enabled {
		return
	}
	title := fmt.Sprintf("Trip %s: %s", trackingID, to)
	message := formatStatusChange(trackingID, from, to)
	if err := c.SendNotification(ctx, title, message); err != nil {
		log.Warn().Err(err).Str("tracking_id", trackingID).Msg("Status change notification failed")
	}
}

func formatStatusChange(trackingID, from, to string) string {
	if from == "" {
		return fmt.Sprintf("🚚 %s is now %s", trackingID, to)
	}
	return fmt.Sprintf("🚚 %s moved from %s to %s", trackingID, from, to)
}

func (c *Client) isCircuitOpen() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.circuitOpen {
		return false
	}
	if time.Since(c.lastFailure) > circuitCooldown {
		c.circuitOpen = false
		c.failures = 0
		log.Info().Msg("Circuit breaker moving to half-open state")
	}
	return c.circuitOpen
}

func (c *Client) recordSuccess() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.totalSent++
	c.failures = 0
	if c.circuitOpen {
		c.circuitOpen = false
		log.Info().Msg("Circuit breaker closed after successful notification")
	}
}

func (c *Client) recordFailure() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.totalFailed++
	c.failures++
	c.lastFailure = time.Now()

	if c.failures >= failuresBeforeOpen && !c.circuitOpen {
		c.circuitOpen = true
		log.Warn().
			Int("failures", c.failures).
			Msg("Circuit breaker opened due to consecutive failures")
	}
}

func categorizeHTTPError(statusCode int) string {
	switch {
	case statusCode == 401 || statusCode == 403:
		return "auth"
	case statusCode == 429:
		return "rate_limit"
	case statusCode >= 400 && statusCode < 500:
		return "client"
	case statusCode >= 500:
		return "server"
	default:
		return "unknown"
	}
}

// GetMetrics returns current notification metrics
func (c *Client) GetMetrics() (sent, failed int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.totalSent, c.totalFailed
}
