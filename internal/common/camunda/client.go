// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dispatch-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client.
type Client struct {
	client zbc.Client
	config *ClientConfig
}

type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RetryConfig            *RetryConfig
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// NewClientWithConfig dials the gateway and confirms the broker answers a
// topology request, retrying transient failures with backoff.
func NewClientWithConfig(ctx context.Context, config *ClientConfig, log logger.Logger) (*Client, error) {
	if config.RetryConfig == nil {
		config.RetryConfig = DefaultRetryConfig
	}
	if config.ConnectionTimeout == 0 {
		config.ConnectionTimeout = 10 * time.Second
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{client: zeebeClient, config: config}
	err = RetryWithBackoff(ctx, config.RetryConfig, log, "zeebe topology", func(ctx context.Context) error {
		return c.HealthCheck(ctx)
	})
	if err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", config.GatewayAddress, err)
	}
	return c, nil
}

func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// RetryWithBackoff runs op until it succeeds, MaxRetries attempts are used,
// or ctx ends. The delay doubles after each failure up to MaxDelay.
// Errors that IsRetryable rejects stop the loop immediately.
func RetryWithBackoff(ctx context.Context, cfg *RetryConfig, log logger.Logger, operation string, op func(context.Context) error) error {
	attempts := max(cfg.MaxRetries, 1)

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if !IsRetryable(err) || attempt == attempts-1 {
			break
		}

		delay := Backoff(cfg, attempt)
		log.Warn(operation+" failed, retrying", map[string]interface{}{
			"error":       err.Error(),
			"attempt":     attempt + 1,
			"maxRetries":  attempts,
			"nextRetryIn": delay.String(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", operation, attempt+1, ctx.Err())
		}
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

// Backoff is BaseDelay * 2^attempt capped at MaxDelay.
func Backoff(cfg *RetryConfig, attempt int) time.Duration {
	delay := cfg.BaseDelay << attempt
	if delay <= 0 || (cfg.MaxDelay > 0 && delay > cfg.MaxDelay) {
		return cfg.MaxDelay
	}
	return delay
}

var retryablePhrases = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"deadline exceeded",
	"unavailable",
	"unreachable",
	"broken pipe",
	"no such host",
	"i/o timeout",
}

// IsRetryable reports whether err looks like a transient network failure.
func IsRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range retryablePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
