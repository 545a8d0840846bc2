package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"delivery-svc/circuitbreaker"

	"go.uber.org/zap"
)

// AgentNotification is the payload sent to the external AI agent, which
// contacts the customer by SMS or voice call about their missed items.
type AgentNotification struct {
	OrderID       string `json:"order_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Description   string `json:"description"`
	IssueCount    int    `json:"issue_count"`
}

// Notifier posts notifications to the agent webhook. Callers must treat
// a failed Notify as "not submitted": issue state may only advance after
// the notification went through.
type Notifier struct {
	url            string
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	logger         *zap.Logger
}

func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{
		url: getEnv("AGENT_WEBHOOK_URL", "http://localhost:9090/agent/notify"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		circuitBreaker: circuitbreaker.NewCircuitBreaker(5, 30*time.Second),
		logger:         logger,
	}
}

// NewNotifierWithURL is used by tests to point at a local server.
func NewNotifierWithURL(url string, logger *zap.Logger) *Notifier {
	n := NewNotifier(logger)
	n.url = url
	return n
}

func (n *Notifier) Notify(ctx context.Context, notification AgentNotification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = n.circuitBreaker.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return fmt.Errorf("agent webhook call failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("agent webhook returned status %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		n.logger.Error("Agent notification failed",
			zap.String("order_id", notification.OrderID),
			zap.Error(err),
		)
		return err
	}

	n.logger.Info("Agent notification sent",
		zap.String("order_id", notification.OrderID),
		zap.Int("issue_count", notification.IssueCount),
	)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
