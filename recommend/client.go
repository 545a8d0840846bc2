package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"delivery-svc/circuitbreaker"
	"delivery-svc/models"

	"go.uber.org/zap"
)

// Client fetches replacement suggestions for an unavailable item from
// the external recommendation service. On any failure it serves the
// preset catalog so the customer flow never blocks on the remote side.
type Client struct {
	url            string
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	logger         *zap.Logger
}

type recommendationResponse struct {
	Alternatives []models.Alternative `json:"alternatives"`
}

func NewClient(logger *zap.Logger) *Client {
	return &Client{
		url: getEnv("RECOMMEND_URL", "https://junction2025.onrender.com/recommendations"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		circuitBreaker: circuitbreaker.NewCircuitBreaker(5, 30*time.Second),
		logger:         logger,
	}
}

// NewClientWithURL is used by tests to point at a local server.
func NewClientWithURL(url string, logger *zap.Logger) *Client {
	c := NewClient(logger)
	c.url = url
	return c
}

// AlternativesForItem never fails: remote errors degrade to the preset
// catalog.
func (c *Client) AlternativesForItem(ctx context.Context, itemID string) []models.Alternative {
	alternatives, err := c.fetch(ctx, itemID)
	if err != nil {
		c.logger.Warn("Recommendation service unavailable, using preset catalog",
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		return PresetCatalog()
	}
	if len(alternatives) == 0 {
		return PresetCatalog()
	}
	return alternatives
}

func (c *Client) fetch(ctx context.Context, itemID string) ([]models.Alternative, error) {
	var out []models.Alternative
	err := c.circuitBreaker.Execute(ctx, func() error {
		url := fmt.Sprintf("%s/%s", c.url, itemID)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("recommendation call failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("recommendation service returned status %d", resp.StatusCode)
		}

		var body recommendationResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("failed to decode recommendations: %w", err)
		}
		out = body.Alternatives
		return nil
	})
	return out, err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
