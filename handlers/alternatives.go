package handlers

import (
	"net/http"
	"time"

	"delivery-svc/cache"
	"delivery-svc/recommend"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type AlternativesHandler struct {
	redisClient *redis.Client
	recommender *recommend.Client
	logger      *zap.Logger
}

func NewAlternativesHandler(redisClient *redis.Client, recommender *recommend.Client, logger *zap.Logger) *AlternativesHandler {
	return &AlternativesHandler{
		redisClient: redisClient,
		recommender: recommender,
		logger:      logger,
	}
}

// GetAlternatives serves substitute suggestions for an item: cache
// first, then the recommendation service, which itself falls back to
// the preset catalog. A nil redis client just skips the cache.
func (h *AlternativesHandler) GetAlternatives(c *gin.Context) {
	ctx, span := otel.Tracer("delivery-service").Start(c.Request.Context(), "GetAlternatives")
	defer span.End()

	itemID := c.Param("itemId")
	span.SetAttributes(attribute.String("item.id", itemID))

	if h.redisClient != nil {
		cached, err := cache.GetAlternatives(ctx, h.redisClient, itemID)
		if err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			h.logger.Info("Cache hit", zap.String("item_id", itemID))
			c.JSON(http.StatusOK, cached)
			return
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	alternatives := h.recommender.AlternativesForItem(ctx, itemID)
	span.SetAttributes(attribute.Int("alternatives.count", len(alternatives)))

	// Cache the alternatives for 5 minutes
	if h.redisClient != nil {
		if err := cache.SetAlternatives(ctx, h.redisClient, itemID, alternatives, 5*time.Minute); err != nil {
			h.logger.Warn("Failed to cache alternatives", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, alternatives)
}
