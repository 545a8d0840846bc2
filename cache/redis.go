package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"delivery-svc/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func InitRedis(logger *zap.Logger) (*redis.Client, error) {
	host := getEnv("REDIS_HOST", "localhost")
	port := getEnv("REDIS_PORT", "6379")
	password := getEnv("REDIS_PASSWORD", "")

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established")
	return rdb, nil
}

func GetAlternatives(ctx context.Context, rdb *redis.Client, itemID string) ([]models.Alternative, error) {
	key := fmt.Sprintf("alternatives:%s", itemID)
	data, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var alternatives []models.Alternative
	if err := json.Unmarshal(data, &alternatives); err != nil {
		return nil, err
	}
	return alternatives, nil
}

func SetAlternatives(ctx context.Context, rdb *redis.Client, itemID string, alternatives []models.Alternative, ttl time.Duration) error {
	key := fmt.Sprintf("alternatives:%s", itemID)
	data, err := json.Marshal(alternatives)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, data, ttl).Err()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
