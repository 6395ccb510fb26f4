// api/db/redis.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/casewise/themis/api/logging"
	"github.com/casewise/themis/api/model"
)

var RedisClient *redis.Client

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

// Only the immutable attribute catalog is cached. Grants and clearances are
// never cached anywhere: they are re-fetched on every check so a revocation
// takes effect on the next call.

func CacheAttribute(ctx context.Context, attribute *model.Attribute) error {
	attributeJSON, err := json.Marshal(attribute)
	if err != nil {
		return fmt.Errorf("failed to marshal attribute: %w", err)
	}

	key := fmt.Sprintf("attribute:%s", attribute.Name)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, attributeJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache attribute: %w", err)
	}

	logger.Debug("Attribute cached successfully", zap.String("attribute", attribute.Name))
	return nil
}

func GetCachedAttribute(ctx context.Context, name string) (*model.Attribute, error) {
	key := fmt.Sprintf("attribute:%s", name)
	attributeJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Attribute not found in cache", zap.String("attribute", name))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get attribute from cache: %w", err)
	}

	var attribute model.Attribute
	err = json.Unmarshal([]byte(attributeJSON), &attribute)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal attribute: %w", err)
	}

	logger.Debug("Attribute retrieved from cache", zap.String("attribute", name))
	return &attribute, nil
}

func DeleteCachedAttribute(ctx context.Context, name string) error {
	key := fmt.Sprintf("attribute:%s", name)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete attribute from cache: %w", err)
	}
	logger.Debug("Attribute deleted from cache", zap.String("attribute", name))
	return nil
}
