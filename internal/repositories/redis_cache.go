package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"salon_backend/internal/models"
	"salon_backend/pkg/utils"
)

const (
	serviceNameKeyPrefix = "salon:service:name:"
	activeServicesKey    = "salon:services:active"

	defaultCacheTTL = 5 * time.Minute
)

// ServiceCache stores catalog lookups. A miss returns (nil, nil).
type ServiceCache interface {
	GetService(ctx context.Context, name string) (*models.Service, error)
	SetService(ctx context.Context, svc *models.Service) error
	GetActiveList(ctx context.Context) ([]models.Service, error)
	SetActiveList(ctx context.Context, services []models.Service) error
	Invalidate(ctx context.Context, names ...string) error
}

// RedisServiceCache implements ServiceCache on Redis.
type RedisServiceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisServiceCache connects to Redis and verifies the connection with a PING.
func NewRedisServiceCache(addr, password string, db int, ttl time.Duration) (*RedisServiceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	utils.LogInfo("Connected to Redis", map[string]interface{}{"addr": addr})
	return &RedisServiceCache{client: client, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (c *RedisServiceCache) Close() error {
	return c.client.Close()
}

func (c *RedisServiceCache) getJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s from cache: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisServiceCache) setJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return nil
}

func (c *RedisServiceCache) GetService(ctx context.Context, name string) (*models.Service, error) {
	var svc models.Service
	found, err := c.getJSON(ctx, serviceNameKeyPrefix+name, &svc)
	if err != nil || !found {
		return nil, err
	}
	return &svc, nil
}

func (c *RedisServiceCache) SetService(ctx context.Context, svc *models.Service) error {
	return c.setJSON(ctx, serviceNameKeyPrefix+svc.Name, svc)
}

func (c *RedisServiceCache) GetActiveList(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	found, err := c.getJSON(ctx, activeServicesKey, &services)
	if err != nil || !found {
		return nil, err
	}
	return services, nil
}

func (c *RedisServiceCache) SetActiveList(ctx context.Context, services []models.Service) error {
	return c.setJSON(ctx, activeServicesKey, services)
}

// Invalidate drops the active list and the given name entries.
func (c *RedisServiceCache) Invalidate(ctx context.Context, names ...string) error {
	keys := []string{activeServicesKey}
	for _, n := range names {
		keys = append(keys, serviceNameKeyPrefix+n)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate service cache: %w", err)
	}
	return nil
}
