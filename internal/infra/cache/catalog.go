package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
)

const catalogKey = "boulders:catalog:v1"

// CatalogCache stores the boulder catalog as a single JSON value in Redis.
type CatalogCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewCatalogCache(client redis.Cmdable, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

// NewClient connects to Redis and checks the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// GetCatalog returns the cached catalog. The bool is false on a miss.
func (c *CatalogCache) GetCatalog(ctx context.Context) ([]*entities.Boulder, bool, error) {
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get catalog: %w", err)
	}

	var boulders []*entities.Boulder
	if err := json.Unmarshal(raw, &boulders); err != nil {
		return nil, false, fmt.Errorf("decode catalog: %w", err)
	}

	return boulders, true, nil
}

func (c *CatalogCache) SetCatalog(ctx context.Context, boulders []*entities.Boulder) error {
	raw, err := json.Marshal(boulders)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	if err := c.client.Set(ctx, catalogKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set catalog: %w", err)
	}

	return nil
}
