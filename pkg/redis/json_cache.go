package redis

import (
	"context"
	"time"
)

// JSONCache stores JSON documents under "<prefix>:<id>" with a fixed TTL.
type JSONCache struct {
	prefix string
	ttl    time.Duration
}

func NewJSONCache(prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{prefix: prefix, ttl: ttl}
}

func (c *JSONCache) key(id string) string {
	return c.prefix + ":" + id
}

// Get loads the cached value into dest and reports whether it was present.
func (c *JSONCache) Get(ctx context.Context, id string, dest interface{}) (bool, error) {
	if client == nil {
		return false, nil
	}
	err := GetJSON(ctx, c.key(id), dest)
	if IsNil(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, id string, value interface{}) error {
	if client == nil || c.ttl <= 0 {
		return nil
	}
	return SetJSON(ctx, c.key(id), value, c.ttl)
}

func (c *JSONCache) Invalidate(ctx context.Context, id string) error {
	if client == nil {
		return nil
	}
	_, err := Del(ctx, c.key(id))
	return err
}
