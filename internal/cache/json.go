package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// SetJSON stores v encoded as JSON.
func (c *Cache) SetJSON(ctx context.Context, ns, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", ns, key, err)
	}
	if !c.Set(ctx, ns, key, b, ttl) {
		return fmt.Errorf("%w: namespace %q", ErrNotStored, ns)
	}
	return nil
}

// GetJSON decodes the cached value into dst. A corrupt entry is deleted and
// reported as a miss with the decode error.
func (c *Cache) GetJSON(ctx context.Context, ns, key string, dst any) (bool, error) {
	b, ok := c.Get(ctx, ns, key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		c.Delete(ctx, ns, key)
		return false, fmt.Errorf("decode %s/%s: %w", ns, key, err)
	}
	return true, nil
}
