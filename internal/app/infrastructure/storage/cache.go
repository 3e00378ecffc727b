package storage

import (
	"encoding/json"
	"os"
	"time"

	"github.com/maypok86/otter/v2"
)

// Cache is a small expiring key-value cache with optional JSON
// persistence, used for slow-changing lookups such as login to user id.
type Cache[T any] struct {
	outer    *otter.Cache[string, T]
	filePath string
}

func NewCache[T any](capacity int, ttl time.Duration, filePath string) *Cache[T] {
	opts := &otter.Options[string, T]{InitialCapacity: capacity}
	if ttl > 0 {
		opts.ExpiryCalculator = otter.ExpiryAccessing[string, T](ttl)
	}

	c := &Cache[T]{
		outer:    otter.Must(opts),
		filePath: filePath,
	}
	if c.filePath != "" {
		_ = c.loadFromDisk()
	}
	return c
}

func (c *Cache[T]) Set(key string, val T) {
	c.outer.Set(key, val)
	if c.filePath != "" {
		go c.flushToDisk()
	}
}

func (c *Cache[T]) Get(key string) (T, bool) {
	return c.outer.GetIfPresent(key)
}

func (c *Cache[T]) flushToDisk() {
	cacheData := make(map[string]T)
	for k, v := range c.outer.All() {
		cacheData[k] = v
	}

	data, err := json.MarshalIndent(cacheData, "", "  ")
	if err != nil {
		return
	}

	_ = os.WriteFile(c.filePath, data, 0600)
}

func (c *Cache[T]) loadFromDisk() error {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return err
	}

	var items map[string]T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	for k, v := range items {
		c.outer.Set(k, v)
	}

	return nil
}
