package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// RenderCache memoizes rendered chart HTML per configuration.
type RenderCache interface {
	GetOrRender(configID string, spec ChartSpec, render func() (string, error)) (string, error)
	// Invalidate drops every chart of the configuration and reports how many
	// entries were removed.
	Invalidate(configID string) int
}

// ChartCache is an in-memory TTL cache for rendered charts, bucketed by
// configuration id. Concurrent misses for the same chart share one render.
type ChartCache struct {
	ttl   time.Duration
	clock Clock

	mu      sync.Mutex
	configs map[string]map[string]cachedChart
	flight  singleflight.Group
}

type cachedChart struct {
	html    string
	expires time.Time
}

// ChartCacheOption customizes a ChartCache.
type ChartCacheOption func(*ChartCache)

// WithCacheClock swaps the time source used for expiry.
func WithCacheClock(clock Clock) ChartCacheOption {
	return func(c *ChartCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewChartCache builds a cache with the provided TTL. A non-positive TTL disables caching.
func NewChartCache(ttl time.Duration, options ...ChartCacheOption) *ChartCache {
	c := &ChartCache{
		ttl:     ttl,
		clock:   systemClock,
		configs: make(map[string]map[string]cachedChart),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// GetOrRender returns a cached entry or renders and stores a new one.
// Render errors are not cached.
func (c *ChartCache) GetOrRender(configID string, spec ChartSpec, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	key := chartKey(spec)
	if html, ok := c.get(configID, key); ok {
		return html, nil
	}
	v, err, _ := c.flight.Do(configID+"\x00"+key, func() (any, error) {
		html, err := render()
		if err != nil {
			return "", err
		}
		c.set(configID, key, html)
		return html, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate implements RenderCache.
func (c *ChartCache) Invalidate(configID string) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := len(c.configs[configID])
	delete(c.configs, configID)
	return removed
}

// Len reports the number of live entries.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock()
	n := 0
	for _, charts := range c.configs {
		for _, entry := range charts {
			if now.Before(entry.expires) {
				n++
			}
		}
	}
	return n
}

func (c *ChartCache) get(configID, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	charts := c.configs[configID]
	entry, ok := charts[key]
	if !ok {
		return "", false
	}
	if !c.clock().Before(entry.expires) {
		delete(charts, key)
		if len(charts) == 0 {
			delete(c.configs, configID)
		}
		return "", false
	}
	return entry.html, true
}

func (c *ChartCache) set(configID, key, html string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	charts, ok := c.configs[configID]
	if !ok {
		charts = make(map[string]cachedChart)
		c.configs[configID] = charts
	}
	charts[key] = cachedChart{html: html, expires: c.clock().Add(c.ttl)}
}

// chartKey identifies a chart within its configuration. The spec hash makes
// edited items miss even before the configuration is invalidated.
func chartKey(spec ChartSpec) string {
	b, err := json.Marshal(spec)
	if err != nil {
		return spec.ItemID + ":invalid"
	}
	sum := sha1.Sum(b)
	return spec.ItemID + ":" + hex.EncodeToString(sum[:])
}
