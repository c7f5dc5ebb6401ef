package geocode

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/deliverytrujillo/dispatch/pkg/logger"
	"github.com/deliverytrujillo/dispatch/pkg/redis"
)

// Cache stores provider results so repeated addresses do not burn geocoder
// quota. Misses and backend failures are equivalent to the caller.
type Cache interface {
	Get(address string) (Point, bool)
	Put(address string, p Point)
}

type redisCache struct {
	adapter redis.RedisAdapter
	ttl     time.Duration
}

func NewRedisCache(adapter redis.RedisAdapter, ttl time.Duration) Cache {
	return &redisCache{adapter: adapter, ttl: ttl}
}

func cacheKey(address string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(address))))
	return "geocode:" + hex.EncodeToString(sum[:])
}

func (c *redisCache) Get(address string) (Point, bool) {
	raw, err := c.adapter.Get(cacheKey(address))
	if err != nil {
		if err != redis.NilError {
			logger.Warn("geocode cache read failed", "err", err)
		}
		return Point{}, false
	}

	var p Point
	if err := json.Unmarshal(raw, &p); err != nil {
		return Point{}, false
	}
	return p, true
}

func (c *redisCache) Put(address string, p Point) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.adapter.Set(cacheKey(address), raw, c.ttl); err != nil {
		logger.Warn("geocode cache write failed", "err", err)
	}
}

// noopCache is used when caching is disabled by configuration.
type noopCache struct{}

func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(string) (Point, bool) { return Point{}, false }
func (noopCache) Put(string, Point)        {}
