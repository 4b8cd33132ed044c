package cache

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gomodule/redigo/redis"
	"github.com/rs/zerolog/log"

	"github.com/accessmap/aae/pkg/models"
)

// RedisCache is a ResultCache backed by a redigo connection pool,
// for sharing cached payloads across multiple engine hosts.
type RedisCache struct {
	pool   *redis.Pool
	ttl    time.Duration
	prefix string
}

// NewRedisCache returns a RedisCache that stores keys under prefix with
// the given TTL (0 means no expiry).
func NewRedisCache(pool *redis.Pool, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{pool: pool, ttl: ttl, prefix: prefix}
}

func (c *RedisCache) fullKey(key string) string {
	return c.prefix + key
}

// Get returns the cached payload for key, if present.
func (c *RedisCache) Get(key string) (*models.AnalysisResultPayload, bool) {
	conn := c.pool.Get()
	defer conn.Close()

	raw, err := redis.Bytes(conn.Do("GET", c.fullKey(key)))
	if err != nil {
		if err != redis.ErrNil {
			log.Debug().Err(err).Str("key", key).Msg("result cache get failed")
		}
		return nil, false
	}

	var payload models.AnalysisResultPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("result cache entry failed to decode")
		return nil, false
	}
	return &payload, true
}

// Set stores payload under key.
func (c *RedisCache) Set(key string, payload *models.AnalysisResultPayload) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("result cache entry failed to encode")
		return
	}

	conn := c.pool.Get()
	defer conn.Close()

	args := []interface{}{c.fullKey(key), data}
	if c.ttl > 0 {
		args = append(args, "EX", int(c.ttl.Seconds()))
	}
	if _, err := conn.Do("SET", args...); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("result cache set failed")
	}
}
