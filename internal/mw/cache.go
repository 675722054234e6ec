package mw

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// CachedResponse is a stored GET response.
type CachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// ResponseStore holds cached responses by request URI.
type ResponseStore interface {
	Get(ctx context.Context, key string) (CachedResponse, bool)
	Set(ctx context.Context, key string, resp CachedResponse, ttl time.Duration)
}

// MemoryStore keeps responses in process.
type MemoryStore struct {
	c *cache.Cache
}

// NewMemoryStore creates an in-process store with the given default
// expiration; expired entries are purged every cleanup interval.
func NewMemoryStore(defaultExpiration, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{c: cache.New(defaultExpiration, cleanupInterval)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (CachedResponse, bool) {
	v, found := m.c.Get(key)
	if !found {
		return CachedResponse{}, false
	}
	resp, ok := v.(CachedResponse)
	return resp, ok
}

func (m *MemoryStore) Set(_ context.Context, key string, resp CachedResponse, ttl time.Duration) {
	m.c.Set(key, resp, ttl)
}

// RedisStore shares cached responses between replicas. Redis errors are
// treated as cache misses.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps a redis client. Keys are namespaced with prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, key string) (CachedResponse, bool) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("redis cache read failed")
		}
		return CachedResponse{}, false
	}
	var resp CachedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return CachedResponse{}, false
	}
	return resp, true
}

func (r *RedisStore) Set(ctx context.Context, key string, resp CachedResponse, ttl time.Duration) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("redis cache write failed")
	}
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache is a middleware caching successful GET responses for duration.
// Responses carry X-Cache: HIT or MISS.
func Cache(store ResponseStore, duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := c.Request.RequestURI
		if cached, found := store.Get(ctx, key); found {
			for k, v := range cached.Header {
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.Status)
			_, _ = c.Writer.Write(cached.Body)
			c.Abort()
			return
		}

		c.Writer.Header().Set("X-Cache", "MISS")
		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		// Only cache successful responses
		if blw.Status() >= 200 && blw.Status() < 300 {
			header := blw.Header().Clone()
			header.Del("X-Cache")
			header.Del(RequestIDHeader)
			store.Set(ctx, key, CachedResponse{
				Status: blw.Status(),
				Header: header,
				Body:   blw.body.Bytes(),
			}, duration)
		}
	}
}
