package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// fetchCache remembers provider responses (caption lists) so that re-adding a
// removed video does not hit YouTube again. L1 is in-process, L2 is an optional
// Redis shared between replicas. The transcript store itself is never cached.
var fetchCache *tieredCache

var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

type tieredCache struct {
	mu         sync.Mutex
	l1         map[string]cacheEntry
	rdb        *redis.Client // nil = L1 only
	ttl        time.Duration
	maxEntries int
	seq        uint64 // insertion counter, orders eviction
	stop       chan struct{}
}

type cacheEntry struct {
	data     []byte
	storedAt time.Time
	seq      uint64
}

func (e cacheEntry) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.storedAt) >= ttl
}

// InitCache replaces the fetch cache. Call after Init().
// An empty or unreachable redisURL leaves the cache L1-only.
func InitCache(redisURL string, ttl time.Duration, maxEntries int, cleanupInterval time.Duration) {
	c := &tieredCache{
		l1:         make(map[string]cacheEntry),
		rdb:        dialRedis(redisURL),
		ttl:        ttl,
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
	}
	if old := fetchCache; old != nil {
		close(old.stop)
	}
	fetchCache = c

	slog.Info("cache: initialized",
		slog.Duration("ttl", ttl),
		slog.Bool("redis", c.rdb != nil),
		slog.Int("max_entries", maxEntries),
	)
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}
	go c.sweepEvery(cleanupInterval)
}

func dialRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		return nil
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
		rdb.Close()
		return nil
	}
	slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
	return rdb
}

// CacheKey hashes parts into a short "gt:"-prefixed key.
func CacheKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("gt:%x", sum[:12])
}

// CacheGet looks in L1, then L2. An L2 hit is copied into L1.
func CacheGet(ctx context.Context, key string) ([]byte, bool) {
	if fetchCache == nil {
		cacheMisses.Add(1)
		return nil, false
	}
	data, ok := fetchCache.get(ctx, key)
	if ok {
		cacheHits.Add(1)
	} else {
		cacheMisses.Add(1)
	}
	return data, ok
}

// CacheSet writes data to L1 and, when configured, L2.
func CacheSet(ctx context.Context, key string, data []byte) {
	if fetchCache == nil {
		return
	}
	fetchCache.set(ctx, key, data)
}

// CacheStats returns the hit and miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// CacheLoadJSON decodes a cached value. A corrupt entry counts as a miss.
func CacheLoadJSON[T any](ctx context.Context, key string) (T, bool) {
	var out T
	data, ok := CacheGet(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		slog.Debug("cache: dropping undecodable entry", slog.String("key", key), slog.Any("error", err))
		var zero T
		return zero, false
	}
	return out, true
}

// CacheStoreJSON encodes v and stores it.
func CacheStoreJSON[T any](ctx context.Context, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	CacheSet(ctx, key, data)
}

func (c *tieredCache) get(ctx context.Context, key string) ([]byte, bool) {
	now := time.Now()
	c.mu.Lock()
	e, ok := c.l1[key]
	if ok && e.expired(now, c.ttl) {
		delete(c.l1, key)
		ok = false
	}
	c.mu.Unlock()
	if ok {
		slog.Debug("cache: L1 hit", slog.String("key", key))
		return e.data, true
	}

	if c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	slog.Debug("cache: L2 hit", slog.String("key", key))
	c.storeL1(key, data, now)
	return data, true
}

func (c *tieredCache) set(ctx context.Context, key string, data []byte) {
	c.storeL1(key, data, time.Now())
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Debug("cache: L2 set failed", slog.Any("error", err))
	}
}

func (c *tieredCache) storeL1(key string, data []byte, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.l1[key]; !exists && c.maxEntries > 0 && len(c.l1) >= c.maxEntries {
		c.makeRoomLocked(now)
	}
	c.seq++
	c.l1[key] = cacheEntry{data: data, storedAt: now, seq: c.seq}
}

// makeRoomLocked drops expired entries, then the oldest ones, until one slot is free.
func (c *tieredCache) makeRoomLocked(now time.Time) {
	c.dropExpiredLocked(now)
	for len(c.l1) >= c.maxEntries {
		var oldestKey string
		var oldestSeq uint64
		for k, e := range c.l1 {
			if oldestKey == "" || e.seq < oldestSeq {
				oldestKey, oldestSeq = k, e.seq
			}
		}
		delete(c.l1, oldestKey)
	}
}

func (c *tieredCache) dropExpiredLocked(now time.Time) {
	for k, e := range c.l1 {
		if e.expired(now, c.ttl) {
			delete(c.l1, k)
		}
	}
}

func (c *tieredCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.l1)
}

// sweepEvery drops expired L1 entries on each tick until the cache is replaced.
func (c *tieredCache) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			c.dropExpiredLocked(now)
			c.mu.Unlock()
		}
	}
}
