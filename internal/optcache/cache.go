// Package optcache memoizes OPT (exact Filter@k) solutions in Redis, keyed
// by the list contents and (metric, k). The filtering RPC service uses it to
// skip the exact DP for a request whose list it has already solved; the
// batch benchmark does not use it.
package optcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rsavio/attrfilter/internal/filtering"
	"github.com/rsavio/attrfilter/pkg/metrics"
	"github.com/rsavio/attrfilter/pkg/redis"
	"github.com/rsavio/attrfilter/pkg/resilience"
)

const breakerName = "optcache-redis"

// Cache memoizes filtering.FilterSolution values in Redis. A circuit
// breaker trips after repeated Redis failures so a degraded cache stops
// adding latency to every request instead of retrying each one.
type Cache struct {
	rdb     *redis.Client
	ttl     time.Duration
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
}

// New creates a Cache backed by rdb, with entries expiring after ttl. m is
// optional: when nil, cache hits/misses and circuit breaker state are not
// reported.
func New(rdb *redis.Client, ttl time.Duration, m *metrics.Metrics) *Cache {
	return &Cache{
		rdb:     rdb,
		ttl:     ttl,
		breaker: resilience.NewCircuitBreaker(breakerName, resilience.CircuitBreakerConfig{}),
		metrics: m,
	}
}

// entry is the JSON shape stored under each key.
type entry struct {
	Score   filtering.Score   `json:"score"`
	Indices []filtering.Index `json:"indices"`
}

// Key derives a cache key from the relevance prefix and the (metric, k)
// combination it was solved under.
func Key(metric filtering.MetricKind, k filtering.K, relevances []filtering.Relevance) string {
	h := sha256.New()
	h.Write([]byte(metric.String()))
	var kBuf [2]byte
	binary.LittleEndian.PutUint16(kBuf[:], k)
	h.Write(kBuf[:])
	buf := make([]byte, 4)
	for _, r := range relevances {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(r))
		h.Write(buf)
	}
	return "optcache:" + hex.EncodeToString(h.Sum(nil))
}

// Get looks up a previously memoized solution. The bool return reports a
// cache hit.
func (c *Cache) Get(ctx context.Context, key string) (filtering.FilterSolution, bool) {
	var raw string
	found := false
	err := c.breaker.Execute(func() error {
		var err error
		raw, err = c.rdb.Get(ctx, key)
		if redis.IsNilError(err) {
			// A missing key is a cache miss, not a Redis failure.
			return nil
		}
		found = err == nil
		return err
	})
	c.observeBreakerState()
	if err != nil || !found {
		c.incMiss()
		return filtering.FilterSolution{}, false
	}
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		c.incMiss()
		return filtering.FilterSolution{}, false
	}
	c.incHit()
	return filtering.FilterSolution{Score: e.Score, Indices: e.Indices}, true
}

// Put stores a solution under key, overwriting any previous entry.
func (c *Cache) Put(ctx context.Context, key string, solution filtering.FilterSolution) error {
	data, err := json.Marshal(entry{Score: solution.Score, Indices: solution.Indices})
	if err != nil {
		return fmt.Errorf("marshaling cached solution: %w", err)
	}
	err = c.breaker.Execute(func() error {
		return c.rdb.Set(ctx, key, data, c.ttl)
	})
	c.observeBreakerState()
	return err
}

func (c *Cache) incHit() {
	if c.metrics != nil {
		c.metrics.OptCacheHitsTotal.Inc()
	}
}

func (c *Cache) incMiss() {
	if c.metrics != nil {
		c.metrics.OptCacheMissesTotal.Inc()
	}
}

func (c *Cache) observeBreakerState() {
	if c.metrics != nil {
		c.metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(float64(c.breaker.GetState()))
	}
}
