package layout

import (
	"hash/fnv"
	"sync"
)

const metricsCacheShards = 16

// metricsCache is a sharded, insert-mostly text-metric cache: safe for
// concurrent read and write because every writer for a given key
// computes the same (width, height) pair, so a benign last-writer-wins
// race never produces an observably wrong result (spec.md §5).
type metricsCache struct {
	shards [metricsCacheShards]sync.Map
}

func newMetricsCache() *metricsCache {
	return &metricsCache{}
}

type metricsCacheKey struct {
	text     string
	fontSize int
}

type metricsCacheValue struct {
	width, height float64
}

func (c *metricsCache) shardFor(key metricsCacheKey) *sync.Map {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.text))
	idx := (h.Sum32() ^ uint32(key.fontSize)) % metricsCacheShards
	return &c.shards[idx]
}

func (c *metricsCache) get(key metricsCacheKey) (metricsCacheValue, bool) {
	v, ok := c.shardFor(key).Load(key)
	if !ok {
		return metricsCacheValue{}, false
	}
	return v.(metricsCacheValue), true
}

func (c *metricsCache) put(key metricsCacheKey, value metricsCacheValue) {
	c.shardFor(key).Store(key, value)
}

// cachedTextMetrics wraps a TextMetrics provider with the sharded
// cache, so repeated labels across a large diagram measure text once.
type cachedTextMetrics struct {
	inner TextMetrics
	cache *metricsCache
}

func newCachedTextMetrics(inner TextMetrics) *cachedTextMetrics {
	return &cachedTextMetrics{inner: inner, cache: newMetricsCache()}
}

func (c *cachedTextMetrics) MeasureString(s string, fontSize int) (float64, float64) {
	key := metricsCacheKey{text: s, fontSize: fontSize}
	if v, ok := c.cache.get(key); ok {
		return v.width, v.height
	}
	w, h := c.inner.MeasureString(s, fontSize)
	c.cache.put(key, metricsCacheValue{width: w, height: h})
	return w, h
}
