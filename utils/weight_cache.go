package utils

import (
	lru "github.com/hashicorp/golang-lru"
)

// WeightDesc identifies one gauge's relative weight at one epoch boundary.
type WeightDesc struct {
	GaugeID string
	Epoch   int64
}

// RelativeWeightCache caches historical relative weights. Weights for epochs
// strictly before the current one are immutable, so cached entries never need
// invalidation; the LRU only bounds memory.
type RelativeWeightCache struct {
	cache *lru.Cache
}

func NewRelativeWeightCache(size int) *RelativeWeightCache {
	c, err := lru.New(size)
	if err != nil {
		panic(err)
	}
	return &RelativeWeightCache{cache: c}
}

func (r *RelativeWeightCache) Set(desc WeightDesc, weight string) {
	r.cache.Add(desc, weight)
}

func (r *RelativeWeightCache) Get(desc WeightDesc) (string, bool) {
	v, ok := r.cache.Get(desc)
	if !ok {
		return "", false
	}
	return v.(string), true
}
