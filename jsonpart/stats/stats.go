// Package stats collects document key statistics and derives the speculation
// anchor table from them. A key qualifies as an anchor when the statistics
// show it occurring at exactly one nesting level, which makes it usable as a
// synchronization point for partition boundaries.
package stats

import (
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/cespare/xxhash/v2"
)

const shardCount = 16

// keyStat accumulates the observations for a single key.
type keyStat struct {
	levels *roaring.Bitmap
	count  uint64
}

type statShard struct {
	mu   sync.RWMutex
	keys map[string]*keyStat
}

// DocumentStats aggregates per-key occurrence counts and the set of nesting
// levels each key was seen at. Writes are sharded by key hash so concurrent
// samplers do not contend on a single lock.
type DocumentStats struct {
	shards [shardCount]statShard
}

// NewDocumentStats creates an empty statistics accumulator.
func NewDocumentStats() *DocumentStats {
	s := &DocumentStats{}
	for i := range s.shards {
		s.shards[i].keys = make(map[string]*keyStat)
	}
	return s
}

func (s *DocumentStats) shard(key string) *statShard {
	return &s.shards[xxhash.Sum64String(key)%shardCount]
}

// Observe records one occurrence of key at the given nesting level.
func (s *DocumentStats) Observe(key string, level int) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	st, ok := sh.keys[key]
	if !ok {
		st = &keyStat{levels: roaring.New()}
		sh.keys[key] = st
	}
	st.levels.Add(uint32(level))
	st.count++
}

// KeyCount returns the total occurrences recorded for key.
func (s *DocumentStats) KeyCount(key string) uint64 {
	sh := s.shard(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if st, ok := sh.keys[key]; ok {
		return st.count
	}
	return 0
}

// Candidate is a key whose observations place it at exactly one level.
type Candidate struct {
	Key   string
	Level int
	Count uint64
}

// SingleLevelKeys returns every key observed at exactly one nesting level.
func (s *DocumentStats) SingleLevelKeys() []Candidate {
	var out []Candidate
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for key, st := range sh.keys {
			if st.levels.GetCardinality() == 1 {
				out = append(out, Candidate{
					Key:   key,
					Level: int(st.levels.Minimum()),
					Count: st.count,
				})
			}
		}
		sh.mu.RUnlock()
	}
	return out
}
