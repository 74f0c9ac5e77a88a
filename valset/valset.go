// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package valset mirrors the remote chain's validator set.
//
// The transport feeding it delivers at least once and without ordering, so
// the registry is a state CRDT: adds for known operators and removes of
// tombstoned operators are absorbed, a remove that outruns its add writes
// the tombstone first and wins, and any permutation of the same update
// multiset converges to the same state. Only storage failures surface as
// errors.
package valset

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/meshlock/warden/cache"
	"github.com/meshlock/warden/kv"
	"github.com/meshlock/warden/log"
	"github.com/meshlock/warden/metrics"
	"github.com/meshlock/warden/warden"
)

var (
	logger = log.WithContext("pkg", "valset")

	metricActiveGauge  = metrics.LazyLoadGauge("valset_active_count")
	metricCacheHitMiss = metrics.LazyLoadGaugeVec("valset_cache_hit_miss", []string{"event"})
)

const (
	validatorsBucket kv.Bucket = "vs"

	recordCacheSize = 2048
)

// Registry is the replicated validator set.
type Registry struct {
	store kv.Store
	cache *cache.LRU
}

// New creates the registry on the given store.
func New(store kv.Store) *Registry {
	c, _ := cache.NewLRU(recordCacheSize)
	return &Registry{
		store: validatorsBucket.NewStore(store),
		cache: c,
	}
}

// Add records a newly seen validator as active. Operators already known in
// any state are left untouched: duplicate adds are updates the protocol
// never sends, so they are absorbed.
func (r *Registry) Add(operator, pubKey string, startHeight, startTime uint64) error {
	existing, err := r.load(operator)
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Debug("validator add absorbed", "operator", operator, "status", existing.Status)
		return nil
	}
	rec := &Record{
		PubKey:      pubKey,
		StartHeight: startHeight,
		StartTime:   startTime,
		Status:      StatusActive,
	}
	if err := r.save(operator, rec); err != nil {
		return err
	}

	metricActiveGauge().Add(1)
	logger.Info("validator added", "operator", operator, "startHeight", startHeight)
	return nil
}

// Remove tombstones the operator. A remove delivered before its add writes
// the tombstone immediately, so the late add is absorbed and the removal
// still wins. Removing a tombstoned operator is absorbed.
func (r *Registry) Remove(operator string) error {
	existing, err := r.load(operator)
	if err != nil {
		return err
	}
	if existing != nil && existing.Status == StatusTombstoned {
		logger.Debug("validator remove absorbed", "operator", operator)
		return nil
	}
	// the tombstone carries no metadata, so remove-before-add and
	// add-before-remove leave identical state
	if err := r.save(operator, &Record{Status: StatusTombstoned}); err != nil {
		return err
	}
	if existing != nil {
		metricActiveGauge().Add(-1)
	}
	logger.Info("validator tombstoned", "operator", operator)
	return nil
}

// Active reports whether the operator is in the set and not tombstoned.
func (r *Registry) Active(operator string) (bool, error) {
	rec, err := r.load(operator)
	if err != nil {
		return false, err
	}
	return rec != nil && rec.Status == StatusActive, nil
}

// Get returns the operator's record, or nil if it was never seen.
func (r *Registry) Get(operator string) (*Record, error) {
	return r.load(operator)
}

// List pages through the set in ascending operator order. With activeOnly,
// tombstoned operators are skipped and do not count toward the limit.
// startAfter is exclusive.
func (r *Registry) List(activeOnly bool, startAfter string, limit uint32) ([]*Entry, error) {
	limit = warden.ClampPageLimit(limit)

	var rng kv.Range
	if startAfter != "" {
		rng.Start = append([]byte(startAfter), 0)
	}
	iter := r.store.Iterate(rng)
	defer iter.Release()

	var list []*Entry
	for ok := iter.First(); ok; ok = iter.Next() {
		var rec Record
		if err := rlp.DecodeBytes(iter.Value(), &rec); err != nil {
			return nil, err
		}
		if activeOnly && rec.Status != StatusActive {
			continue
		}
		list = append(list, &Entry{Operator: string(iter.Key()), Record: &rec})
		if uint32(len(list)) >= limit {
			break
		}
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return list, nil
}

// LogCacheStats logs the record cache hit rate when it has moved since the
// last call, and refreshes the cache metrics.
func (r *Registry) LogCacheStats() {
	hit, miss, changed := r.cache.Stats()
	if changed {
		lookups := hit + miss
		var str string
		if lookups > 0 {
			str = fmt.Sprintf("%.3f", float64(hit)/float64(lookups))
		} else {
			str = "n/a"
		}
		logger.Info("record cache stats", "lookups", lookups, "hitrate", str)
	}
	metricCacheHitMiss().SetWithLabel(hit, map[string]string{"event": "hit"})
	metricCacheHitMiss().SetWithLabel(miss, map[string]string{"event": "miss"})
}

func (r *Registry) load(operator string) (*Record, error) {
	// misses of never-seen operators are cached as typed nil records
	v, err := r.cache.GetOrLoad(operator, func(interface{}) (interface{}, error) {
		data, err := r.store.Get([]byte(operator))
		if err != nil {
			if r.store.IsNotFound(err) {
				return (*Record)(nil), nil
			}
			return nil, err
		}
		var rec Record
		if err := rlp.DecodeBytes(data, &rec); err != nil {
			return nil, err
		}
		return &rec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Record), nil
}

func (r *Registry) save(operator string, rec *Record) error {
	data, err := rlp.EncodeToBytes(rec)
	if err != nil {
		return err
	}
	if err := r.store.Put([]byte(operator), data); err != nil {
		return err
	}
	r.cache.Add(operator, rec)
	return nil
}
