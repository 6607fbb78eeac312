// Package cachemgr implements the three-tier analysis cache: a small hot
// in-memory tier for whole-result lookups, a warm tier scoped to individual
// symbols, and a cold tier persisted to disk via afs. Grounded on the
// teacher's afs.New()/DownloadWithURL use in inspector/info/document.go and
// inspector/repository/detector.go, generalized from a one-shot source
// download into a full get/set/invalidate cache.
package cachemgr

import (
	"context"
	"sync"

	"github.com/aroton/tsanalysis/internal/lru"
)

const (
	defaultHotBytes  = 32 * 1024 * 1024
	defaultWarmBytes = 16 * 1024 * 1024
)

// Tier identifies which cache level served or stored an entry.
type Tier int

const (
	TierMiss Tier = iota
	TierHot
	TierWarm
	TierCold
)

func (t Tier) String() string {
	switch t {
	case TierHot:
		return "hot"
	case TierWarm:
		return "warm"
	case TierCold:
		return "cold"
	default:
		return "miss"
	}
}

// Manager coordinates the hot, warm, and cold cache tiers plus the
// dependency tracker used for selective invalidation.
type Manager struct {
	mu   sync.Mutex
	hot  *lru.List
	warm *lru.List
	cold *coldTier

	hotBytes  int64
	warmBytes int64

	deps  *DependencyTracker
	stats Stats
}

// Option configures a Manager.
type Option func(*Manager)

// WithHotBytes bounds the hot tier's size.
func WithHotBytes(n int64) Option {
	return func(m *Manager) { m.hotBytes = n }
}

// WithWarmBytes bounds the warm (per-symbol) tier's size.
func WithWarmBytes(n int64) Option {
	return func(m *Manager) { m.warmBytes = n }
}

// WithColdTier enables on-disk persistence under dir, using fs as the
// storage abstraction (normally afs.New()).
func WithColdTier(fs afsService, dir string, compress bool) Option {
	return func(m *Manager) { m.cold = newColdTier(fs, dir, compress) }
}

// New constructs a Manager with sane default tier sizes; the cold tier is
// absent unless WithColdTier is supplied. The hot tier's eviction callback
// demotes into warm, and the warm tier's eviction callback demotes into
// cold (when configured), per the demotion contract: an entry that falls
// out of a faster tier is never simply dropped while a slower tier could
// still hold it.
func New(opts ...Option) *Manager {
	m := &Manager{
		hotBytes:  defaultHotBytes,
		warmBytes: defaultWarmBytes,
		deps:      NewDependencyTracker(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.warm = lru.New(m.warmBytes, func(key string, value interface{}) {
		m.stats.recordEviction(TierWarm)
		if m.cold != nil {
			m.cold.set(context.Background(), key, value)
		}
	})
	m.hot = lru.New(m.hotBytes, func(key string, value interface{}) {
		m.stats.recordEviction(TierHot)
		m.warm.Set(key, value, estimateSize(value))
	})
	return m
}

// Get checks hot, then warm, then cold (in that order), promoting a hit back
// into every faster tier than the one that served it, so repeated reads
// converge to memory-speed regardless of which tier currently holds them.
func (m *Manager) Get(ctx context.Context, key string) (interface{}, Tier, bool) {
	m.mu.Lock()
	if v, ok := m.hot.Get(key); ok {
		m.mu.Unlock()
		m.stats.recordHit(TierHot)
		return v, TierHot, true
	}
	if v, ok := m.warm.Get(key); ok {
		m.hot.Set(key, v, estimateSize(v))
		m.mu.Unlock()
		m.stats.recordHit(TierWarm)
		m.stats.recordPromotion()
		return v, TierWarm, true
	}
	m.mu.Unlock()

	if m.cold == nil {
		m.stats.recordMiss()
		return nil, TierMiss, false
	}
	v, ok := m.cold.get(ctx, key)
	if !ok {
		m.stats.recordMiss()
		return nil, TierMiss, false
	}
	m.mu.Lock()
	m.hot.Set(key, v, estimateSize(v))
	m.warm.Set(key, v, estimateSize(v))
	m.mu.Unlock()
	m.stats.recordHit(TierCold)
	m.stats.recordPromotion()
	return v, TierCold, true
}

// Set stores a whole-result value in the hot tier and, if configured,
// persists it to the cold tier for durability across process restarts. deps
// records which cache keys value's computation read from, for later
// transitive or selective invalidation.
func (m *Manager) Set(ctx context.Context, key string, value interface{}, deps ...string) {
	m.mu.Lock()
	m.hot.Set(key, value, estimateSize(value))
	m.mu.Unlock()

	m.deps.Record(key, deps)

	if m.cold != nil {
		m.cold.set(ctx, key, value)
	}
}

// SetWithSymbols is Set plus a record of which imported symbols value's
// computation consumed, enabling InvalidateSymbols' selective mode to tell
// whether an edit that changed only some symbols actually affects key.
func (m *Manager) SetWithSymbols(ctx context.Context, key string, value interface{}, consumedSymbols []string, deps ...string) {
	m.Set(ctx, key, value, deps...)
	m.deps.RecordSymbols(key, consumedSymbols)
}

// GetSymbol reads a per-symbol cached value from the warm tier.
func (m *Manager) GetSymbol(file, symbol string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.warm.Get(symbolKey(file, symbol))
	if ok {
		m.stats.recordHit(TierWarm)
	} else {
		m.stats.recordMiss()
	}
	return v, ok
}

// SetSymbol stores a per-symbol value in the warm tier.
func (m *Manager) SetSymbol(file, symbol string, value interface{}, deps ...string) {
	key := symbolKey(file, symbol)
	m.mu.Lock()
	m.warm.Set(key, value, estimateSize(value))
	m.mu.Unlock()
	m.deps.Record(key, deps)
}

// Invalidate drops key from every tier without considering dependents.
func (m *Manager) Invalidate(ctx context.Context, key string) {
	m.mu.Lock()
	m.hot.Remove(key)
	m.warm.Remove(key)
	m.mu.Unlock()
	if m.cold != nil {
		m.cold.delete(ctx, key)
	}
	m.deps.Forget(key)
	m.stats.recordInvalidation()
}

// InvalidateTransitive invalidates key and every entry transitively
// dependent on it, per the dependency tracker's full closure.
func (m *Manager) InvalidateTransitive(ctx context.Context, key string) []string {
	affected := m.deps.TransitivelyAffected(key)
	affected = append(affected, key)
	for _, k := range affected {
		m.Invalidate(ctx, k)
	}
	return affected
}

// InvalidateSymbols invalidates key and, of its transitive dependents, only
// those whose recorded imported-symbol set intersects changedSymbols — the
// selective counterpart to InvalidateTransitive's full closure, used when an
// edit is known to have touched only specific exports of key's file. A
// dependent with no recorded symbol set is treated conservatively as
// affected, since SetWithSymbols was never told what it consumed.
func (m *Manager) InvalidateSymbols(ctx context.Context, key string, changedSymbols []string) []string {
	affected := m.deps.AffectedBySymbols(key, changedSymbols)
	affected = append(affected, key)
	for _, k := range affected {
		m.Invalidate(ctx, k)
	}
	return affected
}

// RegisterPressureCallback and RegisterEmergencyCallback satisfy the parser's
// pressureRegistrar interface indirectly through memmgr; Manager itself
// exposes the eviction primitives memmgr's callbacks invoke.
func (m *Manager) EvictHotFraction(fraction float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hot.EvictFraction(fraction)
}

func (m *Manager) RetainHotFraction(fraction float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hot.RetainFraction(fraction)
}

// Stats returns a point-in-time snapshot of hit/miss/eviction/promotion/
// invalidation counters plus each tier's current size and entry count, per
// spec.md §4.2.
func (m *Manager) Stats() Snapshot {
	snap := m.stats.snapshot()
	m.mu.Lock()
	snap.HotBytes, snap.HotEntries = m.hot.Bytes(), m.hot.Len()
	snap.WarmBytes, snap.WarmEntries = m.warm.Bytes(), m.warm.Len()
	m.mu.Unlock()
	return snap
}

func symbolKey(file, symbol string) string {
	return "sym\x00" + file + "\x00" + symbol
}

// estimateSize gives the LRU tiers a byte size to budget against without
// requiring every cached value to implement a Sizer; string and []byte
// values are measured exactly, everything else gets a flat estimate typical
// of a small analysis struct.
func estimateSize(v interface{}) int64 {
	switch t := v.(type) {
	case string:
		return int64(len(t))
	case []byte:
		return int64(len(t))
	default:
		return 512
	}
}
