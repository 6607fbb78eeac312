package cachemgr

import "sync"

// Stats tracks cache-manager level counters: hits and misses, evictions per
// tier, promotions (a lower tier's hit copied up into a faster one), and
// invalidations. Mirrors internal/parser/stats.go's mutex-guarded counter
// plus Snapshot pattern.
type Stats struct {
	mu sync.Mutex

	hotHits, warmHits, coldHits, misses int64
	hotEvictions, warmEvictions         int64
	promotions                          int64
	invalidations                       int64
}

func (s *Stats) recordHit(tier Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch tier {
	case TierHot:
		s.hotHits++
	case TierWarm:
		s.warmHits++
	case TierCold:
		s.coldHits++
	}
}

func (s *Stats) recordMiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.misses++
}

func (s *Stats) recordEviction(tier Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch tier {
	case TierHot:
		s.hotEvictions++
	case TierWarm:
		s.warmEvictions++
	}
}

func (s *Stats) recordPromotion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promotions++
}

func (s *Stats) recordInvalidation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidations++
}

// Snapshot is an immutable point-in-time copy of the cache manager's
// statistics.
type Snapshot struct {
	HotHits, WarmHits, ColdHits, Misses int64
	HotEvictions, WarmEvictions         int64
	Promotions                          int64
	Invalidations                       int64
	HotBytes, WarmBytes                 int64
	HotEntries, WarmEntries             int
}

// HitRate returns the fraction of Get/GetSymbol calls served by any tier.
func (s Snapshot) HitRate() float64 {
	hits := s.HotHits + s.WarmHits + s.ColdHits
	total := hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func (s *Stats) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		HotHits: s.hotHits, WarmHits: s.warmHits, ColdHits: s.coldHits, Misses: s.misses,
		HotEvictions: s.hotEvictions, WarmEvictions: s.warmEvictions,
		Promotions:    s.promotions,
		Invalidations: s.invalidations,
	}
}
