package parser

import "sync"

// Stats mirrors the Parser's get_stats() contract: updated on every call,
// with the mean recomputed periodically rather than on every call to
// amortize the cost.
type Stats struct {
	mu           sync.Mutex
	filesParsed  int64
	hits         int64
	misses       int64
	totalMs      float64
	callsSinceMean int64
	meanMs       float64
}

const meanRecomputeEvery = 32

func (s *Stats) recordParse(ms float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filesParsed++
	s.misses++
	s.totalMs += ms
	s.maybeRecomputeMean()
}

func (s *Stats) recordHit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits++
	s.maybeRecomputeMean()
}

func (s *Stats) maybeRecomputeMean() {
	s.callsSinceMean++
	if s.callsSinceMean < meanRecomputeEvery {
		return
	}
	s.callsSinceMean = 0
	if s.filesParsed > 0 {
		s.meanMs = s.totalMs / float64(s.filesParsed)
	}
}

// Snapshot is an immutable copy of Stats for callers.
type Snapshot struct {
	FilesParsed int64
	Hits        int64
	Misses      int64
	HitRate     float64
	TotalMs     float64
	MeanMs      float64
}

// Snapshot returns a consistent point-in-time copy of the statistics.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := s.hits + s.misses
	var rate float64
	if total > 0 {
		rate = float64(s.hits) / float64(total)
	}
	mean := s.meanMs
	if s.filesParsed > 0 && s.callsSinceMean == 0 {
		mean = s.totalMs / float64(s.filesParsed)
	}
	return Snapshot{
		FilesParsed: s.filesParsed,
		Hits:        s.hits,
		Misses:      s.misses,
		HitRate:     rate,
		TotalMs:     s.totalMs,
		MeanMs:      mean,
	}
}
