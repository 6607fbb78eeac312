// Package memmgr monitors process memory usage and coordinates pressure
// response across the cache and parser tiers, translated from the analysis
// server's memory_manager.py: the same three thresholds (max / gc / emergency),
// the same escalating callback rounds, the same cache-size recommendation.
package memmgr

import (
	"runtime"
	"sync"
	"time"
)

// PressureLevel is the outcome of a memory check.
type PressureLevel string

const (
	LevelNormal    PressureLevel = "normal"
	LevelHigh      PressureLevel = "high"
	LevelEmergency PressureLevel = "emergency"
)

const (
	defaultMaxMB       = 500
	defaultGCMB        = 400
	defaultEmergencyMB = 450
	superEmergencyRounds = 5
	// A super-emergency round is considered ineffective once it frees less
	// than this much memory, matching the Python implementation's bail-out.
	minEffectiveFreeMB = 5.0
)

// Stats mirrors get_stats()'s MemoryStats shape.
type Stats struct {
	CurrentMemoryMB    float64
	PressureLevel      PressureLevel
	GCTriggers         int64
	EmergencyCleanups  int64
	TimeSinceGC        time.Duration
}

// Manager monitors heap usage via runtime.ReadMemStats and fans out to
// registered pressure/emergency callbacks as usage crosses configured
// thresholds.
type Manager struct {
	mu sync.Mutex

	maxMB       float64
	gcMB        float64
	emergencyMB float64
	monitoring  bool

	pressureCallbacks  []func()
	emergencyCallbacks []func()

	gcCount        int64
	emergencyCount int64
	lastGC         time.Time
}

// Option configures a Manager at construction.
type Option func(*Manager)

func WithThresholds(maxMB, gcMB, emergencyMB float64) Option {
	return func(m *Manager) {
		m.maxMB, m.gcMB, m.emergencyMB = maxMB, gcMB, emergencyMB
	}
}

func WithMonitoring(enabled bool) Option {
	return func(m *Manager) { m.monitoring = enabled }
}

// New constructs a Manager using the same default thresholds (500/400/450MB)
// as the reference implementation.
func New(opts ...Option) *Manager {
	m := &Manager{
		maxMB:       defaultMaxMB,
		gcMB:        defaultGCMB,
		emergencyMB: defaultEmergencyMB,
		monitoring:  true,
		lastGC:      time.Now(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CurrentUsageMB returns the process's resident heap in use, in MB, sourced
// from runtime.ReadMemStats rather than an external process-inspection
// dependency (no package in the corpus wraps /proc or psutil-equivalent
// sampling, and the stdlib call is exact for this process rather than an
// approximation, so this one ambient concern stays on runtime).
func (m *Manager) CurrentUsageMB() float64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return float64(ms.HeapInuse) / (1024 * 1024)
}

// CheckPressure classifies current usage and, if it's at or above the gc or
// emergency thresholds, runs the corresponding handling rounds.
func (m *Manager) CheckPressure() PressureLevel {
	if !m.monitoring {
		return LevelNormal
	}

	current := m.CurrentUsageMB()
	switch {
	case current >= m.emergencyMB:
		m.handleEmergency()
		if m.CurrentUsageMB() >= m.emergencyMB {
			m.handleSuperEmergency()
		}
		return LevelEmergency
	case current >= m.gcMB:
		m.handleHighPressure()
		return LevelHigh
	default:
		return LevelNormal
	}
}

// HandlePressure is the explicit action-taking entry point; it returns
// whether any handling ran.
func (m *Manager) HandlePressure() bool {
	switch m.CheckPressure() {
	case LevelEmergency, LevelHigh:
		return true
	default:
		return false
	}
}

func (m *Manager) handleHighPressure() {
	m.runCallbacks(m.pressureCallbacksSnapshot())
	m.runGC()
}

func (m *Manager) handleEmergency() {
	m.runCallbacks(m.emergencyCallbacksSnapshot())
	m.runCallbacks(m.pressureCallbacksSnapshot())
	m.runGC()

	m.mu.Lock()
	m.emergencyCount++
	m.mu.Unlock()
}

func (m *Manager) handleSuperEmergency() {
	for attempt := 0; attempt < superEmergencyRounds; attempt++ {
		before := m.CurrentUsageMB()
		m.runCallbacks(m.emergencyCallbacksSnapshot())
		m.runGC()

		after := m.CurrentUsageMB()
		if after < m.gcMB {
			break
		}
		if attempt > 0 && (before-after) < minEffectiveFreeMB {
			break
		}
	}
}

func (m *Manager) runCallbacks(callbacks []func()) {
	for _, cb := range callbacks {
		safeCall(cb)
	}
}

// safeCall isolates a caller-registered callback's panic so one misbehaving
// subscriber can't abort the pressure-handling sweep for the rest.
func safeCall(cb func()) {
	defer func() { _ = recover() }()
	cb()
}

func (m *Manager) runGC() {
	runtime.GC()
	m.mu.Lock()
	m.gcCount++
	m.lastGC = time.Now()
	m.mu.Unlock()
}

// RegisterPressureCallback registers a callback invoked on high memory
// pressure (cache tiers typically respond by evicting ~10%).
func (m *Manager) RegisterPressureCallback(cb func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pressureCallbacks = append(m.pressureCallbacks, cb)
}

// RegisterEmergencyCallback registers a callback invoked on emergency memory
// pressure (cache tiers typically respond by retaining only ~5%).
func (m *Manager) RegisterEmergencyCallback(cb func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emergencyCallbacks = append(m.emergencyCallbacks, cb)
}

func (m *Manager) pressureCallbacksSnapshot() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]func(){}, m.pressureCallbacks...)
}

func (m *Manager) emergencyCallbacksSnapshot() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]func(){}, m.emergencyCallbacks...)
}

// CanAllocate reports whether allocating an additional sizeMB is expected to
// keep usage under the gc threshold.
func (m *Manager) CanAllocate(sizeMB float64) bool {
	if !m.monitoring {
		return true
	}
	return m.CurrentUsageMB()+sizeMB < m.gcMB
}

// RecommendedCacheSizeMB caps cache sizing at a third of the overall budget
// and 200MB, with a 50MB floor, matching the reference heuristic (the Go
// runtime doesn't expose free system memory as cheaply as psutil, so this
// sizes purely off the configured budget rather than available RAM).
func (m *Manager) RecommendedCacheSizeMB() int {
	capped := m.maxMB / 3
	if capped > 200 {
		capped = 200
	}
	if capped < 50 {
		capped = 50
	}
	return int(capped)
}

// GetStats returns a point-in-time snapshot of memory management counters.
func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		CurrentMemoryMB:   m.CurrentUsageMB(),
		PressureLevel:     m.classify(m.CurrentUsageMB()),
		GCTriggers:        m.gcCount,
		EmergencyCleanups: m.emergencyCount,
		TimeSinceGC:       time.Since(m.lastGC),
	}
}

func (m *Manager) classify(currentMB float64) PressureLevel {
	switch {
	case currentMB >= m.emergencyMB:
		return LevelEmergency
	case currentMB >= m.gcMB:
		return LevelHigh
	default:
		return LevelNormal
	}
}
