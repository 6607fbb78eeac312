package memmgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyThresholds(t *testing.T) {
	m := New(WithThresholds(500, 400, 450))
	assert.Equal(t, LevelNormal, m.classify(100))
	assert.Equal(t, LevelHigh, m.classify(420))
	assert.Equal(t, LevelEmergency, m.classify(460))
}

func TestCheckPressureNormalWhenMonitoringDisabled(t *testing.T) {
	m := New(WithMonitoring(false))
	assert.Equal(t, LevelNormal, m.CheckPressure())
}

func TestPressureCallbackFiresOnHighUsage(t *testing.T) {
	m := New(WithThresholds(1, 0, 1000000))
	fired := false
	m.RegisterPressureCallback(func() { fired = true })

	level := m.CheckPressure()
	assert.Equal(t, LevelHigh, level)
	assert.True(t, fired)
}

func TestEmergencyCallbackFiresOnEmergencyUsage(t *testing.T) {
	m := New(WithThresholds(1, 0, 0))
	fired := false
	m.RegisterEmergencyCallback(func() { fired = true })

	level := m.CheckPressure()
	assert.Equal(t, LevelEmergency, level)
	assert.True(t, fired)
}

func TestCallbackPanicDoesNotAbortSweep(t *testing.T) {
	m := New(WithThresholds(1, 0, 1000000))
	second := false
	m.RegisterPressureCallback(func() { panic("boom") })
	m.RegisterPressureCallback(func() { second = true })

	assert.NotPanics(t, func() { m.CheckPressure() })
	assert.True(t, second)
}

func TestCanAllocateRespectsThreshold(t *testing.T) {
	m := New(WithThresholds(500, 400, 450))
	assert.False(t, m.CanAllocate(1e12))
}

func TestRecommendedCacheSizeBounds(t *testing.T) {
	m := New(WithThresholds(30, 20, 25))
	assert.Equal(t, 50, m.RecommendedCacheSizeMB())

	m2 := New(WithThresholds(3000, 2000, 2500))
	assert.Equal(t, 200, m2.RecommendedCacheSizeMB())
}

func TestGetStatsReflectsCounters(t *testing.T) {
	m := New(WithThresholds(1, 0, 1000000))
	m.RegisterPressureCallback(func() {})
	m.CheckPressure()

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats.GCTriggers)
	assert.Equal(t, LevelHigh, stats.PressureLevel)
}
