package cachemgr

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs/storage"
)

// memFS is a minimal in-memory stand-in for afs.Service, used so cold-tier
// tests don't need a real filesystem or network backend.
type memFS struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemFS() *memFS { return &memFS{files: make(map[string][]byte)} }

func (m *memFS) Upload(ctx context.Context, url string, mode os.FileMode, reader io.Reader, options ...storage.Option) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[url] = data
	return nil
}

func (m *memFS) DownloadWithURL(ctx context.Context, url string, options ...storage.Option) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[url]
	if !ok {
		return nil, os.ErrNotExist
	}
	return append([]byte(nil), data...), nil
}

func (m *memFS) Exists(ctx context.Context, url string, options ...storage.Option) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[url]
	return ok, nil
}

func (m *memFS) Delete(ctx context.Context, url string, options ...storage.Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, url)
	return nil
}

func TestHotTierRoundTrip(t *testing.T) {
	m := New()
	m.Set(context.Background(), "k1", "value-one")

	v, tier, ok := m.Get(context.Background(), "k1")
	require.True(t, ok)
	assert.Equal(t, TierHot, tier)
	assert.Equal(t, "value-one", v)
}

func TestSymbolTierRoundTrip(t *testing.T) {
	m := New()
	m.SetSymbol("a.ts", "foo", "resolved")

	v, ok := m.GetSymbol("a.ts", "foo")
	require.True(t, ok)
	assert.Equal(t, "resolved", v)

	_, ok = m.GetSymbol("a.ts", "bar")
	assert.False(t, ok)
}

func TestColdTierPromotesToHot(t *testing.T) {
	fs := newMemFS()
	m := New(WithColdTier(fs, "/cache", false))

	ctx := context.Background()
	m.Set(ctx, "k1", "persisted")

	// Drop the hot tier entry directly to force a cold-tier read.
	m.hot.Remove("k1")

	v, tier, ok := m.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, TierCold, tier)
	assert.Equal(t, "persisted", v)

	// Second read should now come from hot (promoted).
	_, tier2, ok := m.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, TierHot, tier2)
}

func TestColdTierCompression(t *testing.T) {
	fs := newMemFS()
	m := New(WithColdTier(fs, "/cache", true))

	ctx := context.Background()
	m.Set(ctx, "k1", "compressed-value")
	m.hot.Remove("k1")

	v, tier, ok := m.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, TierCold, tier)
	assert.Equal(t, "compressed-value", v)

	raw, err := fs.DownloadWithURL(ctx, m.cold.pathFor("k1"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, compMarker))
}

func TestColdTierSelfHealsCorruptEntry(t *testing.T) {
	fs := newMemFS()
	m := New(WithColdTier(fs, "/cache", true))
	ctx := context.Background()

	url := m.cold.pathFor("k1")
	require.NoError(t, fs.Upload(ctx, url, 0o644, bytes.NewReader(append([]byte("COMP"), []byte("not-really-deflated")...))))

	_, _, ok := m.Get(ctx, "k1")
	assert.False(t, ok)

	exists, _ := fs.Exists(ctx, url)
	assert.False(t, exists, "corrupt entry should be removed")
}

func TestInvalidateTransitive(t *testing.T) {
	m := New()
	ctx := context.Background()

	m.Set(ctx, "file:a.ts", "a-result")
	m.Set(ctx, "symbols:a.ts", "symbols-result", "file:a.ts")
	m.Set(ctx, "callgraph:a.ts", "callgraph-result", "symbols:a.ts")

	affected := m.InvalidateTransitive(ctx, "file:a.ts")
	assert.Contains(t, affected, "symbols:a.ts")
	assert.Contains(t, affected, "callgraph:a.ts")

	_, _, ok := m.Get(ctx, "symbols:a.ts")
	assert.False(t, ok)
	_, _, ok = m.Get(ctx, "callgraph:a.ts")
	assert.False(t, ok)
}

func TestEvictHotFraction(t *testing.T) {
	m := New()
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		m.Set(ctx, string(rune('a'+i)), "v")
	}
	before := m.hot.Len()
	m.EvictHotFraction(0.5)
	assert.Less(t, m.hot.Len(), before)
}

func TestHotEvictionDemotesIntoWarm(t *testing.T) {
	m := New(WithHotBytes(1))
	ctx := context.Background()

	m.Set(ctx, "k1", "value-one")
	m.Set(ctx, "k2", "value-two")

	// k1 was pushed out of the byte-starved hot tier; it must have demoted
	// into warm rather than vanishing outright.
	v, ok := m.warm.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "value-one", v)
}

func TestWarmEvictionDemotesIntoCold(t *testing.T) {
	fs := newMemFS()
	m := New(WithWarmBytes(1), WithColdTier(fs, "/cache", false))
	ctx := context.Background()

	m.SetSymbol("a.ts", "foo", "sym-one")
	m.SetSymbol("a.ts", "bar", "sym-two")

	_, ok := m.cold.get(ctx, symbolKey("a.ts", "foo"))
	require.True(t, ok, "warm eviction should have persisted the evicted entry to cold")
}

func TestWarmHitPromotesIntoHot(t *testing.T) {
	m := New()
	ctx := context.Background()

	m.SetSymbol("a.ts", "foo", "resolved")
	key := symbolKey("a.ts", "foo")

	v, tier, ok := m.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, TierWarm, tier)
	assert.Equal(t, "resolved", v)

	_, hotTier, ok := m.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, TierHot, hotTier)
}

func TestColdHitPromotesIntoHotAndWarm(t *testing.T) {
	fs := newMemFS()
	m := New(WithColdTier(fs, "/cache", false))
	ctx := context.Background()

	m.Set(ctx, "k1", "persisted")
	m.hot.Remove("k1")
	m.warm.Remove("k1")

	_, tier, ok := m.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, TierCold, tier)

	_, ok = m.warm.Peek("k1")
	assert.True(t, ok, "cold hit should promote into warm as well as hot")
	_, ok = m.hot.Peek("k1")
	assert.True(t, ok, "cold hit should promote into hot")
}

func TestStatsTracksHitsMissesEvictionsAndInvalidations(t *testing.T) {
	m := New()
	ctx := context.Background()

	m.Set(ctx, "k1", "v1")
	m.Set(ctx, "k2", "v2")

	_, _, ok := m.Get(ctx, "k1")
	require.True(t, ok)
	_, _, ok = m.Get(ctx, "missing")
	require.False(t, ok)

	m.EvictHotFraction(1.0) // evicts both entries, demoting them into warm
	m.Invalidate(ctx, "k2")

	snap := m.Stats()
	assert.Equal(t, int64(1), snap.HotHits)
	assert.Equal(t, int64(1), snap.Misses)
	assert.Equal(t, int64(2), snap.HotEvictions)
	assert.Equal(t, int64(1), snap.Invalidations)
}

func TestInvalidateSymbolsOnlyAffectsIntersectingDependents(t *testing.T) {
	m := New()
	ctx := context.Background()

	m.Set(ctx, "file:a.ts", "a-result")
	m.SetWithSymbols(ctx, "refs:Widget", "widget-refs", []string{"Widget"}, "file:a.ts")
	m.SetWithSymbols(ctx, "refs:Helper", "helper-refs", []string{"Helper"}, "file:a.ts")

	affected := m.InvalidateSymbols(ctx, "file:a.ts", []string{"Widget"})
	assert.Contains(t, affected, "refs:Widget")
	assert.NotContains(t, affected, "refs:Helper")

	_, _, ok := m.Get(ctx, "refs:Widget")
	assert.False(t, ok)
	_, _, ok = m.Get(ctx, "refs:Helper")
	assert.True(t, ok, "a dependent whose symbol set doesn't intersect the change should survive")
}
