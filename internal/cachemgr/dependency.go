package cachemgr

import "sync"

// DependencyTracker records which cache keys a given key's computation read
// from, so an edit to one file can invalidate every cache entry that was
// derived from it, transitively, instead of forcing a full-cache flush. It
// also optionally records which imported symbols each key's computation
// actually consumed, enabling a selective invalidation mode that narrows the
// transitive closure down to dependents a specific set of changed symbols
// could have affected.
type DependencyTracker struct {
	mu sync.RWMutex

	// dependents[x] = set of keys whose cached value depended on x.
	dependents map[string]map[string]bool

	// symbolSets[key] = set of imported symbol names key's computation read,
	// as recorded via RecordSymbols. Absent for keys that never called it.
	symbolSets map[string]map[string]bool
}

// NewDependencyTracker creates an empty tracker.
func NewDependencyTracker() *DependencyTracker {
	return &DependencyTracker{
		dependents: make(map[string]map[string]bool),
		symbolSets: make(map[string]map[string]bool),
	}
}

// Record notes that key's cached value was derived from each entry in deps.
func (t *DependencyTracker) Record(key string, deps []string) {
	if len(deps) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, dep := range deps {
		set, ok := t.dependents[dep]
		if !ok {
			set = make(map[string]bool)
			t.dependents[dep] = set
		}
		set[key] = true
	}
}

// TransitivelyAffected returns every key whose cached value is reachable
// from key through the dependency graph, not including key itself.
func (t *DependencyTracker) TransitivelyAffected(key string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	visited := make(map[string]bool)
	var out []string
	var walk func(string)
	walk = func(k string) {
		for dependent := range t.dependents[k] {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			out = append(out, dependent)
			walk(dependent)
		}
	}
	walk(key)
	return out
}

// RecordSymbols notes that key's cached value was computed from the given
// imported symbol names, so a later InvalidateSymbols call can tell whether
// a changed-symbol set could have affected it.
func (t *DependencyTracker) RecordSymbols(key string, symbols []string) {
	if len(symbols) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.symbolSets[key]
	if !ok {
		set = make(map[string]bool, len(symbols))
		t.symbolSets[key] = set
	}
	for _, s := range symbols {
		set[s] = true
	}
}

// AffectedBySymbols walks the dependency closure from key, same as
// TransitivelyAffected, but only descends into and reports a dependent whose
// recorded imported-symbol set intersects changed. A dependent with no
// recorded symbol set is treated as affected (and its own dependents are
// still walked), since the tracker was never told what it consumed and a
// false negative would silently serve stale data.
func (t *DependencyTracker) AffectedBySymbols(key string, changed []string) []string {
	changedSet := make(map[string]bool, len(changed))
	for _, s := range changed {
		changedSet[s] = true
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	visited := make(map[string]bool)
	var out []string
	var walk func(string)
	walk = func(k string) {
		for dependent := range t.dependents[k] {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			if t.intersectsLocked(dependent, changedSet) {
				out = append(out, dependent)
				walk(dependent)
			}
		}
	}
	walk(key)
	return out
}

func (t *DependencyTracker) intersectsLocked(key string, changed map[string]bool) bool {
	set, ok := t.symbolSets[key]
	if !ok {
		return true
	}
	for s := range set {
		if changed[s] {
			return true
		}
	}
	return false
}

// Forget drops every recorded dependency edge and symbol set touching key,
// as either a dependency or a dependent; called when key's entry is deleted
// outright.
func (t *DependencyTracker) Forget(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.dependents, key)
	delete(t.symbolSets, key)
	for dep, set := range t.dependents {
		delete(set, key)
		if len(set) == 0 {
			delete(t.dependents, dep)
		}
	}
}
