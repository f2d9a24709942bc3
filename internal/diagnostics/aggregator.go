// Package diagnostics accumulates pipeline findings across concurrently
// processed documents and renders the end-of-build report.
//
// Workers append under a mutex; every read returns a copy sorted by
// document, line, and block ordinal, so worker completion order never
// leaks into reports or exit-status decisions.
package diagnostics

import (
	"sort"
	"sync"
	"time"

	"github.com/robworks/fencer/internal/types"
)

// Aggregator collects diagnostics from concurrent pipeline workers.
type Aggregator struct {
	mu    sync.RWMutex
	diags []types.Diagnostic
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{diags: make([]types.Diagnostic, 0)}
}

// Record appends a single diagnostic, stamping its collection time.
func (a *Aggregator) Record(d types.Diagnostic) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d.Timestamp = time.Now()
	a.diags = append(a.diags, d)
}

// RecordAll appends every diagnostic in order. A nil or empty slice is
// a no-op, so pipeline stages can forward their results unconditionally.
func (a *Aggregator) RecordAll(diags []types.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	now := time.Now()
	for _, d := range diags {
		d.Timestamp = now
		a.diags = append(a.diags, d)
	}
}

// All returns a sorted copy of every collected diagnostic.
func (a *Aggregator) All() []types.Diagnostic {
	a.mu.RLock()
	result := make([]types.Diagnostic, len(a.diags))
	copy(result, a.diags)
	a.mu.RUnlock()

	sortDiagnostics(result)
	return result
}

// ForDocument returns the diagnostics recorded against one document,
// sorted by line and block ordinal.
func (a *Aggregator) ForDocument(documentID string) []types.Diagnostic {
	a.mu.RLock()
	var result []types.Diagnostic
	for _, d := range a.diags {
		if d.DocumentID == documentID {
			result = append(result, d)
		}
	}
	a.mu.RUnlock()

	sortDiagnostics(result)
	return result
}

// HasErrors reports whether any diagnostic at error severity was
// recorded. Strict builds exit non-zero when this is true.
func (a *Aggregator) HasErrors() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, d := range a.diags {
		if d.Severity >= types.SeverityError {
			return true
		}
	}
	return false
}

// Counts returns the number of error- and warning-severity diagnostics.
func (a *Aggregator) Counts() (errors, warnings int) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, d := range a.diags {
		switch {
		case d.Severity >= types.SeverityError:
			errors++
		case d.Severity == types.SeverityWarning:
			warnings++
		}
	}
	return errors, warnings
}

// Len returns the total number of collected diagnostics.
func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.diags)
}

// Documents returns the sorted set of document IDs with at least one
// diagnostic.
func (a *Aggregator) Documents() []string {
	a.mu.RLock()
	seen := make(map[string]bool)
	for _, d := range a.diags {
		seen[d.DocumentID] = true
	}
	a.mu.RUnlock()

	docs := make([]string, 0, len(seen))
	for id := range seen {
		docs = append(docs, id)
	}
	sort.Strings(docs)
	return docs
}

// RemoveDocument drops the diagnostics recorded against one document.
// Incremental rebuilds call this before reprocessing a changed
// document so stale findings do not accumulate.
func (a *Aggregator) RemoveDocument(documentID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	kept := a.diags[:0]
	for _, d := range a.diags {
		if d.DocumentID != documentID {
			kept = append(kept, d)
		}
	}
	a.diags = kept
}

// Clear drops all collected diagnostics. Watch-mode rebuilds call this
// between passes.
func (a *Aggregator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.diags = a.diags[:0]
}

func sortDiagnostics(diags []types.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].DocumentID != diags[j].DocumentID {
			return diags[i].DocumentID < diags[j].DocumentID
		}
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		return diags[i].BlockOrdinal < diags[j].BlockOrdinal
	})
}
