// Package runs tracks active pipeline runs and their cancellation
// state. A Registry instance is injected wherever cancellation is
// checked, so concurrent runs never share flags through package state.
package runs

import (
	"sync"
	"time"
)

// Info describes one registered run.
type Info struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	StartedAt time.Time `json:"started_at"`
	Cancelled bool      `json:"cancelled"`
}

// Registry is a concurrency-safe set of runs keyed by run ID.
// Cancelling an unknown ID records the flag anyway, so a cancel that
// races run registration still lands.
type Registry struct {
	mu   sync.Mutex
	runs map[string]*Info
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{runs: make(map[string]*Info)}
}

// Register adds a run. Re-registering an ID keeps an existing cancel
// flag.
func (r *Registry) Register(id, query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.runs[id]; ok {
		existing.Query = query
		if existing.StartedAt.IsZero() {
			existing.StartedAt = time.Now().UTC()
		}
		return
	}
	r.runs[id] = &Info{ID: id, Query: query, StartedAt: time.Now().UTC()}
}

// Cancel flags a run to stop at its next boundary check.
func (r *Registry) Cancel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.runs[id]; ok {
		info.Cancelled = true
		return
	}
	r.runs[id] = &Info{ID: id, Cancelled: true}
}

// CancelAll flags every registered run and returns how many were
// still active.
func (r *Registry) CancelAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, info := range r.runs {
		if !info.Cancelled {
			info.Cancelled = true
			n++
		}
	}
	return n
}

// Cancelled reports whether the run has been asked to stop.
func (r *Registry) Cancelled(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.runs[id]
	return ok && info.Cancelled
}

// Forget removes a finished run.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.runs, id)
}

// List returns a snapshot of all registered runs.
func (r *Registry) List() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Info, 0, len(r.runs))
	for _, info := range r.runs {
		out = append(out, *info)
	}
	return out
}
