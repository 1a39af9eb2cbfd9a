// Package source tracks provenance for one analysis run: every
// source id consumed by a calculation resolves to a human-readable
// label here.
package source

import (
	"fmt"
	"sort"
	"sync"
)

// ConflictError reports an attempt to rebind a source id to a
// different label within one run.
type ConflictError struct {
	ID        string
	Existing  string
	Attempted string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("source %q already labeled %q (attempted %q)", e.ID, e.Existing, e.Attempted)
}

// Registry maps source ids to labels. One registry lives per run;
// writers are serialized and the first label wins.
type Registry struct {
	mu     sync.RWMutex
	labels map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{labels: make(map[string]string)}
}

// Register binds id to label. Registering the same pair again is a
// no-op; a different label for a known id returns a ConflictError and
// leaves the registry unchanged.
func (r *Registry) Register(id, label string) error {
	if id == "" {
		return fmt.Errorf("empty source id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.labels[id]; ok {
		if existing == label {
			return nil
		}
		return &ConflictError{ID: id, Existing: existing, Attempted: label}
	}
	r.labels[id] = label
	return nil
}

// Label returns the label bound to id.
func (r *Registry) Label(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	label, ok := r.labels[id]
	return label, ok
}

// Snapshot returns a copy of the registry contents.
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.labels))
	for id, label := range r.labels {
		out[id] = label
	}
	return out
}

// IDs returns all registered ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.labels))
	for id := range r.labels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.labels)
}
