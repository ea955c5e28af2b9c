// internal/client/registry.go
package client

import (
	"errors"
	"sync"

	"github.com/pokerplan/pokerplan/internal/models"
)

// ConnectionID is a process-unique identifier for one live connection,
// assigned at registration time by rejection sampling against the registry.
type ConnectionID uint64

// ErrMissingClient means a referenced connection is absent from the registry.
var ErrMissingClient = errors.New("client missing from registry")

// Entry is the registry value for one connection: who it is and how to reach
// it.
type Entry struct {
	Identity *models.Identity
	Channel  Channel
}

// Registry is the concurrent table of active connections, shared by reference
// between the dispatcher and every room. A single RWMutex guards the map; any
// number of lookups may run in parallel, an insert takes exclusive access.
//
// Callers hold the lock only for the duration of a single map operation. In
// particular, broadcasting looks entries up one at a time and never sends
// while a lock is held.
type Registry struct {
	mu      sync.RWMutex
	entries map[ConnectionID]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ConnectionID]Entry)}
}

// Insert stores the entry under id, overwriting any previous entry.
func (r *Registry) Insert(id ConnectionID, entry Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = entry
}

// InsertUnique stores the entry under id only if no entry exists yet. The
// check and insert happen under one critical section, so two concurrent
// registrations can never both claim the same id.
func (r *Registry) InsertUnique(id ConnectionID, entry Entry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; ok {
		return false
	}
	r.entries[id] = entry
	return true
}

// Get returns the entry for id, if registered.
func (r *Registry) Get(id ConnectionID) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	return entry, ok
}

// Contains reports whether an entry exists for id.
func (r *Registry) Contains(id ConnectionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// Remove deletes the entry for id, if present. Sessions call this on
// disconnect so stale channels do not accumulate.
func (r *Registry) Remove(id ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
