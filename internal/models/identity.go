// internal/models/identity.go
package models

import (
	"sync"

	"github.com/google/uuid"
)

// Identity is the verified (or guest) user identity attached to a live
// connection. It is shared by reference between the session that created it
// and every room the user joins, so all mutation goes through the lock.
type Identity struct {
	mu          sync.RWMutex
	id          uuid.UUID
	displayName string
}

// NewIdentity builds an identity handle for the given user id and display name.
func NewIdentity(id uuid.UUID, displayName string) *Identity {
	return &Identity{id: id, displayName: displayName}
}

// ID returns the externally issued, globally unique user id. The id is
// immutable once assigned.
func (i *Identity) ID() uuid.UUID {
	return i.id
}

// DisplayName returns the current display name.
func (i *Identity) DisplayName() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.displayName
}

// SetDisplayName replaces the display name.
func (i *Identity) SetDisplayName(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.displayName = name
}
