// internal/client/registry_test.go
package client

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerplan/pokerplan/internal/models"
)

func newTestEntry(name string) Entry {
	return Entry{
		Identity: models.NewIdentity(uuid.New(), name),
		Channel:  NewChanChannel(1),
	}
}

func TestRegistryInsertAndGet(t *testing.T) {
	r := NewRegistry()
	entry := newTestEntry("Alice")

	r.Insert(1, entry)

	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, entry.Identity, got.Identity)
	assert.True(t, r.Contains(1))
	assert.Equal(t, 1, r.Len())
}

func TestRegistryGetMissing(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get(42)
	assert.False(t, ok)
	assert.False(t, r.Contains(42))
}

// Insert is unconditional: a second insert under the same id overwrites.
func TestRegistryInsertOverwrites(t *testing.T) {
	r := NewRegistry()
	first := newTestEntry("Alice")
	second := newTestEntry("Bob")

	r.Insert(1, first)
	r.Insert(1, second)

	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Bob", got.Identity.DisplayName())
	assert.Equal(t, 1, r.Len())
}

func TestRegistryInsertUnique(t *testing.T) {
	r := NewRegistry()

	require.True(t, r.InsertUnique(1, newTestEntry("Alice")))
	assert.False(t, r.InsertUnique(1, newTestEntry("Bob")))

	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Alice", got.Identity.DisplayName())
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	r.Insert(1, newTestEntry("Alice"))

	r.Remove(1)

	assert.False(t, r.Contains(1))
	assert.Equal(t, 0, r.Len())

	// Removing a missing id is a no-op.
	r.Remove(1)
}

// Lookups and inserts from many goroutines must not race; run with -race.
func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Insert(ConnectionID(base*100+j), newTestEntry("writer"))
			}
		}(i)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Get(ConnectionID(base*100 + j))
				r.Contains(ConnectionID(j))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1600, r.Len())
}
