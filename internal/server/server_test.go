// internal/server/server_test.go
package server

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokerplan/pokerplan/internal/cache"
	"github.com/pokerplan/pokerplan/internal/client"
	"github.com/pokerplan/pokerplan/internal/database"
	"github.com/pokerplan/pokerplan/internal/models"
	"github.com/pokerplan/pokerplan/internal/protocol"
	"github.com/pokerplan/pokerplan/internal/room"
	"github.com/pokerplan/pokerplan/internal/session"
)

// The server must keep satisfying the session's view of a dispatcher.
var _ session.Dispatcher = (*Server)(nil)

type fakeStore struct {
	mu    sync.Mutex
	calls int
	fail  error
}

func (s *fakeStore) CreateRoom(_ context.Context, params database.NewRoomParams) (models.RoomRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail != nil {
		return models.RoomRecord{}, s.fail
	}
	now := time.Now()
	return models.RoomRecord{
		ID:            uuid.New(),
		Private:       params.Passphrase != nil,
		Passphrase:    params.Passphrase,
		CardSet:       params.CardSet,
		OwnerID:       params.OwnerID,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}, nil
}

type recordChannel struct {
	mu     sync.Mutex
	events []protocol.Event
}

func (c *recordChannel) Send(ev protocol.Event) error { return c.TrySend(ev) }

func (c *recordChannel) TrySend(ev protocol.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *recordChannel) named(name string) []protocol.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []protocol.Event
	for _, ev := range c.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testIdentity(name string) *models.Identity {
	return models.NewIdentity(uuid.New(), name)
}

func TestConnectAssignsUniqueIDs(t *testing.T) {
	s := New(&fakeStore{}, testLogger())

	seen := make(map[client.ConnectionID]struct{})
	for i := 0; i < 500; i++ {
		id, err := s.Connect(testIdentity("user"), &recordChannel{})
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "duplicate connection id %d", id)
		seen[id] = struct{}{}
	}
	assert.Equal(t, 500, s.Registry().Len())
}

func TestConnectRetriesCollisions(t *testing.T) {
	s := New(&fakeStore{}, testLogger())
	candidates := []uint64{7, 7, 7, 8}
	s.newID = func() uint64 {
		next := candidates[0]
		if len(candidates) > 1 {
			candidates = candidates[1:]
		}
		return next
	}

	first, err := s.Connect(testIdentity("a"), &recordChannel{})
	require.NoError(t, err)
	assert.Equal(t, client.ConnectionID(7), first)

	second, err := s.Connect(testIdentity("b"), &recordChannel{})
	require.NoError(t, err)
	assert.Equal(t, client.ConnectionID(8), second)
}

func TestConnectIDSpaceExhausted(t *testing.T) {
	s := New(&fakeStore{}, testLogger())
	s.newID = func() uint64 { return 7 }

	_, err := s.Connect(testIdentity("a"), &recordChannel{})
	require.NoError(t, err)

	_, err = s.Connect(testIdentity("b"), &recordChannel{})
	assert.ErrorIs(t, err, ErrIDSpaceExhausted)
	assert.Equal(t, 1, s.Registry().Len())
}

func TestDisconnectRemovesRegistryEntry(t *testing.T) {
	s := New(&fakeStore{}, testLogger())

	id, err := s.Connect(testIdentity("a"), &recordChannel{})
	require.NoError(t, err)

	s.Disconnect(id)
	assert.False(t, s.Registry().Contains(id))
}

func TestCreateRoomUnknownRequester(t *testing.T) {
	store := &fakeStore{}
	s := New(store, testLogger())

	_, err := s.CreateRoom(context.Background(), 42, room.Params{})
	assert.ErrorIs(t, err, client.ErrMissingClient)
	assert.Zero(t, store.calls)
	assert.Zero(t, s.RoomCount())
}

func TestCreateRoomRegistersAndFinds(t *testing.T) {
	s := New(&fakeStore{}, testLogger())

	ch := &recordChannel{}
	requester, err := s.Connect(testIdentity("Alice"), ch)
	require.NoError(t, err)

	r, err := s.CreateRoom(context.Background(), requester, room.Params{
		CardSet: []models.Card{"1", "3", "5"},
	})
	require.NoError(t, err)
	defer r.Stop()

	assert.NotEqual(t, uuid.Nil, r.ID())
	assert.Equal(t, 1, s.RoomCount())
	require.Len(t, ch.named(protocol.EventRoomCreated), 1)

	found, err := s.FindRoom(r.ID())
	require.NoError(t, err)
	assert.Same(t, r, found)
}

// If persistence fails the room never enters the directory: no half-created
// rooms are reachable.
func TestCreateRoomPersistenceFailure(t *testing.T) {
	store := &fakeStore{fail: database.ErrUnavailable}
	s := New(store, testLogger())

	requester, err := s.Connect(testIdentity("Alice"), &recordChannel{})
	require.NoError(t, err)

	_, err = s.CreateRoom(context.Background(), requester, room.Params{})
	assert.ErrorIs(t, err, database.ErrUnavailable)
	assert.Zero(t, s.RoomCount())
}

func TestCreateRoomOwnerOverridesParams(t *testing.T) {
	s := New(&fakeStore{}, testLogger())

	ch := &recordChannel{}
	requester, err := s.Connect(testIdentity("Alice"), ch)
	require.NoError(t, err)

	// A spoofed owner id in the params is ignored; the requester owns the room.
	r, err := s.CreateRoom(context.Background(), requester, room.Params{
		OwnerConnectionID: requester + 1,
	})
	require.NoError(t, err)
	defer r.Stop()

	require.Len(t, ch.named(protocol.EventRoomCreated), 1)
}

func TestCreateRoomWiresJournal(t *testing.T) {
	s := New(&fakeStore{}, testLogger())

	var records []cache.RoomEventRecord
	var mu sync.Mutex
	s.SetJournal(func(_ context.Context, rec cache.RoomEventRecord) error {
		mu.Lock()
		defer mu.Unlock()
		records = append(records, rec)
		return nil
	})

	requester, err := s.Connect(testIdentity("Alice"), &recordChannel{})
	require.NoError(t, err)

	r, err := s.CreateRoom(context.Background(), requester, room.Params{})
	require.NoError(t, err)
	defer r.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, records, 1)
	assert.Equal(t, "room_created", records[0].EventType)
	assert.Equal(t, r.ID(), records[0].RoomID)
}

func TestFindRoomNotFound(t *testing.T) {
	s := New(&fakeStore{}, testLogger())

	_, err := s.FindRoom(uuid.New())
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
