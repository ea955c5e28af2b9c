// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pokerplan/pokerplan/internal/cache"
	"github.com/pokerplan/pokerplan/internal/client"
	"github.com/pokerplan/pokerplan/internal/database"
	"github.com/pokerplan/pokerplan/internal/models"
	"github.com/pokerplan/pokerplan/internal/room"
)

var (
	// ErrRoomNotFound means no room is registered under the requested id.
	ErrRoomNotFound = errors.New("room not found")
	// ErrIDSpaceExhausted means rejection sampling failed to find a free
	// connection id within the attempt budget. With a 64-bit id space this
	// is practically unreachable, but the loop is bounded so the failure
	// mode is explicit and testable.
	ErrIDSpaceExhausted = errors.New("connection id space exhausted")
)

// maxIDAttempts bounds the rejection-sampling loop in Connect.
const maxIDAttempts = 64

// Server is the process-wide dispatcher. It owns the client registry and the
// directory of live rooms, admits new connections, and routes room creation
// and lookup requests.
type Server struct {
	registry *client.Registry
	store    database.RoomStore
	logger   *logrus.Logger

	// journal, when set, is handed to every room for best-effort lifecycle
	// records.
	journal func(context.Context, cache.RoomEventRecord) error

	// newID draws connection id candidates; swapped out in tests.
	newID func() uint64

	mu    sync.RWMutex
	rooms map[uuid.UUID]*room.Room
}

// New builds a dispatcher around the given persistence collaborator.
func New(store database.RoomStore, logger *logrus.Logger) *Server {
	return &Server{
		registry: client.NewRegistry(),
		store:    store,
		logger:   logger,
		newID:    rand.Uint64,
		rooms:    make(map[uuid.UUID]*room.Room),
	}
}

// Registry exposes the shared client registry.
func (s *Server) Registry() *client.Registry {
	return s.registry
}

// SetJournal installs the room-event journal publisher. Call before serving.
func (s *Server) SetJournal(fn func(context.Context, cache.RoomEventRecord) error) {
	s.journal = fn
}

// Connect admits a new connection: it draws a registry-unique connection id
// by rejection sampling and registers the identity/channel pair under it.
func (s *Server) Connect(identity *models.Identity, channel client.Channel) (client.ConnectionID, error) {
	entry := client.Entry{Identity: identity, Channel: channel}
	for i := 0; i < maxIDAttempts; i++ {
		candidate := client.ConnectionID(s.newID())
		if s.registry.InsertUnique(candidate, entry) {
			return candidate, nil
		}
	}
	return 0, ErrIDSpaceExhausted
}

// Disconnect removes the connection from the registry. Rooms the connection
// joined keep its membership; subsequent broadcasts log and skip it.
func (s *Server) Disconnect(id client.ConnectionID) {
	s.registry.Remove(id)
}

// CreateRoom builds a room owned by the requesting connection, persists it,
// and registers it in the directory under its assigned id. Construction and
// persistence are synchronous: no room is reachable through FindRoom before
// it is durably created.
func (s *Server) CreateRoom(ctx context.Context, requester client.ConnectionID, params room.Params) (*room.Room, error) {
	if !s.registry.Contains(requester) {
		s.logger.Errorf("received create room request from deleted client %d", requester)
		return nil, client.ErrMissingClient
	}

	params.OwnerConnectionID = requester
	r := room.New(params, s.store, s.registry, s.logger)
	r.Journal = s.journal

	id, err := r.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating room for client %d: %w", requester, err)
	}
	r.Start()

	s.mu.Lock()
	s.rooms[id] = r
	s.mu.Unlock()

	return r, nil
}

// FindRoom looks the room up in the directory.
func (s *Server) FindRoom(id uuid.UUID) (*room.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, ErrRoomNotFound)
	}
	return r, nil
}

// RoomCount returns the number of live rooms in the directory.
func (s *Server) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
