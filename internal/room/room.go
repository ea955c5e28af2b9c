// internal/room/room.go
package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pokerplan/pokerplan/internal/cache"
	"github.com/pokerplan/pokerplan/internal/client"
	"github.com/pokerplan/pokerplan/internal/database"
	"github.com/pokerplan/pokerplan/internal/models"
	"github.com/pokerplan/pokerplan/internal/protocol"
)

var (
	// ErrAlreadyJoined means the connection is already a member of the room.
	ErrAlreadyJoined = errors.New("already joined room")
	// ErrUnauthenticated means the supplied passphrase did not match on a
	// private room.
	ErrUnauthenticated = errors.New("bad or missing passphrase")
	// ErrRoomStopped means the room's mailbox loop has shut down.
	ErrRoomStopped = errors.New("room stopped")
)

// mailboxSize bounds the number of queued commands per room.
const mailboxSize = 32

// Params are the construction parameters for a room. A nil Passphrase makes
// the room public.
type Params struct {
	Passphrase        *string
	CardSet           []models.Card
	OwnerConnectionID client.ConnectionID
}

// Room is one collaborative estimation session. After Start, all membership
// state is owned by a single goroutine that drains the mailbox, so commands
// on one room are processed strictly one at a time in arrival order. The only
// shared state a room touches is the client registry.
//
// Lifecycle: New builds an instantiated room; Create persists it and makes it
// operable; Start launches the mailbox loop. Create must complete before
// Start.
type Room struct {
	id         uuid.UUID // uuid.Nil until Create succeeds
	passphrase *string
	cardSet    []models.Card
	ownerID    client.ConnectionID
	members    map[client.ConnectionID]struct{}
	game       *models.Game

	store    database.RoomStore
	registry *client.Registry
	logger   *logrus.Logger

	// Journal, when set, receives best-effort lifecycle records. Failures
	// are logged and never affect the triggering operation.
	Journal func(context.Context, cache.RoomEventRecord) error

	mailbox chan func()
	stop    chan struct{}
}

// New instantiates a room with the owner as its sole member. Pure
// construction: no I/O, no side effects. The room is not operable until
// Create has persisted it.
func New(params Params, store database.RoomStore, registry *client.Registry, logger *logrus.Logger) *Room {
	r := &Room{
		passphrase: params.Passphrase,
		cardSet:    params.CardSet,
		ownerID:    params.OwnerConnectionID,
		members:    make(map[client.ConnectionID]struct{}),
		store:      store,
		registry:   registry,
		logger:     logger,
		mailbox:    make(chan func(), mailboxSize),
		stop:       make(chan struct{}),
	}
	r.members[params.OwnerConnectionID] = struct{}{}
	return r
}

// ID returns the persisted room id, or uuid.Nil before Create.
func (r *Room) ID() uuid.UUID {
	return r.id
}

// IsPrivate reports whether joining requires a passphrase.
func (r *Room) IsPrivate() bool {
	return r.passphrase != nil
}

// Create persists the room record and turns the room operable, returning the
// assigned id. The owner is notified with a RoomCreated event on a
// best-effort basis; a failed notify is logged, never propagated.
//
// Create is not idempotent: a second call persists a second record.
func (r *Room) Create(ctx context.Context) (uuid.UUID, error) {
	owner, ok := r.registry.Get(r.ownerID)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing owner client %d when creating room: %w", r.ownerID, client.ErrMissingClient)
	}

	record, err := r.store.CreateRoom(ctx, database.NewRoomParams{
		Passphrase: r.passphrase,
		CardSet:    r.cardSet,
		OwnerID:    owner.Identity.ID(),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("persisting room record: %w", err)
	}
	r.id = record.ID

	created := protocol.CreatedRoom{
		UUID:    record.ID,
		Private: r.IsPrivate(),
		CardSet: record.CardSet,
	}
	if err := owner.Channel.Send(protocol.NewRoomCreated(created)); err != nil {
		r.logger.Warnf("error sending RoomCreated to room owner client %d: %v", r.ownerID, err)
	}

	r.publish(ctx, "room_created", r.ownerID)

	return record.ID, nil
}

// Start launches the mailbox loop. All subsequent membership operations go
// through the mailbox.
func (r *Room) Start() {
	go r.run()
}

// Stop shuts the mailbox loop down. Queued commands that have not started
// executing are abandoned.
func (r *Room) Stop() {
	close(r.stop)
}

func (r *Room) run() {
	for {
		select {
		case <-r.stop:
			return
		case fn := <-r.mailbox:
			fn()
		}
	}
}

// Join adds the connection to the room through the mailbox and reports the
// outcome. Join calls on one room are serialized in arrival order.
func (r *Room) Join(ctx context.Context, joiner client.ConnectionID, passphrase *string) error {
	reply := make(chan error, 1)
	select {
	case r.mailbox <- func() { reply <- r.join(joiner, passphrase) }:
	case <-r.stop:
		return ErrRoomStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-r.stop:
		return ErrRoomStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Members returns a snapshot of the current membership, through the mailbox.
func (r *Room) Members(ctx context.Context) ([]client.ConnectionID, error) {
	reply := make(chan []client.ConnectionID, 1)
	select {
	case r.mailbox <- func() {
		ids := make([]client.ConnectionID, 0, len(r.members))
		for id := range r.members {
			ids = append(ids, id)
		}
		reply <- ids
	}:
	case <-r.stop:
		return nil, ErrRoomStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case ids := <-reply:
		return ids, nil
	case <-r.stop:
		return nil, ErrRoomStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// join runs on the mailbox goroutine. Membership is updated first; the
// UserJoined fan-out afterwards is best effort per recipient, so one failed
// or missing channel never blocks delivery to the rest, nor the join itself.
func (r *Room) join(joiner client.ConnectionID, passphrase *string) error {
	if _, ok := r.members[joiner]; ok {
		return ErrAlreadyJoined
	}

	if r.IsPrivate() && !passphraseEqual(r.passphrase, passphrase) {
		return ErrUnauthenticated
	}

	r.members[joiner] = struct{}{}

	displayName := "Guest"
	if entry, ok := r.registry.Get(joiner); ok {
		displayName = entry.Identity.DisplayName()
	}
	ev := protocol.NewUserJoined(displayName)

	for id := range r.members {
		entry, ok := r.registry.Get(id)
		if !ok {
			r.logger.Errorf("trying to notify user joined to deleted client %d", id)
			continue
		}
		if err := entry.Channel.Send(ev); err != nil {
			r.logger.Warnf("error sending UserJoined to room member client %d: %v", id, err)
		}
	}

	r.publish(context.Background(), "user_joined", joiner)

	return nil
}

func (r *Room) publish(ctx context.Context, eventType string, actor client.ConnectionID) {
	if r.Journal == nil {
		return
	}
	record := cache.RoomEventRecord{
		RoomID:    r.id,
		EventType: eventType,
		ActorID:   uint64(actor),
		Timestamp: time.Now().UnixMilli(),
	}
	if err := r.Journal(ctx, record); err != nil {
		r.logger.Warnf("failed to journal %s for room %s: %v", eventType, r.id, err)
	}
}

// passphraseEqual is an exact match on optional passphrases: nil only equals
// nil.
func passphraseEqual(stored, supplied *string) bool {
	if stored == nil || supplied == nil {
		return stored == supplied
	}
	return *stored == *supplied
}
