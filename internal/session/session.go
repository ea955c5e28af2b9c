// internal/session/session.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pokerplan/pokerplan/internal/client"
	"github.com/pokerplan/pokerplan/internal/models"
	"github.com/pokerplan/pokerplan/internal/protocol"
	"github.com/pokerplan/pokerplan/internal/room"
)

// outboundMailboxSize bounds the per-connection outbound event queue. A full
// queue makes sends fail rather than block the sender.
const outboundMailboxSize = 16

// Dispatcher is the slice of the server a session needs: admit the
// connection, create rooms, look rooms up, and deregister on disconnect.
type Dispatcher interface {
	Connect(identity *models.Identity, channel client.Channel) (client.ConnectionID, error)
	CreateRoom(ctx context.Context, requester client.ConnectionID, params room.Params) (*room.Room, error)
	FindRoom(id uuid.UUID) (*room.Room, error)
	Disconnect(id client.ConnectionID)
}

// Session is the per-connection protocol adapter. It decodes inbound text
// frames into domain requests, forwards them to the dispatcher or room, and
// encodes outbound events back onto the wire.
type Session struct {
	dispatcher Dispatcher
	identity   *models.Identity
	logger     *logrus.Logger

	connID  client.ConnectionID
	channel *client.ChanChannel
	room    *room.Room
}

// New builds a session for an authenticated (or guest) identity.
func New(dispatcher Dispatcher, identity *models.Identity, logger *logrus.Logger) *Session {
	return &Session{
		dispatcher: dispatcher,
		identity:   identity,
		logger:     logger,
	}
}

// ConnectionID returns the id assigned when the session registered. Zero
// before Run.
func (s *Session) ConnectionID() client.ConnectionID {
	return s.connID
}

// Room returns the room handle retained from a successful CreateRoom or
// JoinRoom, if any.
func (s *Session) Room() *room.Room {
	return s.room
}

// Run registers the session with the dispatcher and pumps the connection
// until it closes or a request fails fatally. The registry entry is removed
// on the way out so stale channels do not accumulate.
func (s *Session) Run(ctx context.Context, conn *websocket.Conn) error {
	s.channel = client.NewChanChannel(outboundMailboxSize)

	connID, err := s.dispatcher.Connect(s.identity, s.channel)
	if err != nil {
		return fmt.Errorf("registering connection: %w", err)
	}
	s.connID = connID
	s.logger.Infof("websocket session %d established for user %s", connID, s.identity.ID())

	defer func() {
		s.dispatcher.Disconnect(connID)
		s.channel.Close()
		s.logger.Infof("websocket session %d closed", connID)
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.writePump(ctx, conn)
	return s.readPump(ctx, conn)
}

// readPump drains inbound frames until the connection closes. Unparseable
// frames are logged and dropped; binary frames are logged and the connection
// stays open; a dispatch failure terminates the session (fail fast, no
// retry).
func (s *Session) readPump(ctx context.Context, conn *websocket.Conn) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading frame on session %d: %w", s.connID, err)
		}

		if typ != websocket.MessageText {
			s.logger.Warnf("unexpected binary frame from session %d", s.connID)
			continue
		}

		req, err := protocol.ParseRequest(data)
		if err != nil {
			s.logger.Warnf("unrecognized text %q from session %d: %v", data, s.connID, err)
			continue
		}

		if err := s.handleRequest(ctx, req); err != nil {
			return err
		}
	}
}

// handleRequest forwards one decoded request. A returned error is fatal to
// the session.
func (s *Session) handleRequest(ctx context.Context, req protocol.Request) error {
	switch req.Type {
	case protocol.RequestCreateRoom:
		s.logger.Infof("create room request from session %d", s.connID)
		r, err := s.dispatcher.CreateRoom(ctx, s.connID, room.Params{
			Passphrase: req.CreateRoom.Passphrase,
			CardSet:    req.CreateRoom.CardSet,
		})
		if err != nil {
			return fmt.Errorf("create room failed on session %d: %w", s.connID, err)
		}
		s.room = r
		return nil

	case protocol.RequestJoinRoom:
		s.logger.Infof("join room request from session %d for room %s", s.connID, req.JoinRoom.RoomID)
		r, err := s.dispatcher.FindRoom(req.JoinRoom.RoomID)
		if err != nil {
			return fmt.Errorf("join room failed on session %d: %w", s.connID, err)
		}
		if err := r.Join(ctx, s.connID, req.JoinRoom.Passphrase); err != nil {
			return fmt.Errorf("join room %s failed on session %d: %w", r.ID(), s.connID, err)
		}
		s.room = r
		return nil

	default:
		// ParseRequest only produces known types; treat anything else as a
		// dropped frame.
		s.logger.Warnf("unhandled request type %q from session %d", req.Type, s.connID)
		return nil
	}
}

// writePump serializes outbound events onto the wire and keeps the
// connection alive with periodic pings.
func (s *Session) writePump(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-s.channel.Out():
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Warnf("failed to marshal outgoing event for session %d: %v", s.connID, err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				s.logger.Warnf("failed to write to websocket for session %d: %v", s.connID, err)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				s.logger.Warnf("failed to ping session %d, assuming disconnect: %v", s.connID, err)
				return
			}
		}
	}
}
