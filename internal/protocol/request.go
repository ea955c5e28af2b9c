// internal/protocol/request.go
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Request type discriminators carried in the "type" field of inbound frames.
const (
	RequestCreateRoom = "CreateRoom"
	RequestJoinRoom   = "JoinRoom"
)

// ErrUnknownRequest is returned for frames whose "type" field names no known
// request. Callers log and drop such frames; nothing is sent back to the peer.
var ErrUnknownRequest = errors.New("unknown request type")

// CreateRoomParams are the client-supplied parameters for a new room. A nil
// passphrase creates a public room; any non-nil passphrase makes it private.
type CreateRoomParams struct {
	Passphrase *string  `json:"passphrase"`
	CardSet    []string `json:"card_set"`
}

// JoinRoomParams identify an existing room and carry the passphrase attempt.
type JoinRoomParams struct {
	RoomID     uuid.UUID `json:"room_id"`
	Passphrase *string   `json:"passphrase"`
}

// Request is a decoded inbound frame. Exactly one of the payload fields is
// set, according to Type.
type Request struct {
	Type       string
	CreateRoom *CreateRoomParams
	JoinRoom   *JoinRoomParams
}

// ParseRequest decodes a tagged JSON request frame. The tag and payload fields
// are flattened into one object, mirroring the wire format:
//
//	{"type":"CreateRoom","passphrase":null,"card_set":["1","3","5"]}
func ParseRequest(data []byte) (Request, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Request{}, fmt.Errorf("malformed request frame: %w", err)
	}

	switch envelope.Type {
	case RequestCreateRoom:
		var params CreateRoomParams
		if err := json.Unmarshal(data, &params); err != nil {
			return Request{}, fmt.Errorf("malformed CreateRoom params: %w", err)
		}
		return Request{Type: RequestCreateRoom, CreateRoom: &params}, nil
	case RequestJoinRoom:
		var params JoinRoomParams
		if err := json.Unmarshal(data, &params); err != nil {
			return Request{}, fmt.Errorf("malformed JoinRoom params: %w", err)
		}
		return Request{Type: RequestJoinRoom, JoinRoom: &params}, nil
	default:
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownRequest, envelope.Type)
	}
}
