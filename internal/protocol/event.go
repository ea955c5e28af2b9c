// internal/protocol/event.go
package protocol

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Event variant names. An event is encoded as a single-key JSON object keyed
// by the variant name, e.g. {"UserJoined":"Guest"}.
const (
	EventRoomCreated    = "RoomCreated"
	EventRoomClosed     = "RoomClosed"
	EventUserJoined     = "UserJoined"
	EventUnauthorized   = "Unauthorized"
	EventUserLeft       = "UserLeft"
	EventTopicUpdated   = "TopicUpdated"
	EventConfigUpdated  = "ConfigUpdated"
	EventGameStarted    = "GameStarted"
	EventCardPlayed     = "CardPlayed"
	EventCardPlayFailed = "CardPlayFailed"
	EventGameEnded      = "GameEnded"
)

// CreatedRoom is the payload of a RoomCreated event, sent to the room owner
// once the room record is durable.
type CreatedRoom struct {
	UUID    uuid.UUID `json:"uuid"`
	Private bool      `json:"private"`
	CardSet []string  `json:"card_set"`
}

// Event is one outbound domain event destined for a single connection.
type Event struct {
	Name    string
	Payload any
}

// MarshalJSON encodes the event in externally tagged form: the variant name is
// the sole object key, its value the payload.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{e.Name: e.Payload})
}

// NewRoomCreated builds the owner notification for a freshly persisted room.
func NewRoomCreated(room CreatedRoom) Event {
	return Event{Name: EventRoomCreated, Payload: room}
}

// NewUserJoined announces a new member to everyone in the room. The payload is
// the joiner's display name.
func NewUserJoined(displayName string) Event {
	return Event{Name: EventUserJoined, Payload: displayName}
}

// NewUnauthorized reports a rejected passphrase attempt.
func NewUnauthorized(reason string) Event {
	return Event{Name: EventUnauthorized, Payload: reason}
}

// NewStub builds one of the placeholder game events (RoomClosed, UserLeft,
// TopicUpdated, ConfigUpdated, GameStarted, CardPlayed, CardPlayFailed,
// GameEnded). Their payload shapes are not pinned down yet; they carry a bare
// string until the game loop lands.
func NewStub(name, payload string) Event {
	return Event{Name: name, Payload: payload}
}
