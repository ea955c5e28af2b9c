// internal/models/room.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Card is a single estimation card label ("1", "3", "5", "?", ...).
type Card = string

// RoomRecord represents a row in the rooms table. The id is assigned exactly
// once, at insertion time, and is immutable thereafter.
type RoomRecord struct {
	ID            uuid.UUID  `json:"id"`
	Private       bool       `json:"private"`
	Passphrase    *string    `json:"passphrase,omitempty"`
	CardSet       []Card     `json:"card_set"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUpdatedAt time.Time  `json:"last_updated_at"`
}
