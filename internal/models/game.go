// internal/models/game.go
package models

// Game holds the in-progress estimation round for a room. Scoring and round
// transitions live outside this core; only the shape is defined here.
type Game struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// Hands maps a connection id (see internal/client) to the card that
	// connection has played this round.
	Hands map[uint64]Card `json:"hands"`
}
