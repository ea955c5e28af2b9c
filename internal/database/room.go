// internal/database/room.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pokerplan/pokerplan/internal/models"
)

// Persistence failure kinds, so callers can tell a constraint violation from
// the database simply being unreachable. Both are wrapped with context by the
// functions below; match with errors.Is.
var (
	ErrConstraint  = errors.New("constraint violation")
	ErrUnavailable = errors.New("database unavailable")
)

// NewRoomParams are the fields persisted for a freshly created room.
type NewRoomParams struct {
	Passphrase *string
	CardSet    []models.Card
	OwnerID    uuid.UUID
}

// RoomStore is the narrow persistence capability consumed by the room
// lifecycle. The returned record carries the id assigned at insertion time.
type RoomStore interface {
	CreateRoom(ctx context.Context, params NewRoomParams) (models.RoomRecord, error)
}

// PostgresRoomStore persists rooms through the shared pgx pool.
type PostgresRoomStore struct{}

// NewPostgresRoomStore returns a store backed by the package-level pool.
// ConnectDB must have run first.
func NewPostgresRoomStore() *PostgresRoomStore {
	return &PostgresRoomStore{}
}

// CreateRoom inserts a new rooms row and returns the stored record.
func (s *PostgresRoomStore) CreateRoom(ctx context.Context, params NewRoomParams) (models.RoomRecord, error) {
	now := time.Now()
	record := models.RoomRecord{
		ID:            uuid.New(),
		Private:       params.Passphrase != nil,
		Passphrase:    params.Passphrase,
		CardSet:       params.CardSet,
		OwnerID:       params.OwnerID,
		CreatedAt:     now,
		LastUpdatedAt: now,
	}

	q := `
	INSERT INTO rooms (id, private, passphrase, card_set, owner_id, created_at, last_updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			record.ID, record.Private, record.Passphrase, record.CardSet,
			record.OwnerID, record.CreatedAt, record.LastUpdatedAt,
		)
		return execErr
	})
	if err != nil {
		return models.RoomRecord{}, wrapRoomInsertError(err)
	}
	return record, nil
}

func wrapRoomInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23 covers integrity constraint violations.
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23" {
			return fmt.Errorf("inserting room record: %w: %v", ErrConstraint, err)
		}
	}
	return fmt.Errorf("inserting room record: %w: %v", ErrUnavailable, err)
}
