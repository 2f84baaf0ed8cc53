package core

import (
	"context"
	"errors"

	"github.com/dkeye/Convo/internal/domain"
)

// ErrRoomNotFound covers both a missing room and one that is no longer active.
var ErrRoomNotFound = errors.New("room not found")

// RoomDirectory is the read-only view of persisted rooms the relay needs.
// Lookups may hit a database, so callers must not hold locks across them.
type RoomDirectory interface {
	FindActiveRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error)
}
