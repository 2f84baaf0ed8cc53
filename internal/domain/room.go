// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MinRoomNameLen = 3
	MaxRoomNameLen = 50
)

var (
	ErrRoomNameEmpty  = errors.New("room name empty")
	ErrRoomNameLength = errors.New("room name must be between 3 and 50 characters")
)

// RoomID is the opaque identifier clients use to join a room.
type RoomID string

// Room is a directory entry. RoomID never changes once assigned and Active
// only ever goes from true to false.
type Room struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	RoomID RoomID `json:"room_id"`
	Active bool   `json:"-"`
}

// NormalizeRoomName trims the name and checks its length.
func NormalizeRoomName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrRoomNameEmpty
	}
	if n := len([]rune(name)); n < MinRoomNameLen || n > MaxRoomNameLen {
		return "", ErrRoomNameLength
	}
	return name, nil
}
