package app

import (
	"sync"

	"github.com/dkeye/Convo/internal/core"
	"github.com/dkeye/Convo/internal/domain"
	"github.com/rs/zerolog/log"
)

// Member is a registry snapshot of one connection in a room.
type Member struct {
	Conn        core.SignalConnection
	Participant domain.ParticipantID
}

type membership struct {
	room   domain.RoomID
	member Member
}

// Registry tracks which live connections belong to which room.
// Entries exist only while a connection is joined; nothing is persisted.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]membership
	rooms map[domain.RoomID]map[domain.ConnectionID]Member
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.ConnectionID]membership),
		rooms: make(map[domain.RoomID]map[domain.ConnectionID]Member),
	}
}

// Add records conn as a member of room. A connection still joined to another
// room is removed from it first; that previous membership is returned so the
// caller can tell its old peers.
func (r *Registry) Add(conn core.SignalConnection, room domain.RoomID, participant domain.ParticipantID) (prev domain.Member, moved bool) {
	id := conn.ID()
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.conns[id]; ok && old.room != room {
		prev, moved = r.removeLocked(id)
	}

	m := Member{Conn: conn, Participant: participant}
	r.conns[id] = membership{room: room, member: m}
	set, ok := r.rooms[room]
	if !ok {
		set = make(map[domain.ConnectionID]Member)
		r.rooms[room] = set
	}
	set[id] = m
	log.Debug().Str("module", "app.registry").Str("conn", string(id)).Str("room_id", string(room)).Int("members", len(set)).Msg("member added")
	return prev, moved
}

// Remove drops whatever membership id has. Removing an unknown connection is
// a no-op.
func (r *Registry) Remove(id domain.ConnectionID) (domain.Member, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(id)
}

func (r *Registry) removeLocked(id domain.ConnectionID) (domain.Member, bool) {
	old, ok := r.conns[id]
	if !ok {
		return domain.Member{}, false
	}
	delete(r.conns, id)
	if set, ok := r.rooms[old.room]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(r.rooms, old.room)
		}
	}
	log.Debug().Str("module", "app.registry").Str("conn", string(id)).Str("room_id", string(old.room)).Msg("member removed")
	return domain.Member{Conn: id, Participant: old.member.Participant, Room: old.room}, true
}

// RoomOf reports the room id is currently joined to.
func (r *Registry) RoomOf(id domain.ConnectionID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.conns[id]
	return m.room, ok
}

// MembersOf returns the current members of room.
func (r *Registry) MembersOf(room domain.RoomID) []Member {
	return r.MembersOfExcluding(room, "")
}

// MembersOfExcluding returns the current members of room except the given
// connection.
func (r *Registry) MembersOfExcluding(room domain.RoomID, except domain.ConnectionID) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.rooms[room]
	out := make([]Member, 0, len(set))
	for id, m := range set {
		if id == except {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Counts returns the number of joined connections and non-empty rooms.
func (r *Registry) Counts() (conns, rooms int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns), len(r.rooms)
}
