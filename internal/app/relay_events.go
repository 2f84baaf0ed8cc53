package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dkeye/Convo/internal/core"
	"github.com/dkeye/Convo/internal/domain"
	"github.com/rs/zerolog/log"
)

const anonymousSender = "Anonymous"

type request struct {
	conn        core.SignalConnection
	data        map[string]json.RawMessage
	participant domain.ParticipantID
}

func newRequest(conn core.SignalConnection, data map[string]json.RawMessage) request {
	req := request{conn: conn, data: data}
	req.participant = domain.ResolveParticipant(req.token(), conn.ID())
	return req
}

// token is the caller's label: a string as sent, or the literal text of a
// number. Other JSON values are ignored.
func (q request) token() string {
	if s, ok := q.str("token"); ok {
		return s
	}
	raw, ok := q.data["token"]
	if !ok {
		return ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ""
	}
	return n.String()
}

// str returns a non-empty string field.
func (q request) str(key string) (string, bool) {
	raw, ok := q.data[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// opaque returns a field that is present and non-empty, uninterpreted.
func (q request) opaque(key string) ([]byte, bool) {
	raw, ok := q.data[key]
	if !ok {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, false
	}
	switch buf.String() {
	case "", "null", `""`, "{}", "[]", "false":
		return nil, false
	}
	var n float64
	if err := json.Unmarshal(buf.Bytes(), &n); err == nil && n == 0 {
		return nil, false
	}
	return raw, true
}

func (r *Relay) join(ctx context.Context, req request) error {
	id, ok := req.str("room_id")
	if !ok {
		return rejection("room_id is required")
	}
	room := domain.RoomID(id)

	if _, err := r.directory.FindActiveRoom(ctx, room); err != nil {
		return fmt.Errorf("find room %s: %w", room, err)
	}

	prev, moved := r.registry.Add(req.conn, room, req.participant)
	if moved {
		r.broadcast(prev.Room, r.registry.MembersOf(prev.Room), core.EventUserLeft, core.Presence{UserID: prev.Participant})
	}

	log.Info().Str("module", "app.relay").Str("conn", string(req.conn.ID())).Str("room_id", id).Str("user_id", string(req.participant)).Msg("join")
	r.send(req.conn, core.EventJoinedRoom, core.JoinedRoom{RoomID: room, UserID: req.participant})
	r.broadcast(room, r.registry.MembersOfExcluding(room, req.conn.ID()), core.EventUserJoined, core.Presence{UserID: req.participant})
	return nil
}

// leave is acknowledged even when the connection is not in room; only a real
// membership is removed and announced.
func (r *Relay) leave(req request) error {
	id, ok := req.str("room_id")
	if !ok {
		return rejection("room_id is required")
	}
	room := domain.RoomID(id)
	connID := req.conn.ID()

	var peers []Member
	if current, joined := r.registry.RoomOf(connID); joined && current == room {
		peers = r.registry.MembersOfExcluding(room, connID)
		r.registry.Remove(connID)
		log.Info().Str("module", "app.relay").Str("conn", string(connID)).Str("room_id", id).Str("user_id", string(req.participant)).Msg("leave")
	}

	r.send(req.conn, core.EventLeftRoom, core.LeftRoom{RoomID: room, UserID: req.participant})
	r.broadcast(room, peers, core.EventUserLeft, core.Presence{UserID: req.participant})
	return nil
}

// forward relays an opaque negotiation payload to the rest of the room.
func (r *Relay) forward(req request, field, event string, build func([]byte, domain.ParticipantID) any) error {
	id, okRoom := req.str("room_id")
	payload, okPayload := req.opaque(field)
	if !okRoom || !okPayload {
		return rejection(fmt.Sprintf("room_id and %s are required", field))
	}
	room := domain.RoomID(id)
	if err := r.requireMember(req.conn, room); err != nil {
		return err
	}
	r.broadcast(room, r.registry.MembersOfExcluding(room, req.conn.ID()), event, build(payload, req.participant))
	return nil
}

// chat echoes to the sender as well, so its UI renders through the same path.
func (r *Relay) chat(req request) error {
	id, okRoom := req.str("room_id")
	text, okText := req.str("text")
	if !okRoom || !okText {
		return rejection("room_id and text are required")
	}
	sender, ok := req.str("sender")
	if !ok {
		sender = anonymousSender
	}
	room := domain.RoomID(id)
	if err := r.requireMember(req.conn, room); err != nil {
		return err
	}
	msg := core.ChatMessage{Sender: SanitizeText(sender), Text: SanitizeText(text)}
	r.broadcast(room, r.registry.MembersOf(room), core.EventChatMessage, msg)
	return nil
}

func (r *Relay) requireMember(conn core.SignalConnection, room domain.RoomID) error {
	if current, ok := r.registry.RoomOf(conn.ID()); !ok || current != room {
		return rejection(msgNotMember)
	}
	return nil
}
