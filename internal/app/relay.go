package app

import (
	"context"
	"errors"
	"runtime/debug"

	"github.com/dkeye/Convo/internal/core"
	"github.com/dkeye/Convo/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	msgRoomNotFound = "Room not found or inactive"
	msgNotMember    = "Not a member of this room"
	msgInternal     = "Internal server error"
	msgBadEnvelope  = "Invalid message format"
)

// rejection is a client-visible validation failure.
type rejection string

func (r rejection) Error() string { return string(r) }

// Relay routes signaling and chat events between connections in the same
// room. Every handler runs on the sending connection's read goroutine, so a
// connection's own membership changes are serialized.
type Relay struct {
	registry  *Registry
	directory core.RoomDirectory
	policy    Policy
}

func NewRelay(registry *Registry, directory core.RoomDirectory, policy Policy) *Relay {
	if policy == nil {
		policy = DropPolicy{}
	}
	return &Relay{
		registry:  registry,
		directory: directory,
		policy:    policy,
	}
}

func (r *Relay) Registry() *Registry { return r.registry }

// Handle processes one inbound event from conn. Failures are reported to conn
// alone as an error event; nothing escapes to the transport.
func (r *Relay) Handle(ctx context.Context, conn core.SignalConnection, in core.Inbound) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Str("module", "app.relay").
				Str("conn", string(conn.ID())).
				Str("event", in.Event).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("handler panic")
			r.sendError(conn, msgInternal)
		}
	}()

	req := newRequest(conn, in.Data)
	var err error
	switch in.Event {
	case core.EventJoinRoom:
		err = r.join(ctx, req)
	case core.EventLeaveRoom:
		err = r.leave(req)
	case core.EventOffer:
		err = r.forward(req, "offer", core.EventOffer, func(p []byte, from domain.ParticipantID) any {
			return core.RelayedOffer{Offer: p, From: from}
		})
	case core.EventAnswer:
		err = r.forward(req, "answer", core.EventAnswer, func(p []byte, from domain.ParticipantID) any {
			return core.RelayedAnswer{Answer: p, From: from}
		})
	case core.EventICECandidate:
		err = r.forward(req, "candidate", core.EventICECandidate, func(p []byte, from domain.ParticipantID) any {
			return core.RelayedCandidate{Candidate: p, From: from}
		})
	case core.EventChatMessage:
		err = r.chat(req)
	default:
		err = rejection("Unknown event: " + in.Event)
	}
	if err != nil {
		r.report(conn, in.Event, err)
	}
}

// Malformed reports a frame that could not be decoded into an event.
func (r *Relay) Malformed(conn core.SignalConnection, err error) {
	log.Warn().Err(err).Str("module", "app.relay").Str("conn", string(conn.ID())).Msg("bad envelope")
	r.sendError(conn, msgBadEnvelope)
}

// Disconnect cleans up after a transport that went away. Remaining peers get
// user_left; the departed connection is not notified.
func (r *Relay) Disconnect(conn core.SignalConnection) {
	id := conn.ID()
	room, ok := r.registry.RoomOf(id)
	if !ok {
		return
	}
	peers := r.registry.MembersOfExcluding(room, id)
	m, ok := r.registry.Remove(id)
	if !ok {
		return
	}
	log.Info().Str("module", "app.relay").Str("conn", string(id)).Str("room_id", string(room)).Msg("disconnect cleanup")
	r.broadcast(room, peers, core.EventUserLeft, core.Presence{UserID: m.Participant})
}

func (r *Relay) report(conn core.SignalConnection, event string, err error) {
	var rej rejection
	switch {
	case errors.As(err, &rej):
		r.sendError(conn, string(rej))
	case errors.Is(err, core.ErrRoomNotFound):
		r.sendError(conn, msgRoomNotFound)
	default:
		log.Error().Err(err).Str("module", "app.relay").Str("conn", string(conn.ID())).Str("event", event).Msg("handler failed")
		r.sendError(conn, msgInternal)
	}
}

func (r *Relay) sendError(conn core.SignalConnection, message string) {
	r.send(conn, core.EventError, core.ErrorMessage{Message: message})
}

func (r *Relay) send(conn core.SignalConnection, event string, data any) {
	frame, err := core.Encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Str("event", event).Msg("encode")
		return
	}
	if err := conn.TrySend(frame); err != nil {
		log.Warn().Err(err).Str("module", "app.relay").Str("conn", string(conn.ID())).Str("event", event).Msg("send to origin failed")
	}
}

// broadcast encodes once and queues the frame for every member. A full
// queue is handed to the policy; delivery is best effort.
func (r *Relay) broadcast(room domain.RoomID, members []Member, event string, data any) int {
	if len(members) == 0 {
		return 0
	}
	frame, err := core.Encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Str("event", event).Msg("encode")
		return 0
	}
	sent := 0
	for _, m := range members {
		if err := m.Conn.TrySend(frame); err != nil {
			log.Warn().Err(err).Str("module", "app.relay").Str("conn", string(m.Conn.ID())).Str("event", event).Msg("recipient dropped frame")
			if r.policy.OnBackPressure(room, m) == KickMember {
				m.Conn.Close()
			}
			continue
		}
		sent++
	}
	log.Debug().Str("module", "app.relay").Str("room_id", string(room)).Str("event", event).Int("sent_to", sent).Int("members", len(members)).Msg("broadcast")
	return sent
}
