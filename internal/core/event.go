package core

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/dkeye/Convo/internal/domain"
)

// Inbound event names.
const (
	EventJoinRoom     = "join_room"
	EventLeaveRoom    = "leave_room"
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "ice_candidate"
	EventChatMessage  = "chat_message"
)

// Outbound-only event names.
const (
	EventJoinedRoom = "joined_room"
	EventUserJoined = "user_joined"
	EventLeftRoom   = "left_room"
	EventUserLeft   = "user_left"
	EventError      = "error"
)

var ErrBadEnvelope = errors.New("invalid message format")

// Inbound is one client event. Data keeps every field raw so that opaque
// negotiation payloads can be forwarded without being re-encoded.
type Inbound struct {
	Event string                     `json:"event"`
	Data  map[string]json.RawMessage `json:"data"`
}

// Outbound is the envelope written to clients.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type JoinedRoom struct {
	RoomID domain.RoomID        `json:"room_id"`
	UserID domain.ParticipantID `json:"user_id"`
}

type LeftRoom struct {
	RoomID domain.RoomID        `json:"room_id"`
	UserID domain.ParticipantID `json:"user_id"`
}

type Presence struct {
	UserID domain.ParticipantID `json:"user_id"`
}

type RelayedOffer struct {
	Offer json.RawMessage      `json:"offer"`
	From  domain.ParticipantID `json:"from"`
}

type RelayedAnswer struct {
	Answer json.RawMessage      `json:"answer"`
	From   domain.ParticipantID `json:"from"`
}

type RelayedCandidate struct {
	Candidate json.RawMessage      `json:"candidate"`
	From      domain.ParticipantID `json:"from"`
}

type ChatMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

// DecodeInbound parses one text frame. A missing "data" object is allowed and
// surfaces later as missing fields.
func DecodeInbound(raw []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return Inbound{}, errors.Join(ErrBadEnvelope, err)
	}
	if in.Event == "" {
		return Inbound{}, ErrBadEnvelope
	}
	return in, nil
}

// Encode renders an outbound event into a frame. HTML escaping is off so
// opaque payloads keep their characters as sent.
func Encode(event string, data any) (Frame, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Outbound{Event: event, Data: data}); err != nil {
		return nil, err
	}
	return Frame(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
