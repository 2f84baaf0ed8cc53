package domain

import "github.com/google/uuid"

// ConnectionID identifies one live transport session. It is minted by the
// transport when the socket opens and is meaningless once it closes.
type ConnectionID string

// ParticipantID is the label peers see in relayed events. It is an
// unauthenticated display value: either the caller-supplied token or a
// label derived from the connection id.
type ParticipantID string

func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}

// ResolveParticipant picks the participant label for a single event.
// Authentication, if ever added, belongs in front of this and must not
// change how the fallback is derived.
func ResolveParticipant(token string, conn ConnectionID) ParticipantID {
	if token != "" {
		return ParticipantID(token)
	}
	return ParticipantID("user_" + string(conn))
}
