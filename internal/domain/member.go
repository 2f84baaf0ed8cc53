package domain

// Member is a connection's participation in a room.
// No transport or lifecycle logic here.
type Member struct {
	Conn        ConnectionID
	Participant ParticipantID
	Room        RoomID
}
