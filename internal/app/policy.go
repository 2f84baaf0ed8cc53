package app

import "github.com/dkeye/Convo/internal/domain"

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a recipient whose send queue is full.
type Policy interface {
	OnBackPressure(room domain.RoomID, member Member) BackpressureAction
}

// DropPolicy loses the frame and keeps the recipient. Fan-out is lossy anyway.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.RoomID, Member) BackpressureAction {
	return DropFrame
}

// KickPolicy closes the recipient's connection; its transport then runs the
// normal disconnect cleanup.
type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.RoomID, Member) BackpressureAction {
	return KickMember
}

// PolicyByName maps the slow_consumer config value to a Policy.
func PolicyByName(name string) Policy {
	if name == "kick" {
		return KickPolicy{}
	}
	return DropPolicy{}
}
