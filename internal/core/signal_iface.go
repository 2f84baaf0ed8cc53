package core

import "github.com/dkeye/Convo/internal/domain"

// Frame is one encoded outbound event.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	ID() domain.ConnectionID
	// TrySend queues f without blocking. It fails when the connection is
	// closed or its queue is full.
	TrySend(f Frame) error
	Close()
}
