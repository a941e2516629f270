package channel

import "errors"

// Common errors for the channel package.
var (
	// ErrNoPeer indicates no peer is attached to receive the message.
	ErrNoPeer = errors.New("no peer attached")
	// ErrDropped indicates a peer's outbox was full and the message was discarded.
	ErrDropped = errors.New("message dropped")
	// ErrClosed indicates the channel is closed.
	ErrClosed = errors.New("channel closed")
)

// DefaultOutbox is the per-peer queue length used when none is configured.
const DefaultOutbox = 256

// Handler receives one inbound message. Handlers run on the channel's
// delivery goroutine and must not block for long.
type Handler func(msg []byte)

// Channel is one side of a bidirectional message channel.
type Channel interface {
	// Send queues msg for delivery to the other side without blocking.
	Send(msg []byte) error

	// OnMessage registers the handler for inbound messages, replacing any
	// previous handler. A nil handler detaches.
	OnMessage(h Handler)
}
