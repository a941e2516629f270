package channel

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// End is one side of an in-process Pipe.
type End struct {
	peer    *End
	handler atomic.Pointer[Handler]
	inbox   chan []byte
	done    chan struct{}
	once    sync.Once
}

// Pipe returns two connected ends. Messages sent on one end are delivered,
// in order, to the handler registered on the other.
func Pipe(outbox int) (*End, *End) {
	if outbox <= 0 {
		outbox = DefaultOutbox
	}
	a := newEnd(outbox)
	b := newEnd(outbox)
	a.peer, b.peer = b, a
	go a.deliver()
	go b.deliver()
	return a, b
}

func newEnd(outbox int) *End {
	return &End{
		inbox: make(chan []byte, outbox),
		done:  make(chan struct{}),
	}
}

// Send implements Channel.
func (e *End) Send(msg []byte) error {
	select {
	case <-e.done:
		return ErrClosed
	default:
	}

	peer := e.peer
	select {
	case <-peer.done:
		return ErrNoPeer
	default:
	}
	if peer.handler.Load() == nil {
		return ErrNoPeer
	}

	select {
	case peer.inbox <- bytes.Clone(msg):
		return nil
	default:
		return ErrDropped
	}
}

// OnMessage implements Channel.
func (e *End) OnMessage(h Handler) {
	if h == nil {
		e.handler.Store(nil)
		return
	}
	e.handler.Store(&h)
}

// Close detaches this end. Queued inbound messages are discarded.
func (e *End) Close() error {
	e.once.Do(func() { close(e.done) })
	return nil
}

func (e *End) deliver() {
	for {
		select {
		case <-e.done:
			return
		case msg := <-e.inbox:
			if h := e.handler.Load(); h != nil {
				(*h)(msg)
			}
		}
	}
}

var _ Channel = (*End)(nil)
