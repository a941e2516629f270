// Package channel provides the bidirectional message channel that links the
// devtools bridge to an inspection panel.
//
// A Channel sends opaque byte messages to the other side and delivers inbound
// messages to a registered Handler. Sends are fire-and-forget: they never
// block and carry no acknowledgment. When nobody is listening on the other
// side, Send reports ErrNoPeer; when a peer's outbox is full the message is
// dropped and Send reports ErrDropped.
//
// Two implementations are provided:
//   - Pipe: an in-process pair of connected ends, used by tests and embedders
//   - Hub: a websocket endpoint that broadcasts to every attached panel
//
// Hub uses github.com/coder/websocket for the websocket protocol.
package channel
