package devtools

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/getmockd/gqlbridge/pkg/channel"
	"github.com/getmockd/gqlbridge/pkg/logging"
)

// Relay pushes events to the panel. Sends are fire-and-forget: a missing
// panel or a full panel queue is not an error, since the EventCache keeps
// the history.
type Relay struct {
	ch     channel.Channel
	logger *slog.Logger
}

// NewRelay creates a relay over ch. A nil ch drops everything.
func NewRelay(ch channel.Channel, logger *slog.Logger) *Relay {
	return &Relay{
		ch:     ch,
		logger: logging.Component(logger, "devtools.relay"),
	}
}

// Init announces the bridge to the panel.
func (r *Relay) Init() {
	r.send(initSignal)
}

// Send relays ev to the panel.
func (r *Relay) Send(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		r.logger.Error("failed to encode event", "type", ev.Type, "error", err)
		return
	}
	r.send(data)
}

func (r *Relay) send(msg []byte) {
	if r.ch == nil {
		return
	}
	err := r.ch.Send(msg)
	switch {
	case err == nil:
	case errors.Is(err, channel.ErrNoPeer), errors.Is(err, channel.ErrDropped):
		r.logger.Debug("panel did not receive message", "reason", err)
	default:
		r.logger.Warn("failed to relay message", "error", err)
	}
}
