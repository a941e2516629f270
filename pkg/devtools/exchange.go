package devtools

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/getmockd/gqlbridge/pkg/channel"
	"github.com/getmockd/gqlbridge/pkg/client"
	"github.com/getmockd/gqlbridge/pkg/logging"
	"github.com/getmockd/gqlbridge/pkg/operation"
)

// Environment variables consulted by ModeFromEnv, in order.
const (
	EnvMode         = "GQLBRIDGE_ENV"
	EnvModeFallback = "GO_ENV"
)

// Mode selects whether the bridge observes traffic.
type Mode string

// Bridge modes.
const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// ParseMode maps an environment name to a Mode. Only "production" disables
// the bridge.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeProduction)) {
		return ModeProduction
	}
	return ModeDevelopment
}

// ModeFromEnv reads the mode from GQLBRIDGE_ENV, falling back to GO_ENV.
func ModeFromEnv() Mode {
	v := os.Getenv(EnvMode)
	if v == "" {
		v = os.Getenv(EnvModeFallback)
	}
	return ParseMode(v)
}

// Options configures the devtools exchange.
type Options struct {
	// Channel carries events to the panel and requests back. May be nil, in
	// which case events are only cached.
	Channel channel.Channel

	// State receives the client reference and event history. A fresh State is
	// used when nil.
	State *State

	// Mode decides whether the bridge is active. Empty means ModeFromEnv.
	Mode Mode

	// Logger receives diagnostics.
	Logger *slog.Logger

	// Now returns the classification time. Defaults to time.Now.
	Now func() time.Time

	// OnError is called when an intercepted item cannot be snapshotted.
	// The item still flows through the pipeline.
	OnError func(item any, err error)
}

// NewExchange returns the devtools exchange. In production mode it forwards
// the stream untouched and builds nothing else.
func NewExchange(opts Options) client.Exchange {
	mode := opts.Mode
	if mode == "" {
		mode = ModeFromEnv()
	}
	if mode == ModeProduction {
		return func(in client.ExchangeInput) client.ExchangeIO {
			return in.Forward
		}
	}

	return func(in client.ExchangeInput) client.ExchangeIO {
		b := activate(opts, in)
		return func(ops <-chan *operation.Operation) <-chan *operation.Result {
			tapped := make(chan *operation.Operation)
			go func() {
				defer close(tapped)
				for op := range ops {
					b.tap(op)
					tapped <- op
				}
			}()

			results := in.Forward(tapped)

			out := make(chan *operation.Result)
			go func() {
				defer close(out)
				for res := range results {
					b.tap(res)
					out <- res
				}
			}()
			return out
		}
	}
}

// bridge is the active side of the exchange.
type bridge struct {
	state   *State
	relay   *Relay
	logger  *slog.Logger
	now     func() time.Time
	onError func(item any, err error)

	// mu keeps cache order and relay order identical.
	mu sync.Mutex
}

func activate(opts Options, in client.ExchangeInput) *bridge {
	logger := opts.Logger
	if logger == nil {
		logger = in.Logger
	}
	logger = logging.Component(logger, "devtools")

	state := opts.State
	if state == nil {
		state = NewState()
	}

	b := &bridge{
		state:   state,
		relay:   NewRelay(opts.Channel, logger),
		logger:  logger,
		now:     opts.Now,
		onError: opts.OnError,
	}
	if b.now == nil {
		b.now = time.Now
	}

	var exec Executor
	if in.Client != nil {
		exec = in.Client
	}
	state.activate(exec)

	b.relay.Init()
	if opts.Channel != nil {
		opts.Channel.OnMessage(NewListener(exec, logger).OnMessage)
	}

	logger.Info("devtools bridge active")
	return b
}

// tap classifies item, caches it and relays it. Failures are reported and
// confined to this item.
func (b *bridge) tap(item any) {
	ev, err := Classify(item, b.now())
	if err != nil {
		b.logger.Error("failed to capture devtools event", "error", err)
		if b.onError != nil {
			b.onError(item, err)
		}
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.events.Append(ev)
	b.relay.Send(ev)
}
