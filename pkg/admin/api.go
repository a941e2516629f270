package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/getmockd/gqlbridge/pkg/devtools"
	"github.com/getmockd/gqlbridge/pkg/logging"
)

// Default route paths.
const (
	DefaultEventsPath  = "/__devtools/events"
	DefaultStatePath   = "/__devtools/state"
	DefaultGraphQLPath = "/graphql"
	DefaultHealthPath  = "/health"
)

// PeerCounter reports how many panels are attached.
type PeerCounter interface {
	PeerCount() int
}

// API serves inspection state and application GraphQL traffic.
type API struct {
	state     *devtools.State
	client    devtools.Executor
	panels    PeerCounter
	log       *slog.Logger
	startedAt time.Time
	timeout   time.Duration

	eventsPath  string
	statePath   string
	graphqlPath string
}

// Option configures an API.
type Option func(*API)

// WithClient sets the client that executes POST /graphql requests.
// Without one the endpoint answers 503.
func WithClient(c devtools.Executor) Option {
	return func(a *API) {
		a.client = c
	}
}

// WithPanels sets the source of the attached panel count.
func WithPanels(p PeerCounter) Option {
	return func(a *API) {
		a.panels = p
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		a.log = log
	}
}

// WithRequestTimeout bounds how long a GraphQL request may run.
func WithRequestTimeout(d time.Duration) Option {
	return func(a *API) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithPaths overrides the route paths. Empty values keep the defaults.
func WithPaths(events, state, graphql string) Option {
	return func(a *API) {
		if events != "" {
			a.eventsPath = events
		}
		if state != "" {
			a.statePath = state
		}
		if graphql != "" {
			a.graphqlPath = graphql
		}
	}
}

// New creates an API over state.
func New(state *devtools.State, opts ...Option) *API {
	a := &API{
		state:       state,
		startedAt:   time.Now(),
		timeout:     30 * time.Second,
		eventsPath:  DefaultEventsPath,
		statePath:   DefaultStatePath,
		graphqlPath: DefaultGraphQLPath,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = logging.Component(a.log, "admin")
	return a
}

// Register adds the API routes to mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+DefaultHealthPath, a.handleHealth)
	mux.HandleFunc("GET "+a.eventsPath, a.handleListEvents)
	mux.HandleFunc("GET "+a.statePath, a.handleGetState)
	mux.HandleFunc("POST "+a.graphqlPath, a.handleGraphQL)
}

// Handler returns a mux serving only the API routes.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.Register(mux)
	return mux
}

// Uptime returns the API uptime in whole seconds.
func (a *API) Uptime() int {
	return int(time.Since(a.startedAt).Seconds())
}
