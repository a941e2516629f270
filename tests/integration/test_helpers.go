// Package integration provides integration tests for the gqlbridge stack.
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/gqlbridge/pkg/admin"
	"github.com/getmockd/gqlbridge/pkg/channel"
	"github.com/getmockd/gqlbridge/pkg/client"
	"github.com/getmockd/gqlbridge/pkg/devtools"
	"github.com/getmockd/gqlbridge/pkg/mockengine"
)

const devtoolsPath = "/__devtools"

const (
	defaultWait  = 2 * time.Second
	pollInterval = 10 * time.Millisecond
)

const bridgeSchema = `
type Query {
	user(id: ID!): User
	slow(ms: Int!): String
}

type Mutation {
	rename(id: ID!, name: String!): User
}

type User {
	id: ID!
	name: String!
}
`

// bridgeBundle groups a running bridge stack for tests.
type bridgeBundle struct {
	Server *httptest.Server
	State  *devtools.State
	Hub    *channel.Hub
	Client *client.Client
}

// startBridge wires engine, hub, devtools exchange, client and HTTP API.
func startBridge(t *testing.T) *bridgeBundle {
	t.Helper()

	engine, err := mockengine.New(mockengine.Config{
		Schema: bridgeSchema,
		Resolvers: map[string][]mockengine.ResolverConfig{
			"Query.user": {
				{Match: map[string]any{"id": "0"}, Error: &mockengine.ErrorConfig{Message: "user not found"}},
				{Response: map[string]any{"id": "{{args.id}}", "name": "Ada"}},
			},
			"Query.slow": {
				{Match: map[string]any{"ms": 30}, Response: "thirty", Delay: "30ms"},
				{Match: map[string]any{"ms": 10}, Response: "ten", Delay: "10ms"},
				{Response: "instant"},
			},
			"Mutation.rename": {
				{Response: map[string]any{"id": "{{args.id}}", "name": "{{args.name}}"}},
			},
		},
	}, nil)
	require.NoError(t, err)

	hub := channel.NewHub(channel.HubOptions{})
	state := devtools.NewState()
	c := client.New(client.Options{Exchanges: []client.Exchange{
		devtools.NewExchange(devtools.Options{Channel: hub, State: state, Mode: devtools.ModeDevelopment}),
		engine.Exchange(),
	}})

	mux := http.NewServeMux()
	mux.Handle("GET "+devtoolsPath, hub)
	admin.New(state, admin.WithClient(c), admin.WithPanels(hub)).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		_ = hub.Close()
		srv.Close()
		_ = c.Close()
	})

	return &bridgeBundle{Server: srv, State: state, Hub: hub, Client: c}
}

// panel is a websocket devtools panel.
type panel struct {
	t    *testing.T
	conn *websocket.Conn
}

func (b *bridgeBundle) attachPanel(t *testing.T) *panel {
	t.Helper()

	url := "ws" + strings.TrimPrefix(b.Server.URL, "http") + devtoolsPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	initMsg, err := devtools.EncodeInit(1)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, initMsg))

	require.Eventually(t, func() bool { return b.Hub.PeerCount() > 0 }, defaultWait, pollInterval)
	return &panel{t: t, conn: conn}
}

func (p *panel) request(query string, vars map[string]any) {
	p.t.Helper()
	msg, err := devtools.EncodeRequest(query, vars)
	require.NoError(p.t, err)
	require.NoError(p.t, p.conn.WriteMessage(websocket.TextMessage, msg))
}

// next reads the next relayed event.
func (p *panel) next() devtools.Event {
	p.t.Helper()
	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, msg, err := p.conn.ReadMessage()
		require.NoError(p.t, err)
		isInit, ev, err := devtools.DecodeOutbound(msg)
		require.NoError(p.t, err)
		if !isInit {
			return ev
		}
	}
}

// postGraphQL sends a request to the GraphQL endpoint.
func (b *bridgeBundle) postGraphQL(t *testing.T, query string, vars map[string]any) admin.GraphQLResponse {
	t.Helper()
	body, err := json.Marshal(admin.GraphQLRequest{Query: query, Variables: vars})
	require.NoError(t, err)

	resp, err := http.Post(b.Server.URL+admin.DefaultGraphQLPath, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out admin.GraphQLResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// cachedEvents fetches the event cache over HTTP.
func (b *bridgeBundle) cachedEvents(t *testing.T, query string) []devtools.Event {
	t.Helper()
	resp, err := http.Get(b.Server.URL + admin.DefaultEventsPath + query)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out admin.EventsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Events
}
