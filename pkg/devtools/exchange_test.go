package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/gqlbridge/pkg/channel"
	"github.com/getmockd/gqlbridge/pkg/client"
	"github.com/getmockd/gqlbridge/pkg/operation"
)

func answerByQuery(op *operation.Operation) *operation.Result {
	switch {
	case strings.Contains(op.Query, "user"):
		return &operation.Result{Data: map[string]any{"user": map[string]any{"id": 1}}}
	case strings.Contains(op.Query, "fail"):
		return &operation.Result{Error: operation.NewNetworkError(errors.New("network down"))}
	default:
		return &operation.Result{Data: map[string]any{"ping": "pong"}}
	}
}

func newBridgedClient(t *testing.T, ch channel.Channel, state *State, delay func(*operation.Operation) time.Duration) *client.Client {
	t.Helper()
	c := client.New(client.Options{
		Exchanges: []client.Exchange{
			NewExchange(Options{Channel: ch, State: state, Mode: ModeDevelopment}),
			scriptedEngine(answerByQuery, delay),
		},
	})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// eventOps decodes the operation name for each event: the operation's own
// name for operation events, the correlated operation's name for results.
func eventOps(t *testing.T, events []Event) []string {
	t.Helper()
	out := make([]string, len(events))
	for i, ev := range events {
		var payload struct {
			OperationName string `json:"operationName"`
			Operation     *struct {
				OperationName string `json:"operationName"`
			} `json:"operation"`
		}
		require.NoError(t, json.Unmarshal(ev.Data, &payload))
		name := payload.OperationName
		if ev.Type != KindOperation && payload.Operation != nil {
			name = payload.Operation.OperationName
		}
		out[i] = string(ev.Type) + ":" + name
	}
	return out
}

func TestExchange_ActivationAnnouncesBridge(t *testing.T) {
	ch := &recordingChannel{}
	state := NewState()
	c := newBridgedClient(t, ch, state, nil)

	assert.True(t, state.Active())
	assert.Same(t, c, state.Client())
	assert.Equal(t, []string{`"init"`}, ch.messages())
	assert.Equal(t, 1, ch.handlers, "listener should be registered")
}

func TestExchange_OperationThenResponse(t *testing.T) {
	ch := &recordingChannel{}
	state := NewState()
	c := newBridgedClient(t, ch, state, nil)

	res, err := c.Query(context.Background(), `query GetUser { user { id } }`, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Error)
	assert.Equal(t, map[string]any{"user": map[string]any{"id": 1}}, res.Data, "result must reach caller unmodified")

	events := state.Events()
	require.Len(t, events, 2)
	assert.Equal(t, []string{"operation:GetUser", "response:GetUser"}, eventOps(t, events))
	assert.GreaterOrEqual(t, events[1].Timestamp, events[0].Timestamp)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(events[1].Data, &resp))
	assert.Equal(t, map[string]any{"user": map[string]any{"id": float64(1)}}, resp["data"])

	// Relay order matches cache order, after the init signal.
	msgs := ch.messages()
	require.Len(t, msgs, 3)
	for i, ev := range events {
		want, err := json.Marshal(ev)
		require.NoError(t, err)
		assert.JSONEq(t, string(want), msgs[i+1])
	}
}

func TestExchange_ErrorResult(t *testing.T) {
	ch := &recordingChannel{}
	state := NewState()
	c := newBridgedClient(t, ch, state, nil)

	res, err := c.Query(context.Background(), `query Fail { fail }`, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Error)

	events := state.Events()
	require.Len(t, events, 2)
	assert.Equal(t, []string{"operation:Fail", "error:Fail"}, eventOps(t, events))

	value, err := events[1].Value()
	require.NoError(t, err)
	errObj := value.(map[string]any)["error"].(map[string]any)
	assert.Equal(t, "network down", errObj["networkError"])
}

func TestExchange_PanelRequest(t *testing.T) {
	bridgeEnd, panelEnd := channel.Pipe(0)
	defer func() { _ = bridgeEnd.Close() }()
	defer func() { _ = panelEnd.Close() }()

	var (
		mu       sync.Mutex
		received []string
	)
	panelEnd.OnMessage(func(msg []byte) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, string(msg))
	})

	state := NewState()
	newBridgedClient(t, bridgeEnd, state, nil)

	req, err := EncodeRequest("{ping}", nil)
	require.NoError(t, err)
	require.NoError(t, panelEnd.Send(req))

	require.Eventually(t, func() bool { return state.Cache().Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	events := state.Events()
	assert.Equal(t, KindOperation, events[0].Type)
	assert.Equal(t, KindResponse, events[1].Type)

	var op operation.Operation
	require.NoError(t, json.Unmarshal(events[0].Data, &op))
	assert.Equal(t, "{ping}", op.Query)
	assert.Equal(t, map[string]any{"source": "Devtools"}, op.Context["devtools"])

	// The panel sees init, then the two events in cache order.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 3
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, `"init"`, received[0])
	for i, ev := range events {
		isInit, got, err := DecodeOutbound([]byte(received[i+1]))
		require.NoError(t, err)
		assert.False(t, isInit)
		assert.Equal(t, ev.Type, got.Type)
		assert.Equal(t, ev.Timestamp, got.Timestamp)
	}
}

func TestExchange_ConcurrentOperationsKeepPerOperationOrder(t *testing.T) {
	ch := &recordingChannel{}
	state := NewState()

	// A answers slowly so its result lands after B's dispatch.
	delay := func(op *operation.Operation) time.Duration {
		if op.OperationName == "A" {
			return 50 * time.Millisecond
		}
		return 0
	}
	c := newBridgedClient(t, ch, state, delay)

	var wg sync.WaitGroup
	for _, q := range []string{`query A { user { id } }`, `query B { ping }`, `query C { fail }`} {
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			_, err := c.Query(context.Background(), q, nil)
			assert.NoError(t, err)
		}(q)
	}
	wg.Wait()

	events := state.Events()
	require.Len(t, events, 6)

	labels := eventOps(t, events)
	for _, name := range []string{"A", "B", "C"} {
		opIdx, resIdx := -1, -1
		for i, l := range labels {
			if l == "operation:"+name {
				opIdx = i
			}
			if l == "response:"+name || l == "error:"+name {
				resIdx = i
			}
		}
		require.NotEqual(t, -1, opIdx, name)
		require.NotEqual(t, -1, resIdx, name)
		assert.Less(t, opIdx, resIdx, "operation %s must precede its result", name)
		assert.GreaterOrEqual(t, events[resIdx].Timestamp, events[opIdx].Timestamp)
	}

	// Relay order is cache order.
	msgs := ch.messages()[1:]
	require.Len(t, msgs, len(events))
	for i, ev := range events {
		_, got, err := DecodeOutbound([]byte(msgs[i]))
		require.NoError(t, err)
		assert.Equal(t, ev.Type, got.Type)
		assert.JSONEq(t, string(ev.Data), string(got.Data))
	}
}

func TestExchange_SnapshotFailureDoesNotBlockStream(t *testing.T) {
	ch := &recordingChannel{}
	state := NewState()

	var (
		mu     sync.Mutex
		failed []any
	)
	c := client.New(client.Options{
		Exchanges: []client.Exchange{
			NewExchange(Options{
				Channel: ch,
				State:   state,
				Mode:    ModeDevelopment,
				OnError: func(item any, err error) {
					mu.Lock()
					defer mu.Unlock()
					failed = append(failed, item)
				},
			}),
			scriptedEngine(func(op *operation.Operation) *operation.Result {
				if op.OperationName == "Bad" {
					return &operation.Result{Data: map[string]any{"stream": make(chan int)}}
				}
				return &operation.Result{Data: map[string]any{"ok": true}}
			}, nil),
		},
	})
	defer func() { _ = c.Close() }()

	bad, err := c.Query(context.Background(), `query Bad { x }`, nil)
	require.NoError(t, err, "the item must still reach the caller")
	assert.NotNil(t, bad.Data)

	_, err = c.Query(context.Background(), `query Good { x }`, nil)
	require.NoError(t, err)

	mu.Lock()
	assert.Len(t, failed, 1)
	mu.Unlock()

	assert.Equal(t, []string{"operation:Bad", "operation:Good", "response:Good"}, eventOps(t, state.Events()))
}

func TestExchange_ProductionIsTransparent(t *testing.T) {
	run := func(exchanges ...client.Exchange) []*operation.Result {
		c := client.New(client.Options{Exchanges: exchanges})
		defer func() { _ = c.Close() }()

		var out []*operation.Result
		for _, q := range []string{`query GetUser { user { id } }`, `query Fail { fail }`, `{ ping }`} {
			res, err := c.Query(context.Background(), q, nil)
			require.NoError(t, err)
			out = append(out, res)
		}
		return out
	}

	ch := &recordingChannel{}
	state := NewState()

	plain := run(scriptedEngine(answerByQuery, nil))
	wrapped := run(
		NewExchange(Options{Channel: ch, State: state, Mode: ModeProduction}),
		scriptedEngine(answerByQuery, nil),
	)

	require.Len(t, wrapped, len(plain))
	for i := range plain {
		a, err := json.Marshal(plain[i])
		require.NoError(t, err)
		b, err := json.Marshal(wrapped[i])
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	}

	assert.Empty(t, ch.messages(), "no relay traffic in production")
	assert.Equal(t, 0, ch.handlers, "no listener in production")
	assert.False(t, state.Active())
	assert.Equal(t, 0, state.Cache().Len())
}

func TestExchange_WithoutChannel(t *testing.T) {
	state := NewState()
	c := newBridgedClient(t, nil, state, nil)

	_, err := c.Query(context.Background(), `{ ping }`, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, state.Cache().Len())
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeProduction, ParseMode("production"))
	assert.Equal(t, ModeProduction, ParseMode(" Production "))
	assert.Equal(t, ModeDevelopment, ParseMode("development"))
	assert.Equal(t, ModeDevelopment, ParseMode(""))
	assert.Equal(t, ModeDevelopment, ParseMode("staging"))
}

func TestModeFromEnv(t *testing.T) {
	t.Setenv(EnvMode, "")
	t.Setenv(EnvModeFallback, "")
	assert.Equal(t, ModeDevelopment, ModeFromEnv())

	t.Setenv(EnvModeFallback, "production")
	assert.Equal(t, ModeProduction, ModeFromEnv())

	t.Setenv(EnvMode, "development")
	assert.Equal(t, ModeDevelopment, ModeFromEnv(), "primary variable wins")
}
