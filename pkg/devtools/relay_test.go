package devtools

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/gqlbridge/pkg/channel"
)

func TestRelay_InitAndSend(t *testing.T) {
	ch := &recordingChannel{}
	r := NewRelay(ch, nil)

	r.Init()
	r.Send(Event{Type: KindResponse, Data: []byte(`{"data":{"ping":"pong"}}`), Timestamp: 9})

	msgs := ch.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, `"init"`, msgs[0])
	assert.JSONEq(t, `{"type":"response","data":{"data":{"ping":"pong"}},"timestamp":9}`, msgs[1])
}

func TestRelay_SwallowsChannelErrors(t *testing.T) {
	for _, err := range []error{channel.ErrNoPeer, channel.ErrDropped, channel.ErrClosed, errors.New("boom")} {
		ch := &recordingChannel{err: err}
		r := NewRelay(ch, nil)
		assert.NotPanics(t, func() {
			r.Init()
			r.Send(Event{Type: KindOperation, Data: []byte(`{}`)})
		})
		assert.Len(t, ch.messages(), 2)
	}
}

func TestRelay_NilChannel(t *testing.T) {
	r := NewRelay(nil, nil)
	assert.NotPanics(t, func() {
		r.Init()
		r.Send(Event{Type: KindOperation, Data: []byte(`{}`)})
	})
}

func TestRelay_OverPipeWithoutPanel(t *testing.T) {
	bridgeEnd, panelEnd := channel.Pipe(0)
	defer func() { _ = bridgeEnd.Close() }()
	defer func() { _ = panelEnd.Close() }()

	r := NewRelay(bridgeEnd, nil)
	r.Init() // dropped: panel has no handler yet

	got := make(chan string, 1)
	panelEnd.OnMessage(func(msg []byte) { got <- string(msg) })
	r.Send(Event{Type: KindOperation, Data: []byte(`{"operationName":"A"}`), Timestamp: 1})

	select {
	case msg := <-got:
		assert.JSONEq(t, `{"type":"operation","data":{"operationName":"A"},"timestamp":1}`, msg)
	case <-time.After(time.Second):
		t.Fatal("event not relayed")
	}
}
