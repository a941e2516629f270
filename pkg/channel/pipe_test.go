package channel

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu   sync.Mutex
	msgs []string
}

func (c *collector) handle(msg []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, string(msg))
}

func (c *collector) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

func TestPipe_DeliversInOrder(t *testing.T) {
	bridge, panel := Pipe(0)
	defer func() { _ = bridge.Close() }()
	defer func() { _ = panel.Close() }()

	var got collector
	panel.OnMessage(got.handle)

	for _, m := range []string{`"init"`, `{"type":"operation"}`, `{"type":"response"}`} {
		require.NoError(t, bridge.Send([]byte(m)))
	}

	require.Eventually(t, func() bool { return len(got.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{`"init"`, `{"type":"operation"}`, `{"type":"response"}`}, got.snapshot())
}

func TestPipe_Bidirectional(t *testing.T) {
	bridge, panel := Pipe(0)
	defer func() { _ = bridge.Close() }()
	defer func() { _ = panel.Close() }()

	var atBridge, atPanel collector
	bridge.OnMessage(atBridge.handle)
	panel.OnMessage(atPanel.handle)

	require.NoError(t, panel.Send([]byte(`{"type":"request","query":"{ping}"}`)))
	require.NoError(t, bridge.Send([]byte(`"init"`)))

	require.Eventually(t, func() bool {
		return len(atBridge.snapshot()) == 1 && len(atPanel.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestPipe_NoPeerWithoutHandler(t *testing.T) {
	bridge, panel := Pipe(0)
	defer func() { _ = bridge.Close() }()
	defer func() { _ = panel.Close() }()

	assert.ErrorIs(t, bridge.Send([]byte("x")), ErrNoPeer)

	panel.OnMessage(func([]byte) {})
	assert.NoError(t, bridge.Send([]byte("x")))

	panel.OnMessage(nil)
	assert.ErrorIs(t, bridge.Send([]byte("x")), ErrNoPeer)
}

func TestPipe_ClosedEnds(t *testing.T) {
	bridge, panel := Pipe(0)
	panel.OnMessage(func([]byte) {})

	require.NoError(t, panel.Close())
	assert.ErrorIs(t, bridge.Send([]byte("x")), ErrNoPeer)

	require.NoError(t, bridge.Close())
	assert.ErrorIs(t, bridge.Send([]byte("x")), ErrClosed)

	// Close is idempotent
	assert.NoError(t, bridge.Close())
}

func TestPipe_DropsWhenFull(t *testing.T) {
	bridge, panel := Pipe(1)
	defer func() { _ = bridge.Close() }()
	defer func() { _ = panel.Close() }()

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	panel.OnMessage(func([]byte) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
	})

	require.NoError(t, bridge.Send([]byte("first")))
	<-entered // handler is now blocked holding "first"

	require.NoError(t, bridge.Send([]byte("second")))
	assert.ErrorIs(t, bridge.Send([]byte("third")), ErrDropped)
	close(release)
}

func TestPipe_SendCopiesMessage(t *testing.T) {
	bridge, panel := Pipe(0)
	defer func() { _ = bridge.Close() }()
	defer func() { _ = panel.Close() }()

	var got collector
	panel.OnMessage(got.handle)

	buf := []byte("original")
	require.NoError(t, bridge.Send(buf))
	copy(buf, "mutated!")

	require.Eventually(t, func() bool { return len(got.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "original", got.snapshot()[0])
}
