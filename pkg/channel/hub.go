package channel

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/getmockd/gqlbridge/pkg/logging"
)

// HubOptions configures a Hub.
type HubOptions struct {
	// Outbox is the per-panel send queue length. Defaults to DefaultOutbox.
	Outbox int

	// ReadLimit is the maximum inbound message size in bytes. Defaults to 1MB.
	ReadLimit int64

	// WriteTimeout bounds a single frame write. Defaults to 5s.
	WriteTimeout time.Duration

	// OriginPatterns lists allowed Origin host patterns for the upgrade.
	// When empty, origin verification is skipped.
	OriginPatterns []string

	// Logger receives connection diagnostics.
	Logger *slog.Logger
}

// Hub is a Channel backed by websocket connections. Every attached panel
// receives every sent message; inbound messages from any panel go to the
// registered handler.
type Hub struct {
	opts    HubOptions
	logger  *slog.Logger
	handler atomic.Pointer[Handler]

	mu     sync.RWMutex
	peers  map[string]*peer
	closed bool
}

type peer struct {
	id     string
	conn   *ws.Conn
	outbox chan []byte
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a Hub. Mount it on an http.ServeMux to accept panels.
func NewHub(opts HubOptions) *Hub {
	if opts.Outbox <= 0 {
		opts.Outbox = DefaultOutbox
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = 1 << 20
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &Hub{
		opts:   opts,
		logger: logging.Component(opts.Logger, "channel.hub"),
		peers:  make(map[string]*peer),
	}
}

// Send implements Channel by broadcasting msg to every attached panel.
func (h *Hub) Send(msg []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrClosed
	}
	if len(h.peers) == 0 {
		return ErrNoPeer
	}

	var dropped bool
	for _, p := range h.peers {
		select {
		case p.outbox <- bytes.Clone(msg):
		default:
			dropped = true
			h.logger.Debug("panel outbox full, dropping message", "peer", p.id)
		}
	}
	if dropped {
		return ErrDropped
	}
	return nil
}

// OnMessage implements Channel.
func (h *Hub) OnMessage(handler Handler) {
	if handler == nil {
		h.handler.Store(nil)
		return
	}
	h.handler.Store(&handler)
}

// PeerCount returns the number of attached panels.
func (h *Hub) PeerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Close disconnects every panel and rejects further connections.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	peers := make([]*peer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.peers = make(map[string]*peer)
	h.mu.Unlock()

	// Each panel's serving goroutine closes its connection once cancelled.
	for _, p := range peers {
		p.cancel()
	}
	return nil
}

// ServeHTTP upgrades the request and serves a panel until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Accept(w, r, &ws.AcceptOptions{
		InsecureSkipVerify: len(h.opts.OriginPatterns) == 0,
		OriginPatterns:     h.opts.OriginPatterns,
	})
	if err != nil {
		h.logger.Warn("panel upgrade failed", "error", err, "remoteAddr", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(h.opts.ReadLimit)

	ctx, cancel := context.WithCancel(context.Background())
	p := &peer{
		id:     uuid.NewString(),
		conn:   conn,
		outbox: make(chan []byte, h.opts.Outbox),
		ctx:    ctx,
		cancel: cancel,
	}

	if !h.attach(p) {
		cancel()
		_ = conn.Close(ws.StatusTryAgainLater, "bridge closed")
		return
	}
	h.logger.Info("panel attached", "peer", p.id, "remoteAddr", r.RemoteAddr)

	go h.writeLoop(p)
	h.readLoop(p)

	h.detach(p)
	cancel()
	_ = conn.Close(ws.StatusNormalClosure, "")
	h.logger.Info("panel detached", "peer", p.id)
}

func (h *Hub) attach(p *peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.peers[p.id] = p
	return true
}

func (h *Hub) detach(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers, p.id)
}

func (h *Hub) readLoop(p *peer) {
	for {
		typ, data, err := p.conn.Read(p.ctx)
		if err != nil {
			if status := ws.CloseStatus(err); status != ws.StatusNormalClosure && status != ws.StatusGoingAway &&
				!errors.Is(err, context.Canceled) {
				h.logger.Debug("panel read ended", "peer", p.id, "error", err)
			}
			return
		}
		if typ != ws.MessageText {
			h.logger.Debug("ignoring binary frame", "peer", p.id)
			continue
		}
		if handler := h.handler.Load(); handler != nil {
			(*handler)(data)
		}
	}
}

func (h *Hub) writeLoop(p *peer) {
	for {
		select {
		case <-p.ctx.Done():
			return
		case msg := <-p.outbox:
			ctx, cancel := context.WithTimeout(p.ctx, h.opts.WriteTimeout)
			err := p.conn.Write(ctx, ws.MessageText, msg)
			cancel()
			if err != nil {
				h.logger.Debug("panel write failed", "peer", p.id, "error", err)
				p.cancel()
				return
			}
		}
	}
}

var _ Channel = (*Hub)(nil)
