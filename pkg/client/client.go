package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/getmockd/gqlbridge/pkg/logging"
	"github.com/getmockd/gqlbridge/pkg/operation"
)

// Errors returned by the client.
var (
	ErrClientClosed = errors.New("client closed")
	ErrNoResult     = errors.New("operation produced no result")
)

// Options configures a Client.
type Options struct {
	// Exchanges are composed in order; the last one should answer operations.
	Exchanges []Exchange

	// Logger receives diagnostic output. Defaults to a no-op logger.
	Logger *slog.Logger
}

// Client dispatches operations through its exchange pipeline and routes
// results back to the callers that issued them.
type Client struct {
	logger *slog.Logger
	ops    chan *operation.Operation

	mu   sync.Mutex
	subs map[*operation.Operation]*subscription

	sendMu  sync.RWMutex // coordinates dispatch with Close
	closed  bool
	done    chan struct{}
	routed  chan struct{}
	closeMu sync.Once
}

// New builds a client and starts its pipeline.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	c := &Client{
		logger: logger,
		ops:    make(chan *operation.Operation),
		subs:   make(map[*operation.Operation]*subscription),
		done:   make(chan struct{}),
		routed: make(chan struct{}),
	}

	io := Compose(opts.Exchanges...)(ExchangeInput{
		Client:  c,
		Forward: dropExchange(logger),
		Logger:  logger,
	})
	go c.route(io(c.ops))

	return c
}

// CreateRequest builds an operation from query text and variables.
func (c *Client) CreateRequest(query string, variables map[string]any) (*operation.Operation, error) {
	return operation.New(query, variables)
}

// ExecuteQuery dispatches op and returns its result stream.
// The stream closes after the final result, when ctx is cancelled, or when the
// client closes. Cancelling ctx before the final result dispatches a teardown.
// Results are queued per stream, so a slow reader only delays itself.
func (c *Client) ExecuteQuery(ctx context.Context, op *operation.Operation) <-chan *operation.Result {
	sub := newSubscription(ctx, op)

	c.mu.Lock()
	if c.isClosed() {
		c.mu.Unlock()
		sub.close()
		return sub.out
	}
	c.subs[op] = sub
	c.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			c.finish(sub, true)
		case <-sub.done:
		}
	}()

	if !c.dispatch(op) {
		c.finish(sub, false)
	}
	return sub.out
}

// Query executes query and waits for its final result.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any) (*operation.Result, error) {
	op, err := c.CreateRequest(query, variables)
	if err != nil {
		return nil, err
	}

	var last *operation.Result
	for res := range c.ExecuteQuery(ctx, op) {
		last = res
	}
	if last == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.isClosed() {
			return nil, ErrClientClosed
		}
		return nil, ErrNoResult
	}
	return last, nil
}

// Close stops the pipeline. Open result streams are closed once the exchanges
// have drained.
func (c *Client) Close() error {
	c.closeMu.Do(func() {
		close(c.done)
		c.sendMu.Lock()
		c.closed = true
		close(c.ops)
		c.sendMu.Unlock()
	})
	<-c.routed
	return nil
}

func (c *Client) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// dispatch pushes op onto the operation stream.
func (c *Client) dispatch(op *operation.Operation) bool {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.ops <- op:
		return true
	case <-c.done:
		return false
	}
}

// route delivers results to their subscriptions until the pipeline ends.
func (c *Client) route(results <-chan *operation.Result) {
	defer close(c.routed)

	for res := range results {
		if res == nil || res.Operation == nil {
			continue
		}

		c.mu.Lock()
		sub := c.subs[res.Operation]
		c.mu.Unlock()
		if sub == nil {
			c.logger.Debug("dropping result for inactive operation", "operation", res.Operation.String())
			continue
		}

		if !sub.deliver(res) {
			continue
		}
		if !res.HasNext {
			c.finish(sub, false)
		}
	}

	c.mu.Lock()
	remaining := make([]*subscription, 0, len(c.subs))
	for _, sub := range c.subs {
		remaining = append(remaining, sub)
	}
	c.subs = make(map[*operation.Operation]*subscription)
	c.mu.Unlock()

	for _, sub := range remaining {
		sub.close()
	}
}

// finish ends a subscription. With teardown set, a teardown operation is
// dispatched if the subscription was still open.
func (c *Client) finish(sub *subscription, teardown bool) {
	c.mu.Lock()
	if c.subs[sub.op] == sub {
		delete(c.subs, sub.op)
	}
	c.mu.Unlock()

	if sub.close() && teardown {
		go c.dispatch(sub.op.Teardown())
	}
}

// subscription buffers results for one caller. pump moves queued results to
// out until the subscription ends and the queue is empty, or ctx is done.
type subscription struct {
	op     *operation.Operation
	ctx    context.Context
	out    chan *operation.Result
	done   chan struct{}
	notify chan struct{}

	mu     sync.Mutex
	queue  []*operation.Result
	closed bool
}

func newSubscription(ctx context.Context, op *operation.Operation) *subscription {
	s := &subscription{
		op:     op,
		ctx:    ctx,
		out:    make(chan *operation.Result),
		done:   make(chan struct{}),
		notify: make(chan struct{}, 1),
	}
	go s.pump()
	return s
}

// deliver queues res and never blocks on the reader.
func (s *subscription) deliver(res *operation.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.ctx.Err() != nil {
		return false
	}
	s.queue = append(s.queue, res)
	s.wake()
	return true
}

func (s *subscription) close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	close(s.done)
	s.wake()
	return true
}

func (s *subscription) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscription) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			res := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			s.mu.Unlock()

			select {
			case s.out <- res:
			case <-s.ctx.Done():
				return
			}
			continue
		}
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}

		select {
		case <-s.notify:
		case <-s.ctx.Done():
			return
		}
	}
}
