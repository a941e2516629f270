package devtools

import (
	"context"
	"sync"
	"time"

	"github.com/getmockd/gqlbridge/pkg/channel"
	"github.com/getmockd/gqlbridge/pkg/client"
	"github.com/getmockd/gqlbridge/pkg/operation"
)

// recordingChannel captures everything sent through it.
type recordingChannel struct {
	mu       sync.Mutex
	sent     [][]byte
	err      error
	handler  channel.Handler
	handlers int
}

func (c *recordingChannel) Send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, append([]byte(nil), msg...))
	return c.err
}

func (c *recordingChannel) OnMessage(h channel.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
	c.handlers++
}

func (c *recordingChannel) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.sent))
	for i, m := range c.sent {
		out[i] = string(m)
	}
	return out
}

// deliver simulates an inbound panel message.
func (c *recordingChannel) deliver(msg string) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	if h != nil {
		h([]byte(msg))
	}
}

// scriptedEngine is a terminal exchange answering operations with answer,
// after an optional per-operation delay.
func scriptedEngine(answer func(op *operation.Operation) *operation.Result, delay func(op *operation.Operation) time.Duration) client.Exchange {
	return func(in client.ExchangeInput) client.ExchangeIO {
		return func(ops <-chan *operation.Operation) <-chan *operation.Result {
			out := make(chan *operation.Result)
			go func() {
				defer close(out)
				var wg sync.WaitGroup
				for op := range ops {
					if op.Kind == operation.KindTeardown {
						continue
					}
					wg.Add(1)
					go func(op *operation.Operation) {
						defer wg.Done()
						if delay != nil {
							time.Sleep(delay(op))
						}
						res := answer(op)
						res.Operation = op
						out <- res
					}(op)
				}
				wg.Wait()
			}()
			return out
		}
	}
}

// fakeExecutor records submitted operations and answers each with one result.
type fakeExecutor struct {
	mu  sync.Mutex
	ops []*operation.Operation
}

func (f *fakeExecutor) CreateRequest(query string, variables map[string]any) (*operation.Operation, error) {
	return operation.New(query, variables)
}

func (f *fakeExecutor) ExecuteQuery(_ context.Context, op *operation.Operation) <-chan *operation.Result {
	f.mu.Lock()
	f.ops = append(f.ops, op)
	f.mu.Unlock()

	out := make(chan *operation.Result, 1)
	out <- &operation.Result{Operation: op, Data: map[string]any{"ping": "pong"}}
	close(out)
	return out
}

func (f *fakeExecutor) submitted() []*operation.Operation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*operation.Operation(nil), f.ops...)
}
