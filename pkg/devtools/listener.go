package devtools

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/getmockd/gqlbridge/pkg/logging"
	"github.com/getmockd/gqlbridge/pkg/operation"
)

// Executor is the part of a client the bridge needs to run panel requests.
type Executor interface {
	CreateRequest(query string, variables map[string]any) (*operation.Operation, error)
	ExecuteQuery(ctx context.Context, op *operation.Operation) <-chan *operation.Result
}

// devtoolsSource marks operations issued by the panel.
var devtoolsSource = map[string]any{"source": "Devtools"}

// Listener handles messages arriving from the panel.
type Listener struct {
	exec   Executor
	logger *slog.Logger
	tasks  sync.WaitGroup
}

// NewListener creates a listener that submits panel requests to exec.
func NewListener(exec Executor, logger *slog.Logger) *Listener {
	return &Listener{
		exec:   exec,
		logger: logging.Component(logger, "devtools.listener"),
	}
}

// OnMessage handles one raw panel message. It never blocks on request
// completion and ignores messages it cannot act on.
func (l *Listener) OnMessage(raw []byte) {
	msg, err := DecodeMessage(raw)
	switch {
	case errors.Is(err, ErrUnknownMessage):
		l.logger.Debug("ignoring panel message", "error", err)
		return
	case err != nil:
		l.logger.Warn("ignoring malformed panel message", "error", err)
		return
	}

	switch msg.Type {
	case MessageInit:
		l.logger.Info("panel attached", "tabId", msg.TabID)
	case MessageRequest:
		l.submit(msg)
	}
}

// Wait blocks until every request submitted so far has completed.
func (l *Listener) Wait() {
	l.tasks.Wait()
}

// submit starts a panel request. The result stream is drained and discarded
// by a detached task; results reach the panel through the pipeline taps.
// Panel requests cannot be cancelled, so the task runs on a background context.
func (l *Listener) submit(msg Message) {
	if l.exec == nil {
		l.logger.Warn("no client attached, dropping panel request")
		return
	}

	op, err := l.exec.CreateRequest(msg.Query, msg.Vars)
	if err != nil {
		l.logger.Warn("invalid panel request", "error", err)
		return
	}
	op = op.WithContext("devtools", devtoolsSource)

	results := l.exec.ExecuteQuery(context.Background(), op)

	l.tasks.Add(1)
	go func() {
		defer l.tasks.Done()
		for range results {
		}
		l.logger.Debug("panel request completed", "operation", op.String())
	}()
}
