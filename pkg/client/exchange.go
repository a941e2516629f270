package client

import (
	"log/slog"

	"github.com/getmockd/gqlbridge/pkg/logging"
	"github.com/getmockd/gqlbridge/pkg/operation"
)

// ExchangeIO transforms an operation stream into a result stream.
// Implementations must close the returned channel once ops is closed and all
// work started for it has finished.
type ExchangeIO func(ops <-chan *operation.Operation) <-chan *operation.Result

// ExchangeInput is what an exchange receives when the client is built.
type ExchangeInput struct {
	// Client is the client the exchange is installed in.
	Client *Client

	// Forward passes a stream to the next exchange in the chain.
	Forward ExchangeIO

	// Logger is the client's logger.
	Logger *slog.Logger
}

// Exchange builds one stage of the client's pipeline.
type Exchange func(in ExchangeInput) ExchangeIO

// Compose chains exchanges so that each one forwards to the next.
// The first exchange sees operations first and results last.
func Compose(exchanges ...Exchange) Exchange {
	return func(in ExchangeInput) ExchangeIO {
		forward := in.Forward
		for i := len(exchanges) - 1; i >= 0; i-- {
			forward = exchanges[i](ExchangeInput{
				Client:  in.Client,
				Forward: forward,
				Logger:  in.Logger,
			})
		}
		return forward
	}
}

// dropExchange terminates the chain. Operations that reach it were not
// handled by any exchange and produce no result.
func dropExchange(logger *slog.Logger) ExchangeIO {
	if logger == nil {
		logger = logging.Nop()
	}
	return func(ops <-chan *operation.Operation) <-chan *operation.Result {
		out := make(chan *operation.Result)
		go func() {
			defer close(out)
			for op := range ops {
				if op.Kind != operation.KindTeardown {
					logger.Debug("operation not handled by any exchange", "operation", op.String())
				}
			}
		}()
		return out
	}
}
