// Package client implements a GraphQL client built from composable exchanges.
//
// Every operation a caller submits is pushed onto a single operation stream.
// The stream passes through each exchange in order; the last exchange is
// expected to produce results, which flow back through the chain and are routed
// to the caller that issued the operation.
//
// An exchange sees the operation stream as a channel and returns a result
// channel. It may observe, transform, filter or answer operations, and call
// Forward to hand the rest of the stream to the next exchange:
//
//	logExchange := func(in client.ExchangeInput) client.ExchangeIO {
//	    return func(ops <-chan *operation.Operation) <-chan *operation.Result {
//	        return in.Forward(ops)
//	    }
//	}
//
//	c := client.New(client.Options{
//	    Exchanges: []client.Exchange{logExchange, engine.Exchange()},
//	})
//	defer c.Close()
//
//	op, _ := c.CreateRequest(`{ ping }`, nil)
//	for res := range c.ExecuteQuery(ctx, op) {
//	    fmt.Println(res.Data)
//	}
//
// Result streams are lazy, finite and not restartable: a stream ends after a
// result with HasNext == false, when the caller's context is cancelled (the
// client then dispatches a teardown operation), or when the client closes.
package client
