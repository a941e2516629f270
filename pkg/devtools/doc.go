// Package devtools bridges a GraphQL client to a developer-tools panel.
//
// The bridge is installed as an exchange at the front of a client's pipeline.
// Every operation the client dispatches and every result it receives is
// classified into an Event, appended to the bridge's EventCache and relayed to
// the panel over a channel.Channel. The panel can also send a request message,
// which the bridge turns into a new operation on the same client; that
// operation and its result then show up in the event stream like any other.
//
// # Events
//
// An Event is one of three kinds, decided by Classify in a fixed order:
//
//  1. operation: the item is an Operation (or a raw object with an operationName)
//  2. error: the item carries a non-null error
//  3. response: anything else
//
// The event payload is a JSON snapshot taken at classification time, so cached
// and relayed events never share memory with the live client.
//
// # Modes
//
// The bridge is either active or inactive, decided once when the exchange is
// built. In production mode (GQLBRIDGE_ENV=production) NewExchange returns a
// pass-through exchange: no relay, no listener, no cache.
//
// # Usage
//
//	hub := channel.NewHub(channel.HubOptions{})
//	state := devtools.NewState()
//
//	c := client.New(client.Options{
//	    Exchanges: []client.Exchange{
//	        devtools.NewExchange(devtools.Options{Channel: hub, State: state}),
//	        engine.Exchange(),
//	    },
//	})
//
//	http.Handle("/__devtools", hub)
package devtools
