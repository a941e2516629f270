// Package cli implements the gqlbridge command-line interface.
//
// Commands:
//
//	gqlbridge serve    Host a GraphQL endpoint with the devtools bridge installed
//	gqlbridge panel    Attach a terminal panel to a running bridge
//	gqlbridge version  Show version information
package cli
