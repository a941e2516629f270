// gqlbridge CLI - GraphQL devtools bridge server and terminal panel
package main

import "github.com/getmockd/gqlbridge/pkg/cli"

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	cli.Execute()
}
