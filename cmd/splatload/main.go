// Command splatload is a demonstration host for the splatastic scene
// loader: it drives pkg/splatastic's Runtime (open, poll status and
// progress, resolve, copy payload, close) against one or more PLY files
// and prints the parsed metadata.
package main

import (
	"fmt"
	"os"

	"github.com/kecho/splatastic/cmd/splatload/commands"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
