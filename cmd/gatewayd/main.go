// Command gatewayd runs the storage gateway's core HTTP API: mount
// resolution, driver dispatch, uploads, links, and shares.
package main

import (
	"fmt"
	"os"

	"github.com/cloudcrate/filegate/cmd/gatewayd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
