// Command gateway runs the Codemode execution core as a standalone MCP
// server: connect configured backend servers, then serve the
// codemode_search/codemode_execute tool pair over stdio or streamable
// HTTP.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
