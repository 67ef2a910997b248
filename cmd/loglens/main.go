// loglens decodes log lines into structured values.
//
// Each line is tried as a shell command, JSON, a literal, keyword arguments
// and key/value segments, falling back to raw text. Streamed generation logs
// can be reconstructed into complete values first.
package main

import (
	"os"

	"github.com/ccollicutt/loglens/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
