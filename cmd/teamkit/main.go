// Command teamkit is the teamkit CLI and HTTP server.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/teamkit/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		// Commands that print their own errors return an ExitError.
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
