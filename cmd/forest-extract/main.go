/*
PURPOSE:
  Entry point for the Forest Extract application.
  Initializes the CLI root command and executes it.

REQUIREMENTS:
  User-specified:
  - Must serve as the single binary entry point.
  - Exit non-zero (with usage) when 'run' does not get exactly one suite file.

ARCHITECTURE INTEGRATION:
  - Calls: internal/cli.Execute()

ERROR HANDLING:
  - Explicit error check on Execute(); exit code 1 on failure.

IMPLEMENTATION RULES:
  - Critical: Keep main() minimal. All logic belongs in internal/ packages.

USAGE:
  go build -o forest-extract ./cmd/forest-extract
  ./forest-extract run suites/royalties.json
*/

package main

import (
	"fmt"
	"os"

	"github.com/daryltucker/forest-extract/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
