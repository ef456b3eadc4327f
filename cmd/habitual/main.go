/*
Command habitual suggests a new habit from a category the user has not
explored yet.

Usage:

	habitual serve                     run the HTTP service on :5000
	habitual recommend [habit...]      print one suggestion
	habitual catalog show|import|list  manage habit catalogs
	habitual stats                     summarize suggestion history

Configuration comes from habitual.yaml (or --config / $HABITUAL_CONFIG)
and HABITUAL_* environment variables.
*/
package main

import (
	"fmt"
	"os"

	"github.com/cognicore/habitual/internal/cli"
)

// Set via ldflags.
var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
