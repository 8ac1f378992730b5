// Command ntgctl is the debug and maintenance CLI for nexttogo.
//
// Usage:
//
//	ntgctl                  Show help
//	ntgctl races            Fetch once and print the next-to-go list
//	ntgctl prefs            Show or change the stored category
//	ntgctl events           JSONL event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `ntgctl: nexttogo debug & maintenance CLI

Usage:
  ntgctl <command> [flags]

Commands:
  races       Fetch once and print the next races (requires NEDS_API_URL)
  prefs       Show or set the stored category
  events      JSONL event log viewer

Environment:
  NEDS_API_URL    Race feed base URL (also read from .env)
  NEXTTOGO_HOME   Data directory (default: ~/.nexttogo)

Run 'ntgctl <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "races":
		runRaces()
	case "prefs":
		runPrefs()
	case "events":
		runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "ntgctl: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
