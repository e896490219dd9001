// Command wicc compiles and inlines hierarchical workflow descriptions.
package main

import (
	"fmt"
	"os"
)

var commands = map[string]func([]string) error{
	"compile":      runCompile,
	"inline":       runInline,
	"graph-inline": runGraphInline,
}

func usage() {
	fmt.Fprintf(os.Stderr, `wicc - workflow compiler front end

Usage:
  wicc <command> [options]

Commands:
  compile        Resolve, merge, and project a workflow document into a Forest
  inline         Discover or splice structurally inline-eligible subworkflows
  graph-inline   Run the compiled-graph inliner over a rose-tree fixture

Run 'wicc <command> -h' for command-specific help.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		usage()
		os.Exit(0)
	}

	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}

	if err := fn(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
