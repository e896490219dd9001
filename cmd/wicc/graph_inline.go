package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/polusai/wic/diag"
	"github.com/polusai/wic/graph"
	"gopkg.in/yaml.v3"
)

func runGraphInline(args []string) error {
	fs := flag.NewFlagSet("graph-inline", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: wicc graph-inline <rose-tree.yml>\n\nLoads a rose tree of compiled graphs from a YAML fixture and runs the\ncompiled-graph inliner, printing the flattened graph.\n")
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("a rose-tree fixture path is required")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("graph-inline: read %s: %w", fs.Arg(0), err)
	}
	var tree graph.RoseTree
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("graph-inline: parse %s: %w", fs.Arg(0), err)
	}

	diags := diag.NewCollector(nil)
	flattened := graph.InlineGraph(&tree, diags)

	out, err := yaml.Marshal(flattened.Graph)
	if err != nil {
		return fmt.Errorf("graph-inline: marshal result: %w", err)
	}
	fmt.Print(string(out))
	printWarnings(diags)
	return nil
}
