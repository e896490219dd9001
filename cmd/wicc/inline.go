package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/polusai/wic/catalog"
	"github.com/polusai/wic/compiler"
	"github.com/polusai/wic/diag"
	"github.com/polusai/wic/document"
	"github.com/polusai/wic/inline"
	"github.com/polusai/wic/validate"
)

func runInline(args []string) error {
	fs := flag.NewFlagSet("inline", flag.ContinueOnError)
	catalogPath := fs.String("catalog", "", "catalog index YAML file (required)")
	path := fs.String("path", "", "comma-separated namespace path to splice; discovers eligible paths if empty")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: wicc inline <namespace> <stem> --catalog <index.yml> [--path a,b,c]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("namespace and stem are required")
	}
	if *catalogPath == "" {
		return fmt.Errorf("--catalog is required")
	}

	ctx := context.Background()
	cat, err := catalog.NewFileCatalog(ctx, *catalogPath)
	if err != nil {
		return err
	}

	root := document.StepId{Namespace: fs.Arg(0), Stem: fs.Arg(1)}
	f, diags, err := compiler.Compile(ctx, root, cat, compiler.Options{Validator: validate.StructuralValidator{}})
	if err != nil {
		return err
	}

	if *path == "" {
		for _, p := range inline.InlineablePaths(root.Stem, f.Document) {
			fmt.Println(strings.Join(p, "/"))
		}
		return nil
	}

	spliced, arity, err := inline.InlineAt(root.Stem, f.Document, strings.Split(*path, ","), diags)
	if err != nil {
		return err
	}
	fmt.Printf("arity=%d\n", arity)
	for _, step := range spliced.Steps {
		fmt.Println(step.Key)
	}
	printWarnings(diags)
	return nil
}

func printWarnings(diags *diag.Collector) {
	for _, w := range diags.Warnings() {
		fmt.Printf("warning: %s\n", w)
	}
}
