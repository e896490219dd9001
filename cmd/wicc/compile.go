package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/polusai/wic/catalog"
	"github.com/polusai/wic/compiler"
	"github.com/polusai/wic/document"
	"github.com/polusai/wic/forest"
	"github.com/polusai/wic/ids"
	"github.com/polusai/wic/validate"
)

func runCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	catalogPath := fs.String("catalog", "", "catalog index YAML file (required)")
	skipValidate := fs.Bool("skip-validation", false, "skip structural validation")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: wicc compile <namespace> <stem> --catalog <index.yml>\n\nOptions:\n")
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
	opts := compiler.Options{}
	if !*skipValidate {
		opts.Validator = validate.StructuralValidator{}
	}

	f, diags, err := compiler.Compile(ctx, root, cat, opts)
	if err != nil {
		return err
	}

	printForestStepNames(root.Stem, f)
	printWarnings(diags)
	return nil
}

func printForestStepNames(stem string, f *forest.Forest) {
	for i, step := range f.Document.Steps {
		fmt.Println(ids.StepName(stem, i, step.Key))
	}
	for _, c := range f.Children {
		printForestStepNames(c.Id.Stem, c.Forest)
	}
}
