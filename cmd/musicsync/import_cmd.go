package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"musicsync/internal/batch"
)

// handleImport bulk-adds URLs from a YAML import file to a collection.
func handleImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	cfgPath, logLevel, jsonOut := commonFlags(fs)
	colName := fs.String("collection", "", "target collection (overrides the file's)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("import requires exactly one FILE argument")
	}
	a, err := loadApp(*cfgPath, *logLevel, *jsonOut)
	if err != nil {
		return err
	}

	unlock, err := a.lockLibrary()
	if err != nil {
		return err
	}
	defer unlock()

	f, err := batch.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	name := f.Collection
	if *colName != "" {
		name = *colName
	}
	col, err := a.collection(name)
	if err != nil {
		return err
	}

	added := f.Apply(col)
	if err := a.save(); err != nil {
		return err
	}
	fmt.Printf("added %d of %d urls to %s\n", added, len(f.URLs), col.Name)
	return nil
}
