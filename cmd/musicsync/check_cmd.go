package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"musicsync/internal/engine"
	"musicsync/internal/library"
	"musicsync/internal/system"
)

// handleCheck refreshes the sync status of one collection, or of every
// collection with --all. Partial progress is saved even when interrupted.
func handleCheck(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	cfgPath, logLevel, jsonOut := commonFlags(fs)
	colName := fs.String("collection", "", "collection to check")
	all := fs.Bool("all", false, "check every collection")
	deleteFiles := fs.Bool("delete-files", false, "delete local files of bookmark-removed URLs")
	parallel := fs.Int("parallel", 2, "collections checked at once with --all")
	if err := fs.Parse(args); err != nil {
		return err
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

	start := time.Now()
	var runErr error
	if *all {
		runErr = checkAll(ctx, a, *deleteFiles, *parallel)
	} else {
		var col *library.Collection
		if col, err = a.collection(*colName); err != nil {
			return err
		}
		runErr = checkOne(ctx, a, col, *deleteFiles, true)
	}
	a.met.ObservePassSeconds(time.Since(start))

	if err := a.save(); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

func checkOne(ctx context.Context, a *app, col *library.Collection, deleteFiles, progress bool) error {
	eng := a.newEngine()
	opts := engine.Options{
		DeleteFiles: deleteFiles,
		Interrupted: func() bool { return ctx.Err() != nil },
	}
	if progress {
		opts.Progress = func(frac float64, text string) {
			fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", frac*100, text)
		}
	}
	return eng.UpdateSyncStatus(ctx, col, opts)
}

// checkAll runs the per-collection passes concurrently. Each collection gets
// its own engine, so the only shared state is the metrics manager.
func checkAll(ctx context.Context, a *app, deleteFiles bool, parallel int) error {
	if parallel < 1 {
		parallel = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for _, col := range a.lib.Collections() {
		col := col
		g.Go(func() error {
			if err := checkOne(gctx, a, col, deleteFiles, false); err != nil {
				return fmt.Errorf("collection %s: %w", col.Name, err)
			}
			a.log.Infof("collection %s checked", col.Name)
			return nil
		})
	}
	return g.Wait()
}

// handleSync refreshes a collection and then applies its default sync
// actions non-interactively.
func handleSync(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)
	cfgPath, logLevel, jsonOut := commonFlags(fs)
	colName := fs.String("collection", "", "collection to sync")
	skipCheck := fs.Bool("skip-check", false, "reuse the stored sync status instead of refreshing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := loadApp(*cfgPath, *logLevel, *jsonOut)
	if err != nil {
		return err
	}
	col, err := a.collection(*colName)
	if err != nil {
		return err
	}
	unlock, err := a.lockLibrary()
	if err != nil {
		return err
	}
	defer unlock()

	if low, lerr := system.LowSpace(col.FolderPath, 90); lerr == nil && low {
		a.log.Warnf("filesystem holding %s is over 90%% full", col.FolderPath)
	}

	eng := a.newEngine()
	opts := engine.Options{
		Interrupted: func() bool { return ctx.Err() != nil },
		Progress: func(frac float64, text string) {
			fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", frac*100, text)
		},
	}

	start := time.Now()
	runErr := func() error {
		if !*skipCheck {
			if err := eng.UpdateSyncStatus(ctx, col, opts); err != nil {
				return err
			}
		}
		return eng.Sync(ctx, col, engine.BuildActionTable(col), opts)
	}()
	a.met.ObservePassSeconds(time.Since(start))

	if err := a.save(); err != nil {
		return errors.Join(runErr, err)
	}

	var partial *engine.PartialError
	if errors.As(runErr, &partial) {
		for _, e := range partial.Errors {
			a.log.Warnf("%v", e)
		}
		return fmt.Errorf("%d items failed", len(partial.Errors))
	}
	return runErr
}
