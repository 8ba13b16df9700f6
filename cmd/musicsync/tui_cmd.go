package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"musicsync/internal/engine"
	"musicsync/internal/tui"
)

// handleTUI refreshes one collection and opens the interactive review
// screen over its action table.
func handleTUI(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	cfgPath, logLevel, jsonOut := commonFlags(fs)
	colName := fs.String("collection", "", "collection to review")
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

	// The review screen reuses this engine so fetch results retained by
	// the update pass feed the following sync pass.
	eng := a.newEngine()
	if !*skipCheck {
		opts := engine.Options{
			Interrupted: func() bool { return ctx.Err() != nil },
			Progress: func(frac float64, text string) {
				fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", frac*100, text)
			},
		}
		if err := eng.UpdateSyncStatus(ctx, col, opts); err != nil {
			serr := a.save()
			return errors.Join(err, serr)
		}
	}

	p := tea.NewProgram(tui.New(eng, col), tea.WithAltScreen())
	final, runErr := p.Run()
	if runErr == nil {
		// A sync pass that failed inside the review screen surfaces
		// through the final model, not through Run.
		if m, ok := final.(interface{ Err() error }); ok {
			runErr = m.Err()
		}
	}

	if err := a.save(); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}
