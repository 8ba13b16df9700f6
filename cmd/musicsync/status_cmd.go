package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"musicsync/internal/library"
	"musicsync/internal/system"
)

type collectionStatus struct {
	Name      string                     `json:"name"`
	URLs      int                        `json:"urls"`
	Tracks    int                        `json:"tracks"`
	Bytes     uint64                     `json:"bytes"`
	FreeBytes uint64                     `json:"free_bytes"`
	ByState   map[library.SyncStatus]int `json:"by_status"`
}

// handleStatus prints per-collection track counts and on-disk size.
func handleStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	cfgPath, logLevel, logJSON := commonFlags(fs)
	colName := fs.String("collection", "", "limit to one collection")
	asJSON := fs.Bool("output-json", false, "machine readable output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := loadApp(*cfgPath, *logLevel, *logJSON)
	if err != nil {
		return err
	}

	cols := a.lib.Collections()
	if *colName != "" {
		col, err := a.collection(*colName)
		if err != nil {
			return err
		}
		cols = []*library.Collection{col}
	}

	var out []collectionStatus
	for _, col := range cols {
		out = append(out, summarize(col))
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, s := range out {
		fmt.Printf("%s: %d urls, %d tracks, %s on disk, %s free\n",
			s.Name, s.URLs, s.Tracks, humanize.Bytes(s.Bytes), humanize.Bytes(s.FreeBytes))
		for _, st := range library.Statuses {
			if n := s.ByState[st]; n > 0 {
				fmt.Printf("  %-28s %d\n", library.StatusMeta(st).Label, n)
			}
		}
	}
	return nil
}

func summarize(col *library.Collection) collectionStatus {
	s := collectionStatus{
		Name:    col.Name,
		URLs:    len(col.URLs),
		ByState: make(map[library.SyncStatus]int),
	}
	if free, err := system.AvailableSpace(col.FolderPath); err == nil {
		s.FreeBytes = free
	}
	for _, u := range col.URLs {
		for _, t := range u.Tracks {
			s.Tracks++
			s.ByState[t.Status]++
			if t.Filename == "" {
				continue
			}
			if fi, err := os.Stat(col.RealPath(u, t)); err == nil {
				s.Bytes += uint64(fi.Size())
			}
		}
	}
	return s
}
