package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"musicsync/internal/config"
	"musicsync/internal/engine"
	uerrors "musicsync/internal/errors"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, engine.ErrInterrupted) {
			fmt.Fprintln(os.Stderr, "cancelled; partial progress saved")
			return
		}
		fmt.Fprintln(os.Stderr, "error:", uerrors.Friendly(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return errors.New("no command provided")
	}

	switch args[0] {
	case "config":
		return handleConfig(ctx, args[1:])
	case "status":
		return handleStatus(ctx, args[1:])
	case "check":
		return handleCheck(ctx, args[1:])
	case "sync":
		return handleSync(ctx, args[1:])
	case "tui":
		return handleTUI(ctx, args[1:])
	case "import":
		return handleImport(ctx, args[1:])
	case "version":
		fmt.Println(version)
		return nil
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func usage() {
	fmt.Println(strings.TrimSpace(`musicsync - keep local music folders in step with remote playlists and bookmarks

Usage:
  musicsync <command> [flags]

Commands:
  config validate   Validate a YAML config file
  config print      Print the loaded config as JSON
  status            Show per-collection track counts and disk usage
  check             Refresh sync status for a collection (or --all)
  sync              Apply the default sync actions for a collection
  tui               Review the action table interactively, then sync
  import            Add URLs from a YAML import file to a collection
  version           Print version
  help              Show this help

Flags:
  --config PATH     Path to YAML config file (or MUSICSYNC_CONFIG; default: ~/.config/musicsync/config.yml)
  --log-level L     Log level: debug|info|warn|error (per command)
  --json            JSON log output (per command)
`))
}

func handleConfig(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("config requires a subcommand: validate|print")
	}
	sub := args[0]
	fs := flag.NewFlagSet("config "+sub, flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config file")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	cfg, err := config.Load(resolveConfigPath(*cfgPath))
	if err != nil {
		return err
	}
	switch sub {
	case "validate":
		fmt.Println("config OK")
		return nil
	case "print":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		return fmt.Errorf("unknown config subcommand: %s", sub)
	}
}

func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return config.DefaultPath()
}
