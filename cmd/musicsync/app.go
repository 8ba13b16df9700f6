package main

import (
	"flag"
	"fmt"
	"time"

	"musicsync/internal/config"
	"musicsync/internal/engine"
	"musicsync/internal/library"
	"musicsync/internal/lockfile"
	"musicsync/internal/logging"
	"musicsync/internal/metrics"
	"musicsync/internal/remote"
)

// app bundles everything a subcommand needs after config and library load.
type app struct {
	cfg *config.Config
	log *logging.Logger
	lib *library.Library
	met *metrics.Manager
}

// commonFlags registers the flags shared by every subcommand.
func commonFlags(fs *flag.FlagSet) (cfgPath, logLevel *string, jsonOut *bool) {
	cfgPath = fs.String("config", "", "Path to YAML config file")
	logLevel = fs.String("log-level", "", "log level (debug|info|warn|error)")
	jsonOut = fs.Bool("json", false, "json logs")
	return cfgPath, logLevel, jsonOut
}

func loadApp(cfgPath, logLevel string, jsonOut bool) (*app, error) {
	cfg, err := config.Load(resolveConfigPath(cfgPath))
	if err != nil {
		return nil, err
	}
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	if !jsonOut {
		jsonOut = cfg.Logging.Format == "json"
	}
	log := logging.New(level, jsonOut)

	lib, err := library.Read(cfg.Library.Path)
	if err != nil {
		return nil, fmt.Errorf("load library: %w", err)
	}

	var met *metrics.Manager
	if cfg.Metrics.PrometheusTextfile.Enabled {
		met = metrics.New(cfg.Metrics.PrometheusTextfile.Path)
	}
	return &app{cfg: cfg, log: log, lib: lib, met: met}, nil
}

// newEngine builds an engine for one collection pass. Each collection gets
// its own instance so retained fetch results never cross collections.
func (a *app) newEngine() *engine.Engine {
	client := remote.NewYtdlpClient()
	client.Path = a.cfg.Ytdlp.Path
	client.Timeout = time.Duration(a.cfg.Ytdlp.TimeoutSeconds) * time.Second
	client.Format = a.cfg.Ytdlp.Format
	client.ExtraArgs = a.cfg.Ytdlp.ExtraArgs

	eng := engine.New(client, a.log, a.met)
	eng.FilenameFormat = a.cfg.Defaults.FilenameFormat
	eng.URLNameFormat = a.cfg.Defaults.URLNameFormat
	eng.FileExtension = a.cfg.Defaults.FileExtension
	return eng
}

func (a *app) collection(name string) (*library.Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("--collection is required")
	}
	col := a.lib.CollectionByName(name)
	if col == nil {
		return nil, fmt.Errorf("no collection named %q", name)
	}
	return col, nil
}

// lockLibrary takes the exclusive library lock for a mutating command. The
// caller must call the returned release func before exiting.
func (a *app) lockLibrary() (func(), error) {
	l, err := lockfile.Acquire(a.cfg.Library.Path + ".lock")
	if err != nil {
		return nil, err
	}
	return func() {
		if rerr := l.Release(); rerr != nil {
			a.log.Warnf("release library lock: %v", rerr)
		}
	}, nil
}

// save persists the library and flushes metrics. Called even after a
// cancelled pass so partial progress survives.
func (a *app) save() error {
	if err := library.Write(a.cfg.Library.Path, a.lib); err != nil {
		return fmt.Errorf("save library: %w", err)
	}
	if err := a.met.Write(); err != nil {
		a.log.Warnf("write metrics: %v", err)
	}
	return nil
}
