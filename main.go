package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/hako/durafmt"

	"gamescale/scaler"
)

var baseDir string

func main() {
	mode := flag.String("mode", "game", "game, serve, term or report")
	addr := flag.String("addr", "", "bridge listen address (serve mode)")
	verbose := flag.Bool("debug", false, "verbose/debug logging")
	settingsFile := flag.String("settings", "", "settings file (default settings.json in the working directory)")
	lw := flag.Float64("lw", 0, "logical canvas width")
	lh := flag.Float64("lh", 0, "logical canvas height")
	flag.Parse()

	baseDir = os.Getenv("PWD")
	if baseDir == "" {
		var err error
		if baseDir, err = os.Getwd(); err != nil {
			log.Fatalf("get working directory: %v", err)
		}
	}
	setupLogging(*verbose, *mode == "term")
	defer func() {
		if r := recover(); r != nil {
			logError("panic: %v\n%s", r, debug.Stack())
		}
	}()

	path := *settingsFile
	if path == "" {
		path = filepath.Join(baseDir, "settings.json")
	}
	s := loadSettings(path)
	if *addr != "" {
		s.Addr = *addr
	}
	if *lw > 0 {
		s.LogicalWidth = *lw
	}
	if *lh > 0 {
		s.LogicalHeight = *lh
	}
	cfg, err := s.config()
	if err != nil {
		logError("settings: %v; using defaults", err)
		cfg = scaler.DefaultConfig()
		s.setConfig(cfg)
	}
	logDebug("logical %vx%v, scale %v..%v, debounce %s",
		cfg.LogicalSize.Width, cfg.LogicalSize.Height, cfg.MinScale, cfg.MaxScale,
		durafmt.Parse(cfg.Debounce).LimitFirstN(2))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *mode, path, s, cfg); err != nil && !errors.Is(err, context.Canceled) {
		logError("%s: %v", *mode, err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, mode, settingsPath string, s Settings, cfg scaler.Config) error {
	switch mode {
	case "game":
		return runGame(ctx, settingsPath, s, cfg)
	case "serve":
		return runServe(ctx, s, cfg)
	case "term":
		return runTerm(ctx, s, cfg)
	case "report":
		return runReport(os.Stdout, s, cfg)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}
