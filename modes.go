package main

import (
	"context"
	"io"
	"runtime"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/language"

	"gamescale/bridge"
	"gamescale/profiles"
	"gamescale/scaler"
	"gamescale/termview"
)

func runServe(ctx context.Context, s Settings, cfg scaler.Config) error {
	srv, err := bridge.New(bridge.Options{
		Config:   cfg,
		ErrorLog: errorLogger,
		DebugLog: debugLogger,
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, s.Addr)
}

func runTerm(ctx context.Context, s Settings, cfg scaler.Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	p, err := termview.NewPreview(screen, cfg, s.CellWidth, s.CellHeight, scaler.WithLogger(debugLogger))
	if err != nil {
		return err
	}
	return p.Run(ctx)
}

// runReport prints the built-in device catalogue laid out with cfg.
func runReport(w io.Writer, s Settings, cfg scaler.Config) error {
	tag := language.English
	if s.Language != "" {
		t, err := language.Parse(s.Language)
		if err != nil {
			logError("language %q: %v", s.Language, err)
		} else {
			tag = t
		}
	}
	rows, err := profiles.Build(cfg, profiles.Default(), runtime.NumCPU())
	if err != nil {
		return err
	}
	return profiles.Format(w, cfg, rows, tag)
}
