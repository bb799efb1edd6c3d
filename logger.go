package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

var (
	errorLogger *log.Logger
	debugLogger *log.Logger
)

// setupLogging writes errors to a timestamped file under logs/errors and,
// unless quiet, to stdout. The terminal preview owns the screen, so it runs
// quiet.
func setupLogging(debug, quiet bool) {
	var console io.Writer = os.Stdout
	if quiet {
		console = io.Discard
	}
	errorLogger = log.New(logWriter("error", console), "", log.LstdFlags)
	log.SetOutput(errorLogger.Writer())
	setDebugLogging(debug, console)
}

func setDebugLogging(enabled bool, console io.Writer) {
	if enabled {
		debugLogger = log.New(logWriter("debug", console), "", log.LstdFlags)
	} else {
		debugLogger = nil
	}
}

func logWriter(kind string, console io.Writer) io.Writer {
	logDir := filepath.Join(baseDir, "logs", "errors")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Printf("could not create log directory: %v\n", err)
		return console
	}
	ts := time.Now().Format("20060102-150405")
	f, err := os.Create(filepath.Join(logDir, fmt.Sprintf("%s-%s.log", kind, ts)))
	if err != nil {
		return console
	}
	return io.MultiWriter(console, f)
}

func logError(format string, v ...interface{}) {
	if errorLogger != nil {
		errorLogger.Printf(format, v...)
	}
}

func logDebug(format string, v ...interface{}) {
	if debugLogger != nil {
		debugLogger.Printf(format, v...)
	}
}
