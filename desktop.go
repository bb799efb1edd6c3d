//go:build !js

package main

import (
	"encoding/json"
	"os"

	"github.com/sqweek/dialog"
	dark "github.com/thiagokokada/dark-mode-go"

	"gamescale/scaler"
)

// prefersDark honours an explicit "dark" or "light" theme and otherwise
// follows the desktop.
func prefersDark(theme string) bool {
	switch theme {
	case "dark":
		return true
	case "light":
		return false
	}
	isDark, err := dark.IsDarkMode()
	if err != nil {
		logDebug("dark mode: %v", err)
		return true
	}
	return isDark
}

func saveStateDialog(st scaler.State) error {
	filename, err := dialog.File().Filter("JSON files", "json").SetStartFile("layout.json").Title("Save Layout State").Save()
	if err != nil {
		if err == dialog.ErrCancelled {
			return nil
		}
		return err
	}
	if filename == "" {
		return nil
	}
	return writeState(filename, st)
}

func writeState(path string, st scaler.State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
