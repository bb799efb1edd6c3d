//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"

	"gamescale/scaler"
)

func prefersDark(theme string) bool { return theme != "light" }

// saveStateDialog has no file system to write to; the state goes to the
// browser console.
func saveStateDialog(st scaler.State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
