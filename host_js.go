//go:build js && wasm

package main

import "gamescale/platform"

// browserHost reads the page's viewport directly; Ebiten's Layout adds
// nothing the browser events don't already report.
type browserHost struct {
	*platform.Browser
}

func (browserHost) Layout(int, int) {}
func (browserHost) Update()         {}

func newGameHost() gameHost { return browserHost{platform.NewBrowser()} }
