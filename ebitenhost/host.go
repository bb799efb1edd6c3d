// Package ebitenhost feeds a scaler from an Ebiten game loop. Ebiten has no
// resize callbacks, so the host is driven from the game's Layout and Update.
package ebitenhost

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"gamescale/scaler"
)

// Host implements scaler.Platform for Ebiten. Ebiten exposes neither a
// visual viewport nor safe-area insets; both report unavailable.
type Host struct {
	mu        sync.Mutex
	width     int
	height    int
	dpr       float64
	deviceDPR func() float64

	watchers scaler.Watchers
}

// New creates a host. The size stays zero until the first Layout call.
func New() *Host {
	return newHost(monitorScale)
}

func newHost(deviceDPR func() float64) *Host {
	return &Host{
		deviceDPR: deviceDPR,
		dpr:       deviceDPR(),
	}
}

func monitorScale() float64 {
	if m := ebiten.Monitor(); m != nil {
		if f := m.DeviceScaleFactor(); f > 0 {
			return f
		}
	}
	return 1
}

func (h *Host) WindowSize() scaler.Size {
	h.mu.Lock()
	defer h.mu.Unlock()
	return scaler.Size{Width: float64(h.width), Height: float64(h.height)}
}

func (h *Host) VisualViewport() (scaler.Size, bool)   { return scaler.Size{}, false }
func (h *Host) SafeAreaInsets() (scaler.Insets, bool) { return scaler.Insets{}, false }

func (h *Host) DevicePixelRatio() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dpr
}

func (h *Host) Watch(fn func(scaler.Event)) func() { return h.watchers.Add(fn) }

// Layout records the outside size Ebiten passes to Game.Layout. It raises
// a resize when the size changed and an orientation change when the
// landscape/portrait state flipped.
func (h *Host) Layout(outsideWidth, outsideHeight int) {
	h.mu.Lock()
	if outsideWidth == h.width && outsideHeight == h.height {
		h.mu.Unlock()
		return
	}
	wasLandscape := h.width > h.height
	first := h.width == 0 && h.height == 0
	h.width, h.height = outsideWidth, outsideHeight
	flipped := !first && wasLandscape != (outsideWidth > outsideHeight)
	h.mu.Unlock()

	h.watchers.Emit(scaler.EventResize)
	if flipped {
		h.watchers.Emit(scaler.EventOrientation)
	}
}

// Update polls the device scale factor, which changes when the window moves
// between monitors. Call it once per tick from Game.Update.
func (h *Host) Update() {
	dpr := h.deviceDPR()
	h.mu.Lock()
	if dpr == h.dpr {
		h.mu.Unlock()
		return
	}
	h.dpr = dpr
	h.mu.Unlock()
	h.watchers.Emit(scaler.EventResize)
}

// DrawOptions returns image options that place a logical-size image on the
// screen according to st.
func DrawOptions(st scaler.State, filter ebiten.Filter) *ebiten.DrawImageOptions {
	op := &ebiten.DrawImageOptions{Filter: filter, DisableMipmaps: true}
	op.GeoM.Scale(st.Scale, st.Scale)
	op.GeoM.Translate(st.Offset.X, st.Offset.Y)
	return op
}

// CursorInGame returns the pointer position in logical canvas space and
// whether it is over the canvas. The first touch wins over the mouse.
func CursorInGame(st scaler.State) (scaler.Point, bool) {
	var x, y int
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		x, y = ebiten.TouchPosition(ids[0])
	} else {
		x, y = ebiten.CursorPosition()
	}
	screen := scaler.Point{X: float64(x), Y: float64(y)}
	return scaler.ScreenToGame(screen, st), scaler.IsPointInGame(screen, st)
}
