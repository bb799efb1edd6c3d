// Package platform provides scaler.Platform hosts that do not need a game
// loop: fixed geometry, remote clients and the browser.
package platform

import (
	"sync"

	"gamescale/scaler"
)

// Static is a host whose geometry only changes through its setters. Each
// setter emits the event a real host would raise for the same change.
type Static struct {
	mu        sync.Mutex
	window    scaler.Size
	visual    scaler.Size
	hasVisual bool
	insets    scaler.Insets
	hasInsets bool
	dpr       float64

	w scaler.Watchers
}

// NewStatic creates a host with the given window size, no visual viewport,
// no insets and a pixel ratio of 1.
func NewStatic(width, height float64) *Static {
	return &Static{window: scaler.Size{Width: width, Height: height}, dpr: 1}
}

func (s *Static) WindowSize() scaler.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

func (s *Static) VisualViewport() (scaler.Size, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visual, s.hasVisual
}

func (s *Static) SafeAreaInsets() (scaler.Insets, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insets, s.hasInsets
}

func (s *Static) DevicePixelRatio() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dpr
}

func (s *Static) Watch(fn func(scaler.Event)) func() { return s.w.Add(fn) }

// Watchers returns the number of registered watchers.
func (s *Static) Watchers() int { return s.w.Count() }

// SetWindowSize resizes the window. An orientation event follows the resize
// when the landscape/portrait state flips.
func (s *Static) SetWindowSize(width, height float64) {
	s.mu.Lock()
	was := s.window.Width > s.window.Height
	s.window = scaler.Size{Width: width, Height: height}
	flipped := was != (width > height)
	s.mu.Unlock()

	s.w.Emit(scaler.EventResize)
	if flipped {
		s.w.Emit(scaler.EventOrientation)
	}
}

// SetVisualViewport reports a visual viewport size.
func (s *Static) SetVisualViewport(width, height float64) {
	s.mu.Lock()
	s.visual = scaler.Size{Width: width, Height: height}
	s.hasVisual = true
	s.mu.Unlock()
	s.w.Emit(scaler.EventVisualResize)
}

// ClearVisualViewport removes the visual viewport capability.
func (s *Static) ClearVisualViewport() {
	s.mu.Lock()
	s.visual = scaler.Size{}
	s.hasVisual = false
	s.mu.Unlock()
	s.w.Emit(scaler.EventVisualResize)
}

// ScrollVisualViewport raises a visual viewport scroll without changing
// geometry, as a pinch-zoom pan does.
func (s *Static) ScrollVisualViewport() {
	s.w.Emit(scaler.EventVisualScroll)
}

// SetSafeAreaInsets reports safe-area insets.
func (s *Static) SetSafeAreaInsets(in scaler.Insets) {
	s.mu.Lock()
	s.insets = in
	s.hasInsets = true
	s.mu.Unlock()
	s.w.Emit(scaler.EventResize)
}

// SetDevicePixelRatio changes the pixel ratio, e.g. when a window moves to
// another monitor.
func (s *Static) SetDevicePixelRatio(dpr float64) {
	s.mu.Lock()
	s.dpr = dpr
	s.mu.Unlock()
	s.w.Emit(scaler.EventResize)
}

// Emit raises ev without changing geometry.
func (s *Static) Emit(ev scaler.Event) { s.w.Emit(ev) }

// Set applies a full snapshot at once and raises ev.
func (s *Static) Set(g scaler.Geometry, ev scaler.Event) {
	s.mu.Lock()
	s.window = g.Window
	s.visual, s.hasVisual = g.Visual, g.HasVisual
	s.insets, s.hasInsets = g.Insets, g.HasInsets
	s.dpr = g.DevicePixelRatio
	if s.dpr <= 0 {
		s.dpr = 1
	}
	s.mu.Unlock()
	s.w.Emit(ev)
}
