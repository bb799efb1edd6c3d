// Package termview previews a scaler layout in a terminal. Terminal cells
// are treated as fixed-size pixel blocks so a logical canvas can be fitted
// to the terminal the same way it is fitted to a window.
package termview

import (
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"

	"gamescale/scaler"
)

// Default cell size in pixels.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

// Host implements scaler.Platform on top of terminal resize events. The
// status rows at the top and bottom of the terminal are reported as
// safe-area insets so the canvas is laid out between them.
type Host struct {
	cellW, cellH float64
	topRows      int
	bottomRows   int

	mu   sync.Mutex
	cols int
	rows int

	watchers scaler.Watchers
}

// NewHost creates a host for a terminal of cols x rows cells.
func NewHost(cols, rows int, cellW, cellH float64) *Host {
	if cellW <= 0 {
		cellW = DefaultCellWidth
	}
	if cellH <= 0 {
		cellH = DefaultCellHeight
	}
	return &Host{cellW: cellW, cellH: cellH, cols: cols, rows: rows}
}

func (h *Host) WindowSize() scaler.Size {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sizeLocked()
}

func (h *Host) VisualViewport() (scaler.Size, bool)   { return scaler.Size{}, false }
func (h *Host) DevicePixelRatio() float64             { return 1 }

func (h *Host) SafeAreaInsets() (scaler.Insets, bool) {
	if h.topRows == 0 && h.bottomRows == 0 {
		return scaler.Insets{}, false
	}
	return scaler.Insets{
		Top:    float64(h.topRows) * h.cellH,
		Bottom: float64(h.bottomRows) * h.cellH,
	}, true
}

// Reserve keeps rows at the top and bottom of the terminal free of canvas.
func (h *Host) Reserve(top, bottom int) {
	h.topRows, h.bottomRows = top, bottom
}

func (h *Host) Watch(fn func(scaler.Event)) func() { return h.watchers.Add(fn) }

// HandleEvent consumes tcell resize events and reports whether ev was one.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	rs, ok := ev.(*tcell.EventResize)
	if !ok {
		return false
	}
	cols, rows := rs.Size()
	h.resize(cols, rows)
	return true
}

func (h *Host) resize(cols, rows int) {
	h.mu.Lock()
	if cols == h.cols && rows == h.rows {
		h.mu.Unlock()
		return
	}
	before := h.sizeLocked()
	h.cols, h.rows = cols, rows
	after := h.sizeLocked()
	h.mu.Unlock()

	h.watchers.Emit(scaler.EventResize)
	if (before.Width > before.Height) != (after.Width > after.Height) {
		h.watchers.Emit(scaler.EventOrientation)
	}
}

func (h *Host) sizeLocked() scaler.Size {
	return scaler.Size{Width: float64(h.cols) * h.cellW, Height: float64(h.rows) * h.cellH}
}

// Cell converts a screen pixel position to a terminal cell.
func (h *Host) Cell(p scaler.Point) (int, int) {
	return floorDiv(p.X, h.cellW), floorDiv(p.Y, h.cellH)
}

// Pixel returns the pixel position of the center of cell (col, row).
func (h *Host) Pixel(col, row int) scaler.Point {
	return scaler.Point{X: (float64(col) + 0.5) * h.cellW, Y: (float64(row) + 0.5) * h.cellH}
}

// Span converts a pixel interval [lo, hi] to the first and last cell it
// covers.
func Span(lo, hi, cell float64) (int, int) {
	first := floorDiv(lo, cell)
	last := int(math.Ceil(hi/cell-1e-6)) - 1
	if last < first {
		last = first
	}
	return first, last
}

func floorDiv(v, d float64) int {
	return int(math.Floor(v / d))
}
