package scaler

import "math"

// State is the mapping between the logical canvas and the viewport at one
// point in time. GameSize and Offset are always derived from Scale.
type State struct {
	ViewportSize     Size    `json:"viewportSize"`
	SafeAreaInsets   Insets  `json:"safeAreaInsets"`
	Scale            float64 `json:"scale"`
	GameSize         Size    `json:"gameSize"`
	Offset           Point   `json:"offset"`
	IsLandscape      bool    `json:"isLandscape"`
	DevicePixelRatio float64 `json:"devicePixelRatio"`
}

// Compute fits cfg.LogicalSize into the viewport described by g. cfg must
// already be valid.
func Compute(g Geometry, cfg Config) State {
	vp := g.viewport()

	var insets Insets
	if cfg.EnableSafeArea && g.HasInsets {
		insets = g.Insets.sanitize()
	}

	availW := math.Max(0, vp.Width-insets.Left-insets.Right-2*cfg.Padding)
	availH := math.Max(0, vp.Height-insets.Top-insets.Bottom-2*cfg.Padding)

	scale := cfg.MinScale
	if availW > 0 && availH > 0 {
		scaleX := availW / cfg.LogicalSize.Width
		scaleY := availH / cfg.LogicalSize.Height
		if cfg.MaintainAspectRatio {
			scale = math.Min(scaleX, scaleY)
		} else {
			scale = math.Max(scaleX, scaleY)
		}
	}
	scale = clamp(scale, cfg.MinScale, cfg.MaxScale)

	game := Size{
		Width:  cfg.LogicalSize.Width * scale,
		Height: cfg.LogicalSize.Height * scale,
	}

	return State{
		ViewportSize:   vp,
		SafeAreaInsets: insets,
		Scale:          scale,
		GameSize:       game,
		Offset: Point{
			X: insets.Left + (availW-game.Width)/2,
			Y: insets.Top + (availH-game.Height)/2,
		},
		IsLandscape:      vp.landscape(),
		DevicePixelRatio: g.DevicePixelRatio,
	}
}

// ScreenToGame maps a viewport position into logical canvas space. The
// result is not clamped to the canvas; see IsPointInGame.
func ScreenToGame(p Point, s State) Point {
	return Point{
		X: (p.X - s.Offset.X) / s.Scale,
		Y: (p.Y - s.Offset.Y) / s.Scale,
	}
}

// GameToScreen maps a logical canvas position into the viewport.
func GameToScreen(p Point, s State) Point {
	return Point{
		X: p.X*s.Scale + s.Offset.X,
		Y: p.Y*s.Scale + s.Offset.Y,
	}
}

// IsPointInGame reports whether a screen position falls on the scaled
// canvas, edges included.
func IsPointInGame(p Point, s State) bool {
	return s.Rect().Contains(p)
}

func (s State) ScreenToGame(p Point) Point { return ScreenToGame(p, s) }
func (s State) GameToScreen(p Point) Point { return GameToScreen(p, s) }
func (s State) IsPointInGame(p Point) bool { return IsPointInGame(p, s) }

// Rect is the scaled canvas in screen space.
func (s State) Rect() Rect {
	return Rect{
		X0: s.Offset.X,
		Y0: s.Offset.Y,
		X1: s.Offset.X + s.GameSize.Width,
		Y1: s.Offset.Y + s.GameSize.Height,
	}
}

// Equal compares two states within eps, used by hosts that only redraw on
// a visible change.
func (s State) Equal(o State, eps float64) bool {
	return withinRange(s.Scale, o.Scale, eps) &&
		withinRange(s.Offset.X, o.Offset.X, eps) &&
		withinRange(s.Offset.Y, o.Offset.Y, eps) &&
		withinRange(s.ViewportSize.Width, o.ViewportSize.Width, eps) &&
		withinRange(s.ViewportSize.Height, o.ViewportSize.Height, eps) &&
		s.SafeAreaInsets == o.SafeAreaInsets &&
		s.IsLandscape == o.IsLandscape &&
		s.DevicePixelRatio == o.DevicePixelRatio
}
