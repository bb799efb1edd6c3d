package scaler

import "math"

// Size is a width/height pair in device-independent pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a position in either screen or game space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Insets are the margins reserved by the device shell (notch, home
// indicator). All values are non-negative.
type Insets struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Rect is an axis aligned rectangle in screen space.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

func (s Size) landscape() bool { return s.Width > s.Height }

// sanitize replaces negative and non-finite values with zero.
func (in Insets) sanitize() Insets {
	return Insets{
		Top:    nonNegative(in.Top),
		Right:  nonNegative(in.Right),
		Bottom: nonNegative(in.Bottom),
		Left:   nonNegative(in.Left),
	}
}

func (s Size) sanitize() Size {
	return Size{Width: nonNegative(s.Width), Height: nonNegative(s.Height)}
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func withinRange(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
