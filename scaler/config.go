package scaler

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig is returned when a Config cannot produce a finite,
// positive scale.
var ErrInvalidConfig = errors.New("invalid scaling config")

// DefaultDebounce is the quiet period applied to bursts of viewport events.
const DefaultDebounce = 100 * time.Millisecond

// Config controls how the logical canvas is fitted to the viewport.
type Config struct {
	LogicalSize Size    `json:"logicalSize"`
	MinScale    float64 `json:"minScale"`
	MaxScale    float64 `json:"maxScale"`

	// MaintainAspectRatio picks min(scaleX, scaleY) so the whole canvas is
	// visible. When false max(scaleX, scaleY) fills the viewport and crops.
	MaintainAspectRatio bool `json:"maintainAspectRatio"`

	// Padding is subtracted from every side of the available area.
	Padding        float64 `json:"padding"`
	EnableSafeArea bool    `json:"enableSafeArea"`

	// Debounce delays recomputation after viewport events. Zero delivers
	// every event immediately.
	Debounce time.Duration `json:"debounce"`
}

// DefaultConfig returns an 800x600 canvas with aspect preserving fit.
func DefaultConfig() Config {
	return Config{
		LogicalSize:         Size{Width: 800, Height: 600},
		MinScale:            0.2,
		MaxScale:            4,
		MaintainAspectRatio: true,
		EnableSafeArea:      true,
		Debounce:            DefaultDebounce,
	}
}

// Validate reports ErrInvalidConfig, wrapped with the offending field.
func (c Config) Validate() error {
	switch {
	case !(c.LogicalSize.Width > 0) || math.IsInf(c.LogicalSize.Width, 0):
		return fmt.Errorf("%w: logical width %v must be > 0", ErrInvalidConfig, c.LogicalSize.Width)
	case !(c.LogicalSize.Height > 0) || math.IsInf(c.LogicalSize.Height, 0):
		return fmt.Errorf("%w: logical height %v must be > 0", ErrInvalidConfig, c.LogicalSize.Height)
	case !(c.MinScale > 0) || math.IsInf(c.MinScale, 0):
		return fmt.Errorf("%w: minScale %v must be finite and > 0", ErrInvalidConfig, c.MinScale)
	case math.IsNaN(c.MaxScale) || math.IsInf(c.MaxScale, 0):
		return fmt.Errorf("%w: maxScale %v must be finite", ErrInvalidConfig, c.MaxScale)
	case c.MinScale > c.MaxScale:
		return fmt.Errorf("%w: minScale %v exceeds maxScale %v", ErrInvalidConfig, c.MinScale, c.MaxScale)
	case !(c.Padding >= 0) || math.IsInf(c.Padding, 0):
		return fmt.Errorf("%w: padding %v must be >= 0", ErrInvalidConfig, c.Padding)
	case c.Debounce < 0:
		return fmt.Errorf("%w: debounce %v must be >= 0", ErrInvalidConfig, c.Debounce)
	}
	return nil
}

// ConfigPatch carries a partial Config. Nil fields are left unchanged.
type ConfigPatch struct {
	LogicalSize         *Size          `json:"logicalSize,omitempty"`
	MinScale            *float64       `json:"minScale,omitempty"`
	MaxScale            *float64       `json:"maxScale,omitempty"`
	MaintainAspectRatio *bool          `json:"maintainAspectRatio,omitempty"`
	Padding             *float64       `json:"padding,omitempty"`
	EnableSafeArea      *bool          `json:"enableSafeArea,omitempty"`
	Debounce            *time.Duration `json:"debounce,omitempty"`
}

// Apply returns c with every non-nil field of p merged in.
func (p ConfigPatch) Apply(c Config) Config {
	if p.LogicalSize != nil {
		c.LogicalSize = *p.LogicalSize
	}
	if p.MinScale != nil {
		c.MinScale = *p.MinScale
	}
	if p.MaxScale != nil {
		c.MaxScale = *p.MaxScale
	}
	if p.MaintainAspectRatio != nil {
		c.MaintainAspectRatio = *p.MaintainAspectRatio
	}
	if p.Padding != nil {
		c.Padding = *p.Padding
	}
	if p.EnableSafeArea != nil {
		c.EnableSafeArea = *p.EnableSafeArea
	}
	if p.Debounce != nil {
		c.Debounce = *p.Debounce
	}
	return c
}

// IsZero reports whether the patch changes nothing.
func (p ConfigPatch) IsZero() bool {
	return p == ConfigPatch{}
}

// Ptr is a helper for building patches from literals.
func Ptr[T any](v T) *T { return &v }
