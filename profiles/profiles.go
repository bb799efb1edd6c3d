// Package profiles lays a canvas out across a catalogue of device
// viewports and prints the result as a table.
package profiles

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/remeh/sizedwaitgroup"

	"gamescale/scaler"
)

//go:embed devices.json
var builtin []byte

// Profile describes one device viewport.
type Profile struct {
	Name   string         `json:"name"`
	Window scaler.Size    `json:"window"`
	Visual *scaler.Size   `json:"visual,omitempty"`
	Insets *scaler.Insets `json:"insets,omitempty"`
	DPR    float64        `json:"dpr"`
}

// Geometry converts the profile to what a host would report.
func (p Profile) Geometry() scaler.Geometry {
	g := scaler.Geometry{Window: p.Window, DevicePixelRatio: p.DPR}
	if g.DevicePixelRatio <= 0 {
		g.DevicePixelRatio = 1
	}
	if p.Visual != nil {
		g.Visual, g.HasVisual = *p.Visual, true
	}
	if p.Insets != nil {
		g.Insets, g.HasInsets = *p.Insets, true
	}
	return g
}

// Load decodes a JSON array of profiles.
func Load(r io.Reader) ([]Profile, error) {
	var list []Profile
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	for i, p := range list {
		if p.Name == "" {
			return nil, fmt.Errorf("profile %d: missing name", i)
		}
		if !(p.Window.Width > 0) || !(p.Window.Height > 0) ||
			math.IsInf(p.Window.Width, 0) || math.IsInf(p.Window.Height, 0) {
			return nil, fmt.Errorf("profile %q: window %vx%v must be positive", p.Name, p.Window.Width, p.Window.Height)
		}
	}
	return list, nil
}

// Default returns the built-in catalogue.
func Default() []Profile {
	list, err := Load(bytes.NewReader(builtin))
	if err != nil {
		panic(err)
	}
	return list
}

// Row is the layout of one profile.
type Row struct {
	Profile Profile      `json:"profile"`
	State   scaler.State `json:"state"`
}

// Build computes every profile's layout with at most workers goroutines.
// Rows keep the input order.
func Build(cfg scaler.Config, list []Profile, workers int) ([]Row, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	rows := make([]Row, len(list))
	swg := sizedwaitgroup.New(workers)
	for i, p := range list {
		swg.Add()
		go func(i int, p Profile) {
			defer swg.Done()
			rows[i] = Row{Profile: p, State: scaler.Compute(p.Geometry(), cfg)}
		}(i, p)
	}
	swg.Wait()
	return rows, nil
}

// Coverage is the share of the viewport covered by the visible part of the
// canvas, from 0 to 1.
func Coverage(st scaler.State) float64 {
	vw, vh := st.ViewportSize.Width, st.ViewportSize.Height
	if vw <= 0 || vh <= 0 {
		return 0
	}
	r := st.Rect()
	w := math.Min(r.X1, vw) - math.Max(r.X0, 0)
	h := math.Min(r.Y1, vh) - math.Max(r.Y0, 0)
	if w <= 0 || h <= 0 {
		return 0
	}
	return (w * h) / (vw * vh)
}

// Fit names how the scale was chosen.
func Fit(st scaler.State, cfg scaler.Config) string {
	switch {
	case st.Scale <= cfg.MinScale:
		return "min"
	case st.Scale >= cfg.MaxScale:
		return "max"
	case cfg.MaintainAspectRatio:
		return "contain"
	default:
		return "cover"
	}
}
