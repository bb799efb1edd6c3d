package platform

import (
	"fmt"
	"math"

	"gamescale/scaler"
)

// Report is the geometry a remote client sends after a viewport event.
type Report struct {
	Event  string         `json:"event"`
	Window scaler.Size    `json:"window"`
	Visual *scaler.Size   `json:"visual,omitempty"`
	Insets *scaler.Insets `json:"insets,omitempty"`
	DPR    float64        `json:"dpr"`
}

// Geometry validates r and converts it. Unknown event names fall back to
// a resize.
func (r Report) Geometry() (scaler.Geometry, scaler.Event, error) {
	if !finite(r.Window.Width) || !finite(r.Window.Height) || r.Window.Width < 0 || r.Window.Height < 0 {
		return scaler.Geometry{}, 0, fmt.Errorf("bad window size %vx%v", r.Window.Width, r.Window.Height)
	}
	g := scaler.Geometry{Window: r.Window, DevicePixelRatio: r.DPR}
	if r.Visual != nil {
		g.Visual, g.HasVisual = *r.Visual, true
	}
	if r.Insets != nil {
		g.Insets, g.HasInsets = *r.Insets, true
	}
	if !finite(g.DevicePixelRatio) || g.DevicePixelRatio <= 0 {
		g.DevicePixelRatio = 1
	}
	ev, ok := scaler.ParseEvent(r.Event)
	if !ok {
		ev = scaler.EventResize
	}
	return g, ev, nil
}

// Remote is a host fed by reports from a client over the network.
type Remote struct {
	Static
	reports int
}

// NewRemote creates a remote host with an empty viewport. The first report
// establishes the real geometry.
func NewRemote() *Remote {
	return &Remote{Static: Static{dpr: 1}}
}

// Apply installs a client report and raises its event.
func (r *Remote) Apply(rep Report) error {
	g, ev, err := rep.Geometry()
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.reports++
	r.mu.Unlock()
	r.Set(g, ev)
	return nil
}

// Reports returns how many reports were applied.
func (r *Remote) Reports() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reports
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
