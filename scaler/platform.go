package scaler

// Event identifies what made the viewport change.
type Event int

const (
	EventResize Event = iota
	EventOrientation
	EventVisualResize
	EventVisualScroll
)

var eventNames = [...]string{
	EventResize:       "resize",
	EventOrientation:  "orientationchange",
	EventVisualResize: "visualresize",
	EventVisualScroll: "visualscroll",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[e]
}

// ParseEvent maps a wire name back to an Event.
func ParseEvent(name string) (Event, bool) {
	for i, n := range eventNames {
		if n == name {
			return Event(i), true
		}
	}
	return EventResize, false
}

// Platform is the host's read-only geometry surface. Capabilities a host
// lacks are reported through the bool results and never as errors.
type Platform interface {
	// WindowSize is the outer viewport size.
	WindowSize() Size
	// VisualViewport is the visible area excluding on-screen keyboards and
	// pinch-zoom, when the host exposes one.
	VisualViewport() (Size, bool)
	SafeAreaInsets() (Insets, bool)
	DevicePixelRatio() float64
	// Watch registers fn for viewport events until stop is called.
	Watch(fn func(Event)) (stop func())
}

// Geometry is one snapshot of everything Compute reads from a Platform.
type Geometry struct {
	Window           Size
	Visual           Size
	HasVisual        bool
	Insets           Insets
	HasInsets        bool
	DevicePixelRatio float64
}

// ReadGeometry samples p once.
func ReadGeometry(p Platform) Geometry {
	g := Geometry{Window: p.WindowSize(), DevicePixelRatio: p.DevicePixelRatio()}
	g.Visual, g.HasVisual = p.VisualViewport()
	g.Insets, g.HasInsets = p.SafeAreaInsets()
	return g
}

// viewport prefers the visual viewport when it reports a usable size.
func (g Geometry) viewport() Size {
	if g.HasVisual {
		v := g.Visual.sanitize()
		if v.Width > 0 && v.Height > 0 {
			return v
		}
	}
	return g.Window.sanitize()
}
