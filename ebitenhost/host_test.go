package ebitenhost

import (
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"gamescale/scaler"
)

func TestLayoutEvents(t *testing.T) {
	h := newHost(func() float64 { return 1 })
	var got []scaler.Event
	stop := h.Watch(func(ev scaler.Event) { got = append(got, ev) })

	h.Layout(1600, 1200)
	h.Layout(1600, 1200)
	h.Layout(1200, 1000)
	h.Layout(1000, 1200)

	want := []scaler.Event{scaler.EventResize, scaler.EventResize, scaler.EventResize, scaler.EventOrientation}
	if len(got) != len(want) {
		t.Fatalf("events %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events %v; want %v", got, want)
		}
	}
	if sz := h.WindowSize(); sz.Width != 1000 || sz.Height != 1200 {
		t.Fatalf("size %+v", sz)
	}

	stop()
	h.Layout(10, 10)
	if len(got) != len(want) {
		t.Fatal("event after stop")
	}
}

func TestUpdateTracksScaleFactor(t *testing.T) {
	dpr := 1.0
	h := newHost(func() float64 { return dpr })
	n := 0
	defer h.Watch(func(scaler.Event) { n++ })()

	h.Update()
	if n != 0 {
		t.Fatal("unchanged scale factor raised an event")
	}
	dpr = 2
	h.Update()
	if n != 1 || h.DevicePixelRatio() != 2 {
		t.Fatalf("n=%d dpr=%v", n, h.DevicePixelRatio())
	}
}

func TestHostDrivesScaler(t *testing.T) {
	h := newHost(func() float64 { return 1 })
	h.Layout(1600, 1200)
	clock := scaler.NewManualClock(time.Unix(0, 0))
	cfg := scaler.DefaultConfig()
	sc, err := scaler.New(h, cfg, scaler.WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}
	var last scaler.State
	defer sc.Subscribe(func(st scaler.State) { last = st })()
	if last.Scale != 2 {
		t.Fatalf("initial scale %v", last.Scale)
	}
	h.Layout(1000, 1200)
	clock.Advance(cfg.Debounce)
	if last.Scale != 1.25 {
		t.Fatalf("scale %v; want 1.25", last.Scale)
	}
}

func TestDrawOptions(t *testing.T) {
	st := scaler.State{Scale: 1.25, Offset: scaler.Point{X: 0, Y: 225}}
	op := DrawOptions(st, ebiten.FilterLinear)
	x, y := op.GeoM.Apply(800, 600)
	if x != 1000 || y != 975 {
		t.Fatalf("corner maps to %v,%v; want 1000,975", x, y)
	}
	if op.Filter != ebiten.FilterLinear || !op.DisableMipmaps {
		t.Fatalf("options %+v", op)
	}
}

func TestWatchersRunInRegistrationOrder(t *testing.T) {
	h := newHost(func() float64 { return 1 })
	var got []int
	for i := 0; i < 8; i++ {
		i := i
		defer h.Watch(func(scaler.Event) { got = append(got, i) })()
	}
	h.Layout(800, 600)
	if len(got) != 8 {
		t.Fatalf("calls %v", got)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order %v", got)
		}
	}
}
