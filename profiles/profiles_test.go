package profiles

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"gamescale/scaler"
)

func TestDefaultCatalogue(t *testing.T) {
	list := Default()
	if len(list) < 10 {
		t.Fatalf("catalogue has %d profiles", len(list))
	}
	seen := map[string]bool{}
	for _, p := range list {
		if seen[p.Name] {
			t.Errorf("duplicate profile %q", p.Name)
		}
		seen[p.Name] = true
	}
}

func TestLoadRejectsBadProfiles(t *testing.T) {
	tests := []string{
		`{`,
		`[{"window": {"width": 10, "height": 10}}]`,
		`[{"name": "flat", "window": {"width": 0, "height": 10}}]`,
	}
	for _, in := range tests {
		if _, err := Load(strings.NewReader(in)); err == nil {
			t.Errorf("Load(%s) succeeded", in)
		}
	}
}

func TestBuildKeepsOrder(t *testing.T) {
	list := []Profile{
		{Name: "double", Window: scaler.Size{Width: 1600, Height: 1200}},
		{Name: "letterbox", Window: scaler.Size{Width: 1000, Height: 1200}},
		{Name: "notch", Window: scaler.Size{Width: 100, Height: 100}, Insets: &scaler.Insets{Top: 60, Bottom: 60}},
	}
	rows, err := Build(scaler.DefaultConfig(), list, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 1.25, 0.2}
	for i, r := range rows {
		if r.Profile.Name != list[i].Name || r.State.Scale != want[i] {
			t.Errorf("row %d: %s scale %v; want %s %v", i, r.Profile.Name, r.State.Scale, list[i].Name, want[i])
		}
	}
}

func TestBuildInvalidConfig(t *testing.T) {
	cfg := scaler.DefaultConfig()
	cfg.MinScale = 0
	if _, err := Build(cfg, Default(), 4); !errors.Is(err, scaler.ErrInvalidConfig) {
		t.Fatalf("got %v", err)
	}
}

func TestProfileGeometry(t *testing.T) {
	p := Profile{Name: "kb", Window: scaler.Size{Width: 393, Height: 852}, Visual: &scaler.Size{Width: 393, Height: 460}}
	g := p.Geometry()
	if !g.HasVisual || g.HasInsets || g.DevicePixelRatio != 1 {
		t.Fatalf("geometry %+v", g)
	}
	st := scaler.Compute(g, scaler.DefaultConfig())
	if st.ViewportSize.Height != 460 {
		t.Fatalf("visual viewport ignored: %+v", st.ViewportSize)
	}
}

func TestCoverageAndFit(t *testing.T) {
	cfg := scaler.DefaultConfig()
	st := scaler.Compute(scaler.Geometry{Window: scaler.Size{Width: 1600, Height: 1200}}, cfg)
	if c := Coverage(st); c != 1 {
		t.Errorf("coverage %v; want 1", c)
	}
	if f := Fit(st, cfg); f != "contain" {
		t.Errorf("fit %q", f)
	}

	st = scaler.Compute(scaler.Geometry{Window: scaler.Size{Width: 1000, Height: 1200}}, cfg)
	if c := Coverage(st); c != 0.625 {
		t.Errorf("coverage %v; want 0.625", c)
	}

	cfg.MaintainAspectRatio = false
	st = scaler.Compute(scaler.Geometry{Window: scaler.Size{Width: 1000, Height: 1200}}, cfg)
	if c := Coverage(st); c != 1 {
		t.Errorf("cropped coverage %v; want 1", c)
	}
	if f := Fit(st, cfg); f != "cover" {
		t.Errorf("fit %q", f)
	}
	if f := Fit(scaler.State{Scale: 0.2}, cfg); f != "min" {
		t.Errorf("fit %q", f)
	}
	if c := Coverage(scaler.State{}); c != 0 {
		t.Errorf("empty coverage %v", c)
	}
}

func TestFormat(t *testing.T) {
	cfg := scaler.DefaultConfig()
	rows, err := Build(cfg, []Profile{
		{Name: "Desktop 1080p", Window: scaler.Size{Width: 1920, Height: 1080}, DPR: 1},
	}, 1)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Format(&buf, cfg, rows, language.English); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"DEVICE", "Desktop 1080p", "1.800", "contain", "Mpx"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
