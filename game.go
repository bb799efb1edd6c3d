package main

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/hako/durafmt"

	"gamescale/ebitenhost"
	"gamescale/scaler"
)

const (
	checkerTile  = 50
	checkerEdge  = 2
	minLogical   = 16
	resizeFactor = 1.25
)

var (
	crosshairColor = color.RGBA{0xe0, 0x30, 0x30, 0xff}
	edgeColor      = color.RGBA{0x30, 0x90, 0xe0, 0xff}
)

// gameHost is a scaler platform that Ebiten drives from Layout and Update.
type gameHost interface {
	scaler.Platform
	Layout(outsideWidth, outsideHeight int)
	Update()
}

// Game is the playground: a checkerboard logical canvas placed on the
// window by a Scaler.
type Game struct {
	ctx   context.Context
	host  gameHost
	sc    *scaler.Scaler
	unsub func()

	mu    sync.Mutex
	state scaler.State

	settings     Settings
	settingsPath string

	canvas     *ebiten.Image
	canvasSize scaler.Size
	dark       bool
}

func newGame(ctx context.Context, host gameHost, settingsPath string, s Settings, cfg scaler.Config, opts ...scaler.Option) (*Game, error) {
	sc, err := scaler.New(host, cfg, opts...)
	if err != nil {
		return nil, err
	}
	g := &Game{
		ctx:          ctx,
		host:         host,
		sc:           sc,
		settings:     s,
		settingsPath: settingsPath,
	}
	g.settings.setConfig(cfg)
	g.unsub = sc.Subscribe(g.setState)
	return g, nil
}

func (g *Game) setState(st scaler.State) {
	g.mu.Lock()
	g.state = st
	g.mu.Unlock()
}

func (g *Game) current() scaler.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	g.host.Update()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		g.saveState()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		g.resizeLogical(resizeFactor)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		g.resizeLogical(1 / resizeFactor)
	case inpututil.IsKeyJustPressed(ebiten.KeyA):
		g.toggleAspect()
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		g.settings.LinearFilter = !g.settings.LinearFilter
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	st := g.current()
	if g.dark {
		screen.Fill(color.RGBA{0x18, 0x18, 0x1c, 0xff})
	} else {
		screen.Fill(color.RGBA{0xd8, 0xd8, 0xdc, 0xff})
	}

	g.ensureCanvas(g.sc.Config().LogicalSize)
	filter := ebiten.FilterNearest
	if g.settings.LinearFilter {
		filter = ebiten.FilterLinear
	}
	screen.DrawImage(g.canvas, ebitenhost.DrawOptions(st, filter))

	p, in := ebitenhost.CursorInGame(st)
	if in {
		c := st.GameToScreen(p)
		r := st.Rect()
		vector.StrokeLine(screen, float32(r.X0), float32(c.Y), float32(r.X1), float32(c.Y), 1, crosshairColor, false)
		vector.StrokeLine(screen, float32(c.X), float32(r.Y0), float32(c.X), float32(r.Y1), 1, crosshairColor, false)
	}
	ebitenutil.DebugPrintAt(screen, g.status(st, p, in), 8, 8)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.host.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

func (g *Game) status(st scaler.State, p scaler.Point, in bool) string {
	cfg := g.sc.Config()
	fit := "contain"
	if !cfg.MaintainAspectRatio {
		fit = "cover"
	}
	cursor := "cursor outside"
	if in {
		cursor = fmt.Sprintf("cursor %.0f,%.0f", p.X, p.Y)
	}
	return fmt.Sprintf("logical %.0fx%.0f  scale %.3f (%s)\nviewport %.0fx%.0f  offset %.0f,%.0f  dpr %.2f\n%s  debounce %s\n[+/-] size  [A] aspect  [F] filter  [F2] save",
		cfg.LogicalSize.Width, cfg.LogicalSize.Height, st.Scale, fit,
		st.ViewportSize.Width, st.ViewportSize.Height, st.Offset.X, st.Offset.Y, st.DevicePixelRatio,
		cursor, durafmt.Parse(cfg.Debounce).LimitFirstN(1))
}

// resizeLogical scales the logical canvas by f, keeping it above a usable
// minimum.
func (g *Game) resizeLogical(f float64) {
	cfg := g.sc.Config()
	size := scaler.Size{
		Width:  math.Round(cfg.LogicalSize.Width * f),
		Height: math.Round(cfg.LogicalSize.Height * f),
	}
	if size.Width < minLogical || size.Height < minLogical {
		return
	}
	g.update(scaler.ConfigPatch{LogicalSize: &size})
}

func (g *Game) toggleAspect() {
	g.update(scaler.ConfigPatch{MaintainAspectRatio: scaler.Ptr(!g.sc.Config().MaintainAspectRatio)})
}

func (g *Game) update(patch scaler.ConfigPatch) {
	if err := g.sc.UpdateConfig(patch); err != nil {
		logError("update config: %v", err)
		return
	}
	g.settings.setConfig(g.sc.Config())
}

func (g *Game) saveState() {
	st := g.current()
	go func() {
		if err := saveStateDialog(st); err != nil {
			logError("save state: %v", err)
		}
	}()
}

func (g *Game) ensureCanvas(size scaler.Size) {
	if g.canvas != nil && g.canvasSize == size {
		return
	}
	if g.canvas != nil {
		g.canvas.Deallocate()
	}
	w, h := int(math.Ceil(size.Width)), int(math.Ceil(size.Height))
	g.canvas = ebiten.NewImage(w, h)
	g.canvas.WritePixels(checkerPixels(w, h, checkerTile, g.dark))
	g.canvasSize = size
}

// checkerPixels renders the RGBA checkerboard with a coloured edge so the
// canvas bounds stay visible when it is cropped.
func checkerPixels(w, h, tile int, dark bool) []byte {
	a, b := color.RGBA{0xf0, 0xf0, 0xf0, 0xff}, color.RGBA{0xc0, 0xc0, 0xc8, 0xff}
	if dark {
		a, b = color.RGBA{0x40, 0x40, 0x48, 0xff}, color.RGBA{0x28, 0x28, 0x30, 0xff}
	}
	pix := make([]byte, 4*w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := a
			switch {
			case x < checkerEdge || y < checkerEdge || x >= w-checkerEdge || y >= h-checkerEdge:
				c = edgeColor
			case (x/tile+y/tile)%2 == 1:
				c = b
			}
			i := 4 * (y*w + x)
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return pix
}

func (g *Game) close() {
	g.unsub()
	g.sc.Destroy()
	if err := saveSettings(g.settingsPath, g.settings); err != nil {
		logError("save settings: %v", err)
	}
}

func runGame(ctx context.Context, settingsPath string, s Settings, cfg scaler.Config) error {
	ebiten.SetWindowTitle("gamescale playground")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(int(cfg.LogicalSize.Width), int(cfg.LogicalSize.Height))

	g, err := newGame(ctx, newGameHost(), settingsPath, s, cfg, scaler.WithLogger(debugLogger))
	if err != nil {
		return err
	}
	g.dark = prefersDark(s.Theme)
	defer g.close()

	return ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{ScreenTransparent: false})
}
