package termview

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"gamescale/scaler"
)

type quitSignal struct{}

var (
	styleFrame  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	styleLabel  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleCursor = tcell.StyleDefault.Foreground(tcell.ColorRed).Reverse(true)
)

// Preview draws the scaled canvas as a box and tracks the mouse through
// ScreenToGame.
type Preview struct {
	screen tcell.Screen
	host   *Host
	sc     *scaler.Scaler

	state    scaler.State
	mouse    scaler.Point
	hasMouse bool
}

// NewPreview lays cfg out on screen, which must already be initialized.
func NewPreview(screen tcell.Screen, cfg scaler.Config, cellW, cellH float64, opts ...scaler.Option) (*Preview, error) {
	cols, rows := screen.Size()
	host := NewHost(cols, rows, cellW, cellH)
	host.Reserve(1, 1)
	sc, err := scaler.New(host, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Preview{screen: screen, host: host, sc: sc, state: sc.State()}, nil
}

// Scaler exposes the preview's scaler.
func (p *Preview) Scaler() *scaler.Scaler { return p.sc }

// Run processes terminal events until the user quits or ctx ends.
func (p *Preview) Run(ctx context.Context) error {
	defer p.sc.Destroy()
	unsub := p.sc.Subscribe(func(st scaler.State) {
		_ = p.screen.PostEvent(tcell.NewEventInterrupt(st))
	})
	defer unsub()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = p.screen.PostEvent(tcell.NewEventInterrupt(quitSignal{}))
		case <-done:
		}
	}()

	p.screen.EnableMouse()
	p.draw()
	for {
		ev := p.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if !p.handle(ev) {
			return ctx.Err()
		}
	}
}

func (p *Preview) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		p.host.HandleEvent(ev)
		p.screen.Sync()
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune:
			if !p.handleRune(ev.Rune()) {
				return false
			}
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		p.mouse = p.host.Pixel(x, y)
		p.hasMouse = true
	case *tcell.EventInterrupt:
		switch d := ev.Data().(type) {
		case scaler.State:
			p.state = d
		case quitSignal:
			return false
		}
	}
	p.draw()
	return true
}

func (p *Preview) handleRune(r rune) bool {
	cfg := p.sc.Config()
	switch r {
	case 'q':
		return false
	case 'a':
		_ = p.sc.UpdateConfig(scaler.ConfigPatch{MaintainAspectRatio: scaler.Ptr(!cfg.MaintainAspectRatio)})
	case 's':
		_ = p.sc.UpdateConfig(scaler.ConfigPatch{EnableSafeArea: scaler.Ptr(!cfg.EnableSafeArea)})
	case '+', '=':
		sz := scaler.Size{Width: cfg.LogicalSize.Width * 1.1, Height: cfg.LogicalSize.Height * 1.1}
		_ = p.sc.UpdateConfig(scaler.ConfigPatch{LogicalSize: &sz})
	case '-':
		sz := scaler.Size{Width: cfg.LogicalSize.Width / 1.1, Height: cfg.LogicalSize.Height / 1.1}
		_ = p.sc.UpdateConfig(scaler.ConfigPatch{LogicalSize: &sz})
	}
	return true
}

func (p *Preview) draw() {
	s := p.screen
	s.Clear()
	cols, rows := s.Size()
	st := p.state
	r := st.Rect()

	x0, x1 := Span(r.X0, r.X1, p.host.cellW)
	y0, y1 := Span(r.Y0, r.Y1, p.host.cellH)
	drawBox(s, x0, y0, x1, y1, 1, rows-2, cols)

	cfg := p.sc.Config()
	label := fmt.Sprintf("%gx%g @ %.3fx", cfg.LogicalSize.Width, cfg.LogicalSize.Height, st.Scale)
	putString(s, (x0+x1-len(label))/2, (y0+y1)/2, label, styleLabel, cols)

	orient := "portrait"
	if st.IsLandscape {
		orient = "landscape"
	}
	status := fmt.Sprintf(" viewport %.0fx%.0f %s  scale %.3f  offset %.1f,%.1f  aspect=%v",
		st.ViewportSize.Width, st.ViewportSize.Height, orient, st.Scale, st.Offset.X, st.Offset.Y, cfg.MaintainAspectRatio)
	fillRow(s, 0, cols, styleStatus)
	putString(s, 0, 0, status, styleStatus, cols)

	bottom := " q quit  a aspect  s safe area  +/- canvas size"
	if p.hasMouse {
		g := st.ScreenToGame(p.mouse)
		bottom = fmt.Sprintf(" pointer game %.1f,%.1f inside=%v |%s", g.X, g.Y, st.IsPointInGame(p.mouse), bottom)
		cx, cy := p.host.Cell(p.mouse)
		if cy > 0 && cy < rows-1 {
			s.SetContent(cx, cy, '+', nil, styleCursor)
		}
	}
	fillRow(s, rows-1, cols, styleStatus)
	putString(s, 0, rows-1, bottom, styleStatus, cols)
	s.Show()
}

// drawBox draws a frame clipped to rows [minRow, maxRow] and columns
// [0, cols).
func drawBox(s tcell.Screen, x0, y0, x1, y1, minRow, maxRow, cols int) {
	set := func(x, y int, r rune) {
		if x < 0 || x >= cols || y < minRow || y > maxRow {
			return
		}
		s.SetContent(x, y, r, nil, styleFrame)
	}
	for x := x0 + 1; x < x1; x++ {
		set(x, y0, '─')
		set(x, y1, '─')
	}
	for y := y0 + 1; y < y1; y++ {
		set(x0, y, '│')
		set(x1, y, '│')
	}
	set(x0, y0, '┌')
	set(x1, y0, '┐')
	set(x0, y1, '└')
	set(x1, y1, '┘')
}

func putString(s tcell.Screen, x, y int, str string, style tcell.Style, cols int) {
	for _, r := range str {
		if x >= cols {
			return
		}
		if x >= 0 {
			s.SetContent(x, y, r, nil, style)
		}
		x++
	}
}

func fillRow(s tcell.Screen, y, cols int, style tcell.Style) {
	for x := 0; x < cols; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}
