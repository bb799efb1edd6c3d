//go:build js && wasm

package platform

import (
	"syscall/js"

	"gamescale/scaler"
)

// Browser reads geometry from the hosting page. The page is expected to
// publish the safe-area insets as --safe-area-inset-* custom properties
// set from env(safe-area-inset-*).
type Browser struct {
	win js.Value
}

// NewBrowser binds to the global window.
func NewBrowser() *Browser {
	return &Browser{win: js.Global()}
}

func (b *Browser) WindowSize() scaler.Size {
	return scaler.Size{
		Width:  number(b.win.Get("innerWidth"), 0),
		Height: number(b.win.Get("innerHeight"), 0),
	}
}

func (b *Browser) VisualViewport() (scaler.Size, bool) {
	vv := b.visualViewport()
	if !present(vv) {
		return scaler.Size{}, false
	}
	return scaler.Size{
		Width:  number(vv.Get("width"), 0),
		Height: number(vv.Get("height"), 0),
	}, true
}

func (b *Browser) SafeAreaInsets() (scaler.Insets, bool) {
	doc := b.win.Get("document")
	if !present(doc) || b.win.Get("getComputedStyle").Type() != js.TypeFunction {
		return scaler.Insets{}, false
	}
	root := doc.Get("documentElement")
	if !present(root) {
		return scaler.Insets{}, false
	}
	style := b.win.Call("getComputedStyle", root)
	prop := func(side string) string {
		v := style.Call("getPropertyValue", "--safe-area-inset-"+side)
		if v.Type() != js.TypeString {
			return ""
		}
		return v.String()
	}
	return insetsFromCSS(prop("top"), prop("right"), prop("bottom"), prop("left"))
}

func (b *Browser) DevicePixelRatio() float64 {
	return number(b.win.Get("devicePixelRatio"), 1)
}

// Watch listens for window resize and orientationchange, and for resize and
// scroll on the visual viewport when the browser has one.
func (b *Browser) Watch(fn func(scaler.Event)) func() {
	type binding struct {
		target js.Value
		name   string
		cb     js.Func
	}
	var bound []binding
	listen := func(target js.Value, name string, ev scaler.Event) {
		cb := js.FuncOf(func(this js.Value, args []js.Value) any {
			fn(ev)
			return nil
		})
		target.Call("addEventListener", name, cb)
		bound = append(bound, binding{target, name, cb})
	}

	listen(b.win, "resize", scaler.EventResize)
	listen(b.win, "orientationchange", scaler.EventOrientation)
	if vv := b.visualViewport(); present(vv) {
		listen(vv, "resize", scaler.EventVisualResize)
		listen(vv, "scroll", scaler.EventVisualScroll)
	}

	return func() {
		for _, bd := range bound {
			bd.target.Call("removeEventListener", bd.name, bd.cb)
			bd.cb.Release()
		}
		bound = nil
	}
}

func (b *Browser) visualViewport() js.Value {
	return b.win.Get("visualViewport")
}

func present(v js.Value) bool {
	return !v.IsUndefined() && !v.IsNull()
}

func number(v js.Value, def float64) float64 {
	if v.Type() != js.TypeNumber {
		return def
	}
	return v.Float()
}
