package scaler

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakePlatform struct {
	mu       sync.Mutex
	window   Size
	watchers map[int]func(Event)
	next     int
	watches  int
	stops    int
}

func newFakePlatform(w, h float64) *fakePlatform {
	return &fakePlatform{window: Size{w, h}, watchers: map[int]func(Event){}}
}

func (f *fakePlatform) WindowSize() Size {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.window
}

func (f *fakePlatform) VisualViewport() (Size, bool)   { return Size{}, false }
func (f *fakePlatform) SafeAreaInsets() (Insets, bool) { return Insets{}, false }
func (f *fakePlatform) DevicePixelRatio() float64      { return 1 }

func (f *fakePlatform) Watch(fn func(Event)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.watchers[id] = fn
	f.watches++
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.watchers[id]; ok {
			delete(f.watchers, id)
			f.stops++
		}
	}
}

func (f *fakePlatform) resize(w, h float64) {
	f.mu.Lock()
	f.window = Size{w, h}
	var fns []func(Event)
	for _, fn := range f.watchers {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(EventResize)
	}
}

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) record(st State) {
	r.mu.Lock()
	r.states = append(r.states, st)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func (r *recorder) last() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[len(r.states)-1]
}

func newTestScaler(t *testing.T, p Platform) (*Scaler, *ManualClock) {
	t.Helper()
	clock := NewManualClock(time.Unix(0, 0))
	s, err := New(p, DefaultConfig(), WithClock(clock))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, clock
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogicalSize.Width = 0
	s, err := New(newFakePlatform(100, 100), cfg)
	if !errors.Is(err, ErrInvalidConfig) || s != nil {
		t.Fatalf("got %v, %v; want ErrInvalidConfig", s, err)
	}
}

func TestNewComputesInitialState(t *testing.T) {
	s, _ := newTestScaler(t, newFakePlatform(1600, 1200))
	if st := s.State(); st.Scale != 2 {
		t.Fatalf("initial scale %v; want 2", st.Scale)
	}
}

func TestSubscribeDeliversImmediately(t *testing.T) {
	p := newFakePlatform(1600, 1200)
	s, _ := newTestScaler(t, p)
	p.resize(1000, 1200) // no subscribers yet, nothing watches

	var r recorder
	unsub := s.Subscribe(r.record)
	defer unsub()
	if r.count() != 1 {
		t.Fatalf("got %d initial states; want 1", r.count())
	}
	if r.last().Scale != 1.25 {
		t.Fatalf("initial state should be read at subscribe time, scale %v", r.last().Scale)
	}
}

func TestDebounceDeliversFinalState(t *testing.T) {
	p := newFakePlatform(1600, 1200)
	s, clock := newTestScaler(t, p)
	var r recorder
	defer s.Subscribe(r.record)()

	p.resize(1200, 1200)
	clock.Advance(50 * time.Millisecond)
	p.resize(1100, 1200)
	clock.Advance(50 * time.Millisecond)
	p.resize(1000, 1200)
	if r.count() != 1 {
		t.Fatalf("states delivered during burst: %d", r.count())
	}

	clock.Advance(99 * time.Millisecond)
	if r.count() != 1 {
		t.Fatalf("delivered before quiet period ended")
	}
	clock.Advance(time.Millisecond)
	if r.count() != 2 {
		t.Fatalf("got %d states; want 2", r.count())
	}
	if st := r.last(); st.Scale != 1.25 || st.Offset != (Point{0, 225}) {
		t.Fatalf("final state %+v", st)
	}
	if s.State().Scale != 1.25 {
		t.Fatalf("stored state not updated")
	}
}

func TestZeroDebounceDeliversEachEvent(t *testing.T) {
	p := newFakePlatform(1600, 1200)
	clock := NewManualClock(time.Unix(0, 0))
	cfg := DefaultConfig()
	cfg.Debounce = 0
	s, err := New(p, cfg, WithClock(clock))
	if err != nil {
		t.Fatal(err)
	}
	var r recorder
	defer s.Subscribe(r.record)()
	p.resize(1000, 1200)
	p.resize(800, 600)
	if r.count() != 3 {
		t.Fatalf("got %d states; want 3", r.count())
	}
	if clock.Pending() != 0 {
		t.Fatalf("zero debounce scheduled timers")
	}
}

func TestMultipleSubscribers(t *testing.T) {
	p := newFakePlatform(1600, 1200)
	s, clock := newTestScaler(t, p)

	var a, b recorder
	unsubA := s.Subscribe(a.record)
	unsubB := s.Subscribe(b.record)
	if p.watches != 1 {
		t.Fatalf("watch attached %d times; want 1", p.watches)
	}

	unsubA()
	unsubA()
	if s.Subscribers() != 1 {
		t.Fatalf("subscribers %d; want 1", s.Subscribers())
	}

	p.resize(1000, 1200)
	clock.Advance(DefaultDebounce)
	if a.count() != 1 {
		t.Fatalf("unsubscribed callback received %d states", a.count())
	}
	if b.count() != 2 {
		t.Fatalf("remaining callback received %d states; want 2", b.count())
	}

	unsubB()
	if p.stops != 1 {
		t.Fatalf("platform watch not stopped after last unsubscribe")
	}
	p.resize(800, 600)
	clock.Advance(DefaultDebounce)
	if b.count() != 2 {
		t.Fatalf("delivery after unsubscribe")
	}
}

func TestUnsubscribeDropsPendingTimer(t *testing.T) {
	p := newFakePlatform(1600, 1200)
	s, clock := newTestScaler(t, p)
	var r recorder
	unsub := s.Subscribe(r.record)
	p.resize(1000, 1200)
	unsub()
	if clock.Pending() != 0 {
		t.Fatalf("pending timers after last unsubscribe: %d", clock.Pending())
	}
}

func TestResubscribeReattaches(t *testing.T) {
	p := newFakePlatform(1600, 1200)
	s, clock := newTestScaler(t, p)
	s.Subscribe(func(State) {})()

	var r recorder
	defer s.Subscribe(r.record)()
	if p.watches != 2 {
		t.Fatalf("watches %d; want 2", p.watches)
	}
	p.resize(1000, 1200)
	clock.Advance(DefaultDebounce)
	if r.count() != 2 {
		t.Fatalf("got %d states; want 2", r.count())
	}
}

func TestUpdateConfigNotifiesAndCancelsPending(t *testing.T) {
	p := newFakePlatform(1600, 1200)
	s, clock := newTestScaler(t, p)
	var r recorder
	defer s.Subscribe(r.record)()

	p.resize(1000, 1200)
	if err := s.UpdateConfig(ConfigPatch{LogicalSize: &Size{400, 300}}); err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	if r.count() != 2 {
		t.Fatalf("got %d states; want 2", r.count())
	}
	// 1000x1200 with a 400x300 canvas: min(2.5, 4) = 2.5
	if st := r.last(); st.Scale != 2.5 {
		t.Fatalf("scale %v; want 2.5", st.Scale)
	}
	clock.Advance(time.Second)
	if r.count() != 2 {
		t.Fatalf("superseded debounce still delivered")
	}
}

func TestUpdateConfigInvalidLeavesConfig(t *testing.T) {
	p := newFakePlatform(1600, 1200)
	s, _ := newTestScaler(t, p)
	var r recorder
	defer s.Subscribe(r.record)()

	err := s.UpdateConfig(ConfigPatch{MinScale: Ptr(10.0)})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("got %v; want ErrInvalidConfig", err)
	}
	if s.Config().MinScale != 0.2 {
		t.Fatalf("config changed on error")
	}
	if r.count() != 1 {
		t.Fatalf("subscribers notified on error")
	}
}

func TestDestroy(t *testing.T) {
	p := newFakePlatform(1600, 1200)
	s, clock := newTestScaler(t, p)
	var r recorder
	s.Subscribe(r.record)
	p.resize(1000, 1200)
	s.Destroy()
	s.Destroy()

	clock.Advance(time.Second)
	if r.count() != 1 {
		t.Fatalf("delivery after destroy")
	}
	if p.stops != 1 {
		t.Fatalf("watch not stopped")
	}
	if s.State().Scale != 2 {
		t.Fatalf("last state not readable after destroy")
	}
	if err := s.UpdateConfig(ConfigPatch{}); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("got %v; want ErrDestroyed", err)
	}

	var late recorder
	s.Subscribe(late.record)()
	if late.count() != 1 || p.watches != 1 {
		t.Fatalf("subscribe after destroy should only replay state")
	}
}

func TestComputeStateIsSideEffectFree(t *testing.T) {
	p := newFakePlatform(1600, 1200)
	s, _ := newTestScaler(t, p)
	p.resize(1000, 1200)
	if st := s.ComputeState(); st.Scale != 1.25 {
		t.Fatalf("scale %v; want 1.25", st.Scale)
	}
	if s.State().Scale != 2 {
		t.Fatalf("ComputeState stored its result")
	}
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	p := newFakePlatform(1600, 1200)
	clock := NewManualClock(time.Unix(0, 0))
	s, err := New(p, DefaultConfig(), WithClock(clock), WithLogger(log.New(&buf, "", 0)))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Subscribe(func(State) {})()
	p.resize(1000, 1200)
	clock.Advance(DefaultDebounce)
	if !strings.Contains(buf.String(), "scale 1.2500") {
		t.Fatalf("log missing recompute line: %q", buf.String())
	}
}

func TestSystemClockDebounce(t *testing.T) {
	p := newFakePlatform(1600, 1200)
	cfg := DefaultConfig()
	cfg.Debounce = 5 * time.Millisecond
	s, err := New(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	got := make(chan State, 4)
	defer s.Subscribe(func(st State) { got <- st })()
	<-got

	p.resize(1000, 1200)
	select {
	case st := <-got:
		if st.Scale != 1.25 {
			t.Fatalf("scale %v; want 1.25", st.Scale)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("debounced state never arrived")
	}
}

// eagerPlatform reports a new window size as soon as it is watched, as a
// host that delivers a pending resize on registration would.
type eagerPlatform struct {
	*fakePlatform
	next Size
}

func (e *eagerPlatform) Watch(fn func(Event)) func() {
	stop := e.fakePlatform.Watch(fn)
	e.fakePlatform.mu.Lock()
	e.fakePlatform.window = e.next
	e.fakePlatform.mu.Unlock()
	fn(EventResize)
	return stop
}

func TestSubscribeInitialStateComesFirst(t *testing.T) {
	p := &eagerPlatform{fakePlatform: newFakePlatform(1600, 1200), next: Size{1000, 1200}}
	cfg := DefaultConfig()
	cfg.Debounce = 0
	s, err := New(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	var rec recorder
	s.Subscribe(rec.record)

	if rec.count() != 2 {
		t.Fatalf("got %d states; want 2", rec.count())
	}
	if first := rec.states[0]; first.Scale != 2 {
		t.Fatalf("first state scale %v; want initial 2", first.Scale)
	}
	if last := rec.last(); last.Scale != 1.25 {
		t.Fatalf("last state scale %v; want 1.25", last.Scale)
	}
	if s.State().Scale != 1.25 {
		t.Fatalf("stored state scale %v", s.State().Scale)
	}
}
