package scaler

import (
	"errors"
	"log"
	"sync"
)

// ErrDestroyed is returned by UpdateConfig after Destroy.
var ErrDestroyed = errors.New("scaler destroyed")

// Option customizes a Scaler.
type Option func(*Scaler)

// WithClock replaces the clock used for debouncing.
func WithClock(c Clock) Option {
	return func(s *Scaler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger enables debug logging of recomputations.
func WithLogger(l *log.Logger) Option {
	return func(s *Scaler) { s.logger = l }
}

type subscriber struct {
	id uint64
	fn func(State)
}

// Scaler keeps a State current for a Platform. Platform events are
// debounced; subscribers receive the state computed once the burst ends.
type Scaler struct {
	platform Platform
	clock    Clock
	logger   *log.Logger

	mu     sync.Mutex
	cfg    Config
	state  State
	subs   []subscriber
	nextID uint64

	// gen invalidates debounce timers that were superseded.
	gen   uint64
	timer Timer

	watching  bool
	watchGen  uint64
	stopWatch func()

	destroyed bool
}

// New validates cfg and computes the initial state synchronously.
func New(p Platform, cfg Config, opts ...Option) (*Scaler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scaler{
		platform: p,
		clock:    SystemClock{},
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = Compute(ReadGeometry(p), cfg)
	return s, nil
}

// ComputeState reads the platform and returns a fresh state without
// storing it or notifying anyone.
func (s *Scaler) ComputeState() State {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()
	return Compute(ReadGeometry(s.platform), cfg)
}

// State returns the last computed state. It stays readable after Destroy.
func (s *Scaler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Config returns the active configuration.
func (s *Scaler) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Subscribe registers fn and immediately calls it with the current state.
// The returned function removes exactly this subscription and may be
// called more than once.
func (s *Scaler) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	if s.destroyed {
		st := s.state
		s.mu.Unlock()
		fn(st)
		return func() {}
	}
	st := Compute(ReadGeometry(s.platform), s.cfg)
	s.state = st
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	attach := !s.watching
	var watchGen uint64
	if attach {
		s.watching = true
		s.watchGen++
		watchGen = s.watchGen
	}
	s.mu.Unlock()

	// fn sees its initial state before any event the watch can deliver.
	fn(st)
	if attach {
		s.attach(watchGen)
	}

	var once sync.Once
	return func() { once.Do(func() { s.unsubscribe(id) }) }
}

// attach registers with the platform outside the lock so hosts that emit
// from inside Watch cannot deadlock.
func (s *Scaler) attach(watchGen uint64) {
	stop := s.platform.Watch(s.onEvent)
	s.mu.Lock()
	if s.destroyed || !s.watching || s.watchGen != watchGen {
		s.mu.Unlock()
		stop()
		return
	}
	s.stopWatch = stop
	s.mu.Unlock()
	s.debugf("scaler: watching platform")
}

func (s *Scaler) unsubscribe(id uint64) {
	s.mu.Lock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			break
		}
	}
	var stop func()
	if len(s.subs) == 0 && s.watching {
		s.watching = false
		stop = s.stopWatch
		s.stopWatch = nil
		s.cancelPendingLocked()
	}
	s.mu.Unlock()

	if stop != nil {
		stop()
		s.debugf("scaler: last subscriber left, stopped watching")
	}
}

// UpdateConfig merges patch into the active config, recomputes and
// notifies every subscriber. A pending debounced recomputation is
// dropped. On error nothing changes.
func (s *Scaler) UpdateConfig(patch ConfigPatch) error {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return ErrDestroyed
	}
	next := patch.Apply(s.cfg)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cfg = next
	s.cancelPendingLocked()
	st := Compute(ReadGeometry(s.platform), next)
	s.state = st
	subs := s.snapshotLocked()
	s.mu.Unlock()

	s.debugf("scaler: config updated, logical %vx%v scale %.4f", next.LogicalSize.Width, next.LogicalSize.Height, st.Scale)
	notify(subs, st)
	return nil
}

// Destroy detaches from the platform and drops all subscribers. The last
// state remains readable.
func (s *Scaler) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	s.cancelPendingLocked()
	stop := s.stopWatch
	s.stopWatch = nil
	s.watching = false
	s.subs = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Subscribers returns the number of active subscriptions.
func (s *Scaler) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Scaler) onEvent(ev Event) {
	s.mu.Lock()
	if s.destroyed || len(s.subs) == 0 {
		s.mu.Unlock()
		return
	}
	s.cancelPendingLocked()
	gen := s.gen
	d := s.cfg.Debounce
	if d > 0 {
		s.timer = s.clock.AfterFunc(d, func() { s.fire(gen) })
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.debugf("scaler: %v", ev)
	s.fire(gen)
}

func (s *Scaler) fire(gen uint64) {
	s.mu.Lock()
	if s.destroyed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	st := Compute(ReadGeometry(s.platform), s.cfg)
	s.state = st
	subs := s.snapshotLocked()
	s.mu.Unlock()

	s.debugf("scaler: viewport %vx%v scale %.4f offset %.1f,%.1f",
		st.ViewportSize.Width, st.ViewportSize.Height, st.Scale, st.Offset.X, st.Offset.Y)
	notify(subs, st)
}

// cancelPendingLocked bumps the generation so an in-flight timer callback
// becomes a no-op even if Stop loses the race.
func (s *Scaler) cancelPendingLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scaler) snapshotLocked() []subscriber {
	if len(s.subs) == 0 {
		return nil
	}
	out := make([]subscriber, len(s.subs))
	copy(out, s.subs)
	return out
}

func notify(subs []subscriber, st State) {
	for _, sub := range subs {
		sub.fn(st)
	}
}

func (s *Scaler) debugf(format string, v ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, v...)
	}
}
