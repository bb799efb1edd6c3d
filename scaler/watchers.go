package scaler

import (
	"sort"
	"sync"
)

// Watchers is the event fan-out hosts use to implement Platform.Watch. The
// zero value is ready to use. Callbacks run outside the lock on the
// emitting goroutine, in registration order.
type Watchers struct {
	mu   sync.Mutex
	fns  map[int]func(Event)
	next int
}

// Add registers fn. The returned stop function may be called more than
// once.
func (w *Watchers) Add(fn func(Event)) (stop func()) {
	w.mu.Lock()
	if w.fns == nil {
		w.fns = make(map[int]func(Event))
	}
	id := w.next
	w.next++
	w.fns[id] = fn
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.fns, id)
			w.mu.Unlock()
		})
	}
}

// Emit calls every registered callback with ev.
func (w *Watchers) Emit(ev Event) {
	w.mu.Lock()
	if len(w.fns) == 0 {
		w.mu.Unlock()
		return
	}
	ids := make([]int, 0, len(w.fns))
	for id := range w.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, w.fns[id])
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Count returns the number of registered callbacks.
func (w *Watchers) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.fns)
}
