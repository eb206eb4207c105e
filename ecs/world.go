package ecs

import (
	"time"

	"github.com/milk9111/overworld/ecs/component"
)

// World owns entities, component stores, the per-tick looper registry, and
// the physics game-time clock. Everything runs on the tick goroutine.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
	events   EventQueue

	loopers []looper

	now  time.Duration
	step time.Duration
}

// looper is a named per-physics-tick callback.
type looper struct {
	name string
	fn   func(*World)
}

// NewWorld creates an empty ECS world with a 60Hz fixed step.
func NewWorld() *World {
	return &World{
		stores: make(map[component.ComponentID]*SparseSet),
		step:   time.Second / 60,
	}
}

// SetFixedStep changes the fixed timestep the clock advances by. Ignored for
// non-positive durations.
func (w *World) SetFixedStep(d time.Duration) {
	if d > 0 {
		w.step = d
	}
}

// FixedStep returns the fixed timestep duration.
func (w *World) FixedStep() time.Duration {
	return w.step
}

// Dt returns the fixed timestep in seconds.
func (w *World) Dt() float64 {
	return w.step.Seconds()
}

// Now returns the monotonic physics game time. It advances only with
// StepClock, never with wall time.
func (w *World) Now() time.Duration {
	return w.now
}

// StepClock advances the physics clock by one fixed step.
func (w *World) StepClock() {
	w.now += w.step
}

// PerTick converts a per-second rate into this tick's amount.
func (w *World) PerTick(perSecond float64) float64 {
	return perSecond * w.Dt()
}

// AddLooper registers a named per-tick callback, replacing any previous
// looper with the same name. Loopers run in registration order.
func (w *World) AddLooper(name string, fn func(*World)) {
	if fn == nil {
		return
	}
	for i := range w.loopers {
		if w.loopers[i].name == name {
			w.loopers[i].fn = fn
			return
		}
	}
	w.loopers = append(w.loopers, looper{name: name, fn: fn})
}

// RemoveLooper unregisters a looper by name.
func (w *World) RemoveLooper(name string) bool {
	for i := range w.loopers {
		if w.loopers[i].name == name {
			w.loopers = append(w.loopers[:i], w.loopers[i+1:]...)
			return true
		}
	}
	return false
}

// RunLoopers invokes every registered looper once. The list is snapshotted
// first so a looper may unregister itself (or others) mid-run.
func (w *World) RunLoopers() {
	snapshot := append([]looper(nil), w.loopers...)
	for _, l := range snapshot {
		l.fn(w)
	}
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	return &w.events
}

// store returns the sparse set for a component id, creating it on first use.
func (w *World) store(id component.ComponentID) *SparseSet {
	s, ok := w.stores[id]
	if !ok {
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}

// storeIfExists returns the sparse set for a component id, or nil.
func (w *World) storeIfExists(id component.ComponentID) *SparseSet {
	return w.stores[id]
}
