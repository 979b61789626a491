package fx

import (
	"sync"
	"sync/atomic"
)

// effectIDs hands out effect ids, starting at 1.
var effectIDs atomic.Uint64

// Scheduler receives an invalidated effect instead of the effect running
// inline. Queue.Push is the usual scheduler.
type Scheduler func(*Fx)

// Fx is a computation that tracks the reactive state it reads.
//
// Every run starts by dropping all dependency edges from the previous
// run, then records a fresh set while fn executes, so branches that are
// no longer taken stop notifying the effect. When any recorded
// dependency changes, the effect re-runs inline or, if it has a
// scheduler, is handed to the scheduler.
type Fx struct {
	id uint64

	// fn is the wrapped computation.
	fn func() any

	// deps are the dependency sets this effect is currently a member of.
	deps   []*dep
	depsMu sync.Mutex

	// active is cleared by Stop and never set again.
	active atomic.Bool

	lazy         bool
	computed     bool
	allowRecurse bool

	scheduler Scheduler
	onStop    func()
	onTrack   func(DebugEvent)
	onTrigger func(DebugEvent)

	// runs counts completed and failed runs.
	runs atomic.Uint64
}

// Option configures an effect created with New or Effect.
type Option func(*Fx)

// Lazy defers the first run until Run is called.
func Lazy() Option {
	return func(e *Fx) { e.lazy = true }
}

// AsComputed marks the effect as backing a computed value. Computed
// effects are notified before plain effects during a trigger.
func AsComputed() Option {
	return func(e *Fx) { e.computed = true }
}

// WithScheduler hands invalidations to s instead of re-running inline.
//
// Example:
//
//	fx.Effect(render, fx.WithScheduler(fx.QueuePush))
func WithScheduler(s Scheduler) Option {
	return func(e *Fx) { e.scheduler = s }
}

// OnStop registers fn to run once when the effect is stopped.
func OnStop(fn func()) Option {
	return func(e *Fx) { e.onStop = fn }
}

// OnTrack registers a hook called whenever the effect gains a dependency.
func OnTrack(fn func(DebugEvent)) Option {
	return func(e *Fx) { e.onTrack = fn }
}

// OnTrigger registers a hook called whenever a write invalidates the effect.
func OnTrigger(fn func(DebugEvent)) Option {
	return func(e *Fx) { e.onTrigger = fn }
}

// AllowRecurse lets a write made by the effect itself re-trigger it.
func AllowRecurse() Option {
	return func(e *Fx) { e.allowRecurse = true }
}

// New creates an effect around fn. Unless Lazy is given, fn runs
// immediately to collect its dependencies.
func New(fn func() any, opts ...Option) *Fx {
	e := &Fx{
		id: effectIDs.Add(1),
		fn: fn,
	}
	e.active.Store(true)

	for _, opt := range opts {
		opt(e)
	}

	recordEffectCreated()

	if !e.lazy {
		e.Run()
	}
	return e
}

// Effect creates and runs an eager effect.
//
// Example:
//
//	state := fx.ReactiveObject(fx.NewObject("count", 0))
//	e := fx.Effect(func() {
//	    fmt.Println("count is", state.Get("count"))
//	})
//	defer e.Stop()
func Effect(fn func(), opts ...Option) *Fx {
	return New(func() any {
		fn()
		return nil
	}, opts...)
}

// Stop stops e. It is a no-op for a nil effect.
func Stop(e *Fx) {
	if e != nil {
		e.Stop()
	}
}

// ID returns the unique identifier for this effect.
func (e *Fx) ID() uint64 {
	return e.id
}

// Active reports whether the effect has not been stopped.
func (e *Fx) Active() bool {
	return e.active.Load()
}

// IsLazy reports whether the effect was created with Lazy.
func (e *Fx) IsLazy() bool {
	return e.lazy
}

// IsComputed reports whether the effect backs a computed value.
func (e *Fx) IsComputed() bool {
	return e.computed
}

// Runs returns how many times the effect function has been invoked.
func (e *Fx) Runs() uint64 {
	return e.runs.Load()
}

// Deps returns how many dependency sets the effect belongs to.
func (e *Fx) Deps() int {
	e.depsMu.Lock()
	defer e.depsMu.Unlock()
	return len(e.deps)
}

// Run executes the effect function with e as the current effect and
// returns its result.
//
// A stopped effect runs fn without tracking (or does nothing when it has
// a scheduler). A run requested while e is already running on the same
// goroutine returns nil. If fn panics, the tracking stack is still
// unwound and the edges recorded before the panic are kept.
func (e *Fx) Run() any {
	if !e.active.Load() {
		if e.scheduler != nil {
			return nil
		}
		return e.fn()
	}
	if effectOnStack(e) {
		return nil
	}

	e.cleanup()

	restore := pushEffect(e)
	defer restore()

	e.runs.Add(1)
	recordEffectRun()

	return e.fn()
}

// Stop removes the effect from every dependency set and deactivates it
// permanently. Stop is idempotent.
func (e *Fx) Stop() {
	if !e.active.CompareAndSwap(true, false) {
		return
	}

	e.cleanup()
	recordEffectStopped()

	if e.onStop != nil {
		e.onStop()
	}
}

// cleanup unsubscribes e from all of its dependency sets.
func (e *Fx) cleanup() {
	e.depsMu.Lock()
	deps := e.deps
	e.deps = nil
	e.depsMu.Unlock()

	for _, d := range deps {
		d.remove(e)
	}
}

// addDep records membership of d. Called by track after d.add(e).
func (e *Fx) addDep(d *dep) {
	if !e.active.Load() {
		d.remove(e)
		return
	}

	e.depsMu.Lock()
	e.deps = append(e.deps, d)
	e.depsMu.Unlock()
}
