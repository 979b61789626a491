package fx

import "sync"

// Computed is a lazily evaluated derived value.
//
// The getter runs on the first Get and again only after one of the
// values it read has changed. Invalidation does not recompute; it marks
// the value dirty and notifies the effects that read it.
type Computed[T any] struct {
	state  targetState
	effect *Fx
	getter func() T

	mu    sync.Mutex
	value T
	dirty bool
}

// NewComputed creates a computed value backed by getter.
//
// Example:
//
//	count := fx.NewRef(1)
//	double := fx.NewComputed(func() int { return count.Value().(int) * 2 })
//	double.Get() // 2
func NewComputed[T any](getter func() T) *Computed[T] {
	c := &Computed[T]{getter: getter, dirty: true}
	c.effect = New(c.evaluate, Lazy(), AsComputed(), WithScheduler(func(*Fx) {
		c.invalidate()
	}))
	return c
}

func (c *Computed[T]) trackState() *targetState {
	return &c.state
}

func (c *Computed[T]) boxed() {}

func (c *Computed[T]) evaluate() any {
	v := c.getter()

	c.mu.Lock()
	c.value = v
	c.dirty = false
	c.mu.Unlock()
	return nil
}

func (c *Computed[T]) invalidate() {
	c.mu.Lock()
	if c.dirty {
		c.mu.Unlock()
		return
	}
	c.dirty = true
	c.mu.Unlock()

	trigger(c, TriggerSet, valueKey, valueKey)
}

// Get returns the value, recomputing it if dirty, and tracks the read.
func (c *Computed[T]) Get() T {
	v := c.Peek()
	track(c, TrackGet, valueKey)
	return v
}

// Peek returns the value, recomputing it if dirty, without tracking.
// A stopped computed keeps returning its last value.
func (c *Computed[T]) Peek() T {
	if c.Dirty() && c.effect.Active() {
		c.effect.Run()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// GetAny implements Getter.
func (c *Computed[T]) GetAny() any {
	return c.Get()
}

// Dirty reports whether the next read will recompute.
func (c *Computed[T]) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Effect returns the effect backing c.
func (c *Computed[T]) Effect() *Fx {
	return c.effect
}

// Stop detaches c from its dependencies. The last value is retained.
func (c *Computed[T]) Stop() {
	c.effect.Stop()
}
