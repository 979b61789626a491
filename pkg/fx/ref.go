package fx

import "sync"

// Ref is a reactive single-value box. Reading Value inside an effect
// subscribes the effect; Set notifies subscribers when the value changes.
//
// Composite values are stored raw and handed back wrapped, so
// ref.Value() of an *Object is its reactive proxy.
type Ref struct {
	state targetState

	mu    sync.RWMutex
	value any
}

// NewRef boxes v. If v is already a *Ref it is returned unchanged.
func NewRef(v any) *Ref {
	if r, ok := v.(*Ref); ok {
		return r
	}
	return &Ref{value: ToRaw(v)}
}

func (r *Ref) trackState() *targetState {
	return &r.state
}

func (r *Ref) boxed() {}

// Value returns the current value and tracks the read.
func (r *Ref) Value() any {
	track(r, TrackGet, valueKey)
	return r.Peek()
}

// Peek returns the current value without tracking.
func (r *Ref) Peek() any {
	r.mu.RLock()
	v := r.value
	r.mu.RUnlock()
	return ToReactive(v)
}

// raw returns the stored value without tracking or wrapping.
func (r *Ref) raw() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// GetAny implements Getter.
func (r *Ref) GetAny() any {
	return r.Value()
}

// Set stores v and notifies subscribers if the value changed.
func (r *Ref) Set(v any) {
	v = ToRaw(v)

	r.mu.Lock()
	old := r.value
	if !hasChanged(old, v) {
		r.mu.Unlock()
		return
	}
	r.value = v
	r.mu.Unlock()

	trigger(r, TriggerSet, valueKey, valueKey)
}

// IsRef reports whether v is a *Ref.
func IsRef(v any) bool {
	_, ok := v.(*Ref)
	return ok
}

// Unref returns the value of v if it is a *Ref, and v otherwise.
func Unref(v any) any {
	if r, ok := v.(*Ref); ok {
		return r.Value()
	}
	return v
}
