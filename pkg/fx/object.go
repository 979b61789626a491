package fx

// ObjectProxy is the reactive handle of an *Object.
type ObjectProxy struct {
	target   *Object
	readonly bool
}

func (p *ObjectProxy) isProxy() {}

// Raw returns the *Object behind p.
func (p *ObjectProxy) Raw() any { return p.target }

// Target returns the *Object behind p.
func (p *ObjectProxy) Target() *Object { return p.target }

// IsReadonly reports whether p rejects writes.
func (p *ObjectProxy) IsReadonly() bool { return p.readonly }

// Get returns the value at key, or nil. A stored *Ref is read through, and
// nested containers are returned as proxies.
func (p *ObjectProxy) Get(key string) any {
	v, _ := p.Lookup(key)
	return v
}

// Lookup is like Get but also reports whether key is present.
func (p *ObjectProxy) Lookup(key string) (any, bool) {
	v, ok := p.target.Get(key)
	track(p.target, TrackGet, key)
	return unwrapRef(v, p.readonly), ok
}

// Set stores value at key and reports whether the write was accepted.
//
// If the current value is a *Ref and value is not, the Ref is updated in
// place instead of being replaced.
func (p *ObjectProxy) Set(key string, value any) bool {
	if p.readonly {
		warnReadonly(p.target, TriggerSet, key)
		return false
	}

	value = ToRaw(value)
	if cur, ok := p.target.Get(key); ok {
		if r, isRef := cur.(*Ref); isRef && !IsRef(value) {
			r.Set(value)
			return true
		}
	}

	old, existed := p.target.swap(key, value)
	switch {
	case !existed:
		trigger(p.target, TriggerAdd, key, key, IterateKey)
	case hasChanged(old, value):
		trigger(p.target, TriggerSet, key, key)
	}
	return true
}

// Delete removes key. It reports false only when p is read-only.
func (p *ObjectProxy) Delete(key string) bool {
	if p.readonly {
		warnReadonly(p.target, TriggerDelete, key)
		return false
	}
	if _, existed := p.target.remove(key); existed {
		trigger(p.target, TriggerDelete, key, key, IterateKey)
	}
	return true
}

// Has reports whether key is present.
func (p *ObjectProxy) Has(key string) bool {
	track(p.target, TrackHas, key)
	return p.target.Has(key)
}

// Keys returns the keys in insertion order.
func (p *ObjectProxy) Keys() []string {
	track(p.target, TrackIterate, IterateKey)
	return p.target.Keys()
}

// Len returns the number of keys.
func (p *ObjectProxy) Len() int {
	track(p.target, TrackIterate, IterateKey)
	return p.target.Len()
}

// Range calls fn with each key and its value as Get returns it, until fn
// returns false.
func (p *ObjectProxy) Range(fn func(key string, value any) bool) {
	for _, key := range p.Keys() {
		v, ok := p.Lookup(key)
		if !ok {
			continue
		}
		if !fn(key, v) {
			return
		}
	}
}
