package fx

// ArrayProxy is the reactive handle of an *Array.
//
// Unlike ObjectProxy, element reads never unwrap a stored *Ref.
type ArrayProxy struct {
	target   *Array
	readonly bool
}

func (p *ArrayProxy) isProxy() {}

// Raw returns the *Array behind p.
func (p *ArrayProxy) Raw() any { return p.target }

// Target returns the *Array behind p.
func (p *ArrayProxy) Target() *Array { return p.target }

// IsReadonly reports whether p rejects writes.
func (p *ArrayProxy) IsReadonly() bool { return p.readonly }

// At returns the element at i, or nil.
func (p *ArrayProxy) At(i int) any {
	v := p.target.At(i)
	track(p.target, TrackGet, i)
	return wrap(v, p.readonly)
}

// Set stores value at i. Writing past the end grows the array and
// notifies length subscribers.
func (p *ArrayProxy) Set(i int, value any) bool {
	if p.readonly {
		warnReadonly(p.target, TriggerSet, i)
		return false
	}
	if i < 0 {
		return false
	}

	value = ToRaw(value)
	old, had, _ := p.target.swap(i, value)
	switch {
	case !had:
		trigger(p.target, TriggerAdd, i, i, lengthKey, IterateKey)
	case hasChanged(old, value):
		trigger(p.target, TriggerSet, i, i)
	}
	return true
}

// Delete leaves a hole at i. It reports false only when p is read-only.
func (p *ArrayProxy) Delete(i int) bool {
	if p.readonly {
		warnReadonly(p.target, TriggerDelete, i)
		return false
	}
	if _, had := p.target.remove(i); had {
		trigger(p.target, TriggerDelete, i, i, IterateKey)
	}
	return true
}

// Has reports whether index i holds an element.
func (p *ArrayProxy) Has(i int) bool {
	track(p.target, TrackHas, i)
	return p.target.Has(i)
}

// Keys returns the present indices as decimal strings. Any change to
// the set of present indices re-runs the reader.
func (p *ArrayProxy) Keys() []string {
	track(p.target, TrackIterate, IterateKey)
	return p.target.Keys()
}

// Len returns the length.
func (p *ArrayProxy) Len() int {
	track(p.target, TrackGet, lengthKey)
	return p.target.Len()
}

// Push appends values and returns the new length.
func (p *ArrayProxy) Push(values ...any) int {
	if p.readonly {
		warnReadonly(p.target, TriggerAdd, lengthKey)
		return p.target.Len()
	}
	if len(values) == 0 {
		return p.target.Len()
	}

	raw := make([]any, len(values))
	for i, v := range values {
		raw[i] = ToRaw(v)
	}
	n := p.target.Append(raw...)

	keys := make([]any, 0, len(raw)+1)
	for i := n - len(raw); i < n; i++ {
		keys = append(keys, i)
	}
	keys = append(keys, lengthKey, IterateKey)
	trigger(p.target, TriggerAdd, lengthKey, keys...)
	return n
}

// Pop removes and returns the last element.
func (p *ArrayProxy) Pop() (any, bool) {
	if p.readonly {
		warnReadonly(p.target, TriggerDelete, lengthKey)
		return nil, false
	}

	v, ok := p.target.Pop()
	if !ok {
		return nil, false
	}
	last := p.target.Len()
	trigger(p.target, TriggerDelete, last, last, lengthKey, IterateKey)
	return wrap(v, p.readonly), true
}

// SetLen truncates or extends the array to n elements.
func (p *ArrayProxy) SetLen(n int) bool {
	if p.readonly {
		warnReadonly(p.target, TriggerSet, lengthKey)
		return false
	}

	old := p.target.SetLen(n)
	if n < 0 {
		n = 0
	}
	if n == old {
		return true
	}

	keys := []any{lengthKey, IterateKey}
	for i := n; i < old; i++ {
		keys = append(keys, i)
	}
	trigger(p.target, TriggerSet, lengthKey, keys...)
	return true
}

// Range calls fn with each present index and its element, as At returns
// it, until fn returns false.
func (p *ArrayProxy) Range(fn func(i int, value any) bool) {
	n := p.Len()
	for i := 0; i < n; i++ {
		if !p.Has(i) {
			continue
		}
		if !fn(i, p.At(i)) {
			return
		}
	}
}

// IndexOf returns the first index holding v, or -1. Proxies and their raw
// targets match each other.
func (p *ArrayProxy) IndexOf(v any) int {
	p.trackAll()
	return p.target.indexOf(v, searchMatch(strictEqual))
}

// LastIndexOf returns the last index holding v, or -1.
func (p *ArrayProxy) LastIndexOf(v any) int {
	p.trackAll()
	return p.target.lastIndexOf(v, searchMatch(strictEqual))
}

// Includes reports whether the array holds v. NaN finds NaN.
func (p *ArrayProxy) Includes(v any) bool {
	p.trackAll()
	return p.target.indexOf(v, searchMatch(sameValueZero)) >= 0
}

// trackAll subscribes to the length and every index, as a search reads
// them all. Stored Refs are compared by value, so their values are
// tracked too.
func (p *ArrayProxy) trackAll() {
	if activeEffect() == nil {
		return
	}
	n := p.target.Len()
	track(p.target, TrackGet, lengthKey)
	for i := 0; i < n; i++ {
		track(p.target, TrackGet, i)
		if r, ok := p.target.At(i).(*Ref); ok && r != nil {
			track(r, TrackGet, valueKey)
		}
	}
}
