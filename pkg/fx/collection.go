package fx

// MapProxy is the reactive handle of a *Map. Keys given as proxies are
// normalised to their raw targets.
type MapProxy struct {
	target   *Map
	readonly bool
}

// MapEntry is one key/value pair yielded by MapProxy.Entries.
type MapEntry struct {
	Key   any
	Value any
}

func (p *MapProxy) isProxy() {}

// Raw returns the *Map behind p.
func (p *MapProxy) Raw() any { return p.target }

// Target returns the *Map behind p.
func (p *MapProxy) Target() *Map { return p.target }

// IsReadonly reports whether p rejects writes.
func (p *MapProxy) IsReadonly() bool { return p.readonly }

// Get returns the value stored under key, or nil. A stored *Ref is read
// through.
func (p *MapProxy) Get(key any) any {
	key = ToRaw(key)
	v, _ := p.target.Get(key)
	track(p.target, TrackGet, key)
	return unwrapRef(v, p.readonly)
}

// Has reports whether key is present.
func (p *MapProxy) Has(key any) bool {
	key = ToRaw(key)
	track(p.target, TrackHas, key)
	return p.target.Has(key)
}

// Set stores value under key, replacing any stored *Ref. It reports
// false when p is read-only or key cannot key a map.
func (p *MapProxy) Set(key, value any) bool {
	if p.readonly {
		warnReadonly(p.target, TriggerSet, key)
		return false
	}

	key, value = ToRaw(key), ToRaw(value)
	if !hashableKey(key) {
		return false
	}
	old, existed := p.target.swap(key, value)
	switch {
	case !existed:
		trigger(p.target, TriggerAdd, key, key, IterateKey, MapKeyIterateKey)
	case hasChanged(old, value):
		trigger(p.target, TriggerSet, key, key, IterateKey)
	}
	return true
}

// Delete removes key and reports whether it was present.
func (p *MapProxy) Delete(key any) bool {
	if p.readonly {
		warnReadonly(p.target, TriggerDelete, key)
		return false
	}

	key = ToRaw(key)
	_, existed := p.target.remove(key)
	if existed {
		trigger(p.target, TriggerDelete, key, key, IterateKey, MapKeyIterateKey)
	}
	return existed
}

// Clear removes every entry.
func (p *MapProxy) Clear() {
	if p.readonly {
		warnReadonly(p.target, TriggerClear, nil)
		return
	}
	if p.target.Clear() > 0 {
		triggerAll(p.target, TriggerClear)
	}
}

// Size returns the number of entries.
func (p *MapProxy) Size() int {
	track(p.target, TrackIterate, IterateKey)
	return p.target.Size()
}

// ForEach calls fn for each entry in insertion order. Values are the same
// as Get would return.
func (p *MapProxy) ForEach(fn func(value, key any)) {
	track(p.target, TrackIterate, IterateKey)
	p.target.Range(func(k, v any) bool {
		fn(unwrapRef(v, p.readonly), wrap(k, p.readonly))
		return true
	})
}

// Keys returns the keys in insertion order.
func (p *MapProxy) Keys() []any {
	track(p.target, TrackIterate, MapKeyIterateKey)
	keys := p.target.Keys()
	for i, k := range keys {
		keys[i] = wrap(k, p.readonly)
	}
	return keys
}

// Values returns the values in key insertion order.
func (p *MapProxy) Values() []any {
	track(p.target, TrackIterate, IterateKey)
	values := p.target.Values()
	for i, v := range values {
		values[i] = unwrapRef(v, p.readonly)
	}
	return values
}

// Entries returns the entries in insertion order.
func (p *MapProxy) Entries() []MapEntry {
	track(p.target, TrackIterate, IterateKey)
	entries := make([]MapEntry, 0, p.target.Size())
	p.target.Range(func(k, v any) bool {
		entries = append(entries, MapEntry{
			Key:   wrap(k, p.readonly),
			Value: unwrapRef(v, p.readonly),
		})
		return true
	})
	return entries
}

// SetProxy is the reactive handle of a *Set. Members given as proxies are
// stored as their raw targets.
type SetProxy struct {
	target   *Set
	readonly bool
}

func (p *SetProxy) isProxy() {}

// Raw returns the *Set behind p.
func (p *SetProxy) Raw() any { return p.target }

// Target returns the *Set behind p.
func (p *SetProxy) Target() *Set { return p.target }

// IsReadonly reports whether p rejects writes.
func (p *SetProxy) IsReadonly() bool { return p.readonly }

// Add inserts v. It reports false when p is read-only or v cannot be a
// member.
func (p *SetProxy) Add(v any) bool {
	if p.readonly {
		warnReadonly(p.target, TriggerAdd, v)
		return false
	}

	v = ToRaw(v)
	if !hashableKey(v) {
		return false
	}
	if p.target.add(v) {
		trigger(p.target, TriggerAdd, v, v, IterateKey)
	}
	return true
}

// Has reports whether v is a member.
func (p *SetProxy) Has(v any) bool {
	v = ToRaw(v)
	track(p.target, TrackHas, v)
	return p.target.Has(v)
}

// Delete removes v and reports whether it was a member.
func (p *SetProxy) Delete(v any) bool {
	if p.readonly {
		warnReadonly(p.target, TriggerDelete, v)
		return false
	}

	v = ToRaw(v)
	if !p.target.remove(v) {
		return false
	}
	trigger(p.target, TriggerDelete, v, v, IterateKey)
	return true
}

// Clear removes every member.
func (p *SetProxy) Clear() {
	if p.readonly {
		warnReadonly(p.target, TriggerClear, nil)
		return
	}
	if p.target.Clear() > 0 {
		triggerAll(p.target, TriggerClear)
	}
}

// Size returns the number of members.
func (p *SetProxy) Size() int {
	track(p.target, TrackIterate, IterateKey)
	return p.target.Size()
}

// ForEach calls fn for each member in insertion order.
func (p *SetProxy) ForEach(fn func(v any)) {
	for _, v := range p.Values() {
		fn(v)
	}
}

// Values returns the members in insertion order. Containers are returned
// as proxies; Refs are returned as is.
func (p *SetProxy) Values() []any {
	track(p.target, TrackIterate, IterateKey)
	values := p.target.Values()
	for i, v := range values {
		values[i] = wrap(v, p.readonly)
	}
	return values
}
