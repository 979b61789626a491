package fx

import (
	"fmt"
	"strconv"
	"sync"
)

// Object is a raw record with insertion-ordered string keys. Its methods
// read and write directly without tracking or notifying; wrap it with
// Reactive or ReactiveObject to observe it.
type Object struct {
	state targetState

	mu     sync.RWMutex
	keys   []string
	values map[string]any
}

// NewObject creates an Object from alternating key/value pairs.
// It panics if a key is not a string or a value is missing.
//
// Example:
//
//	o := fx.NewObject("foo", "bar", "baz", fx.NewRef("hi"))
func NewObject(pairs ...any) *Object {
	if len(pairs)%2 != 0 {
		panic("fx: NewObject expects key/value pairs")
	}
	o := &Object{values: make(map[string]any, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("fx: NewObject key %d is %T, want string", i/2, pairs[i]))
		}
		o.swap(key, pairs[i+1])
	}
	return o
}

func (o *Object) trackState() *targetState {
	return &o.state
}

// Get returns the value stored at key.
func (o *Object) Get(key string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.values[key]
	return v, ok
}

// Set stores value at key. New keys are appended to the key order.
func (o *Object) Set(key string, value any) {
	o.swap(key, value)
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	_, ok := o.remove(key)
	return ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.keys)
}

// Range calls fn for each key in insertion order until fn returns false.
// fn sees a snapshot taken before the first call.
func (o *Object) Range(fn func(key string, value any) bool) {
	o.mu.RLock()
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = o.values[k]
	}
	o.mu.RUnlock()

	for i, k := range keys {
		if !fn(k, values[i]) {
			return
		}
	}
}

// swap stores value and returns the previous value, if any.
func (o *Object) swap(key string, value any) (any, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.values == nil {
		o.values = make(map[string]any)
	}
	old, ok := o.values[key]
	if !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return old, ok
}

func (o *Object) remove(key string) (any, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	old, ok := o.values[key]
	if !ok {
		return nil, false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return old, true
}

// holeType marks a deleted array slot: it reads as nil but is not present.
type holeType struct{}

var hole any = holeType{}

// Array is a raw, growable list. Deleting an index leaves a hole rather
// than shifting later elements. Its methods do not track or notify.
type Array struct {
	state targetState

	mu    sync.RWMutex
	items []any
}

// NewArray creates an Array holding items.
func NewArray(items ...any) *Array {
	a := &Array{items: make([]any, len(items))}
	copy(a.items, items)
	return a
}

func (a *Array) trackState() *targetState {
	return &a.state
}

// Len returns the length, holes included.
func (a *Array) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.items)
}

// At returns the element at i, or nil when i is out of range or a hole.
func (a *Array) At(i int) any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.at(i)
}

func (a *Array) at(i int) any {
	if i < 0 || i >= len(a.items) || a.items[i] == hole {
		return nil
	}
	return a.items[i]
}

// Has reports whether index i holds an element.
func (a *Array) Has(i int) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return i >= 0 && i < len(a.items) && a.items[i] != hole
}

// Set stores value at i, growing the array with holes if needed.
// Negative indices are ignored.
func (a *Array) Set(i int, value any) {
	a.swap(i, value)
}

// Delete turns index i into a hole and reports whether it held an element.
func (a *Array) Delete(i int) bool {
	_, ok := a.remove(i)
	return ok
}

// Append adds values to the end and returns the new length.
func (a *Array) Append(values ...any) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = append(a.items, values...)
	return len(a.items)
}

// Pop removes and returns the last element.
func (a *Array) Pop() (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.items)
	if n == 0 {
		return nil, false
	}
	v := a.at(n - 1)
	a.items[n-1] = nil
	a.items = a.items[:n-1]
	return v, true
}

// SetLen truncates or extends (with holes) the array to n elements and
// returns the previous length.
func (a *Array) SetLen(n int) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	old := len(a.items)
	if n < 0 {
		n = 0
	}
	switch {
	case n < old:
		for i := n; i < old; i++ {
			a.items[i] = nil
		}
		a.items = a.items[:n]
	case n > old:
		for len(a.items) < n {
			a.items = append(a.items, hole)
		}
	}
	return old
}

// Slice returns a copy of the elements; holes read as nil.
func (a *Array) Slice() []any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]any, len(a.items))
	for i := range a.items {
		out[i] = a.at(i)
	}
	return out
}

// Range calls fn for each present index until fn returns false.
func (a *Array) Range(fn func(i int, value any) bool) {
	for i, v := range a.Slice() {
		if !a.Has(i) {
			continue
		}
		if !fn(i, v) {
			return
		}
	}
}

// Keys returns the present indices as decimal strings.
func (a *Array) Keys() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	keys := make([]string, 0, len(a.items))
	for i, v := range a.items {
		if v != hole {
			keys = append(keys, strconv.Itoa(i))
		}
	}
	return keys
}

// IndexOf returns the first index whose element strictly equals v, or -1.
// A stored *Ref matches both itself and the value it holds.
func (a *Array) IndexOf(v any) int {
	return a.indexOf(v, searchMatch(strictEqual))
}

// LastIndexOf returns the last index whose element strictly equals v, or -1.
func (a *Array) LastIndexOf(v any) int {
	return a.lastIndexOf(v, searchMatch(strictEqual))
}

// Includes reports whether any element equals v. Unlike IndexOf, NaN
// finds NaN.
func (a *Array) Includes(v any) bool {
	return a.indexOf(v, searchMatch(sameValueZero)) >= 0
}

func (a *Array) indexOf(v any, eq func(a, b any) bool) int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for i, elem := range a.items {
		if elem != hole && eq(elem, v) {
			return i
		}
	}
	return -1
}

func (a *Array) lastIndexOf(v any, eq func(a, b any) bool) int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for i := len(a.items) - 1; i >= 0; i-- {
		if elem := a.items[i]; elem != hole && eq(elem, v) {
			return i
		}
	}
	return -1
}

// swap stores value at i and returns the previous element, whether the
// index held one, and the previous length.
func (a *Array) swap(i int, value any) (old any, had bool, oldLen int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	oldLen = len(a.items)
	if i < 0 {
		return nil, false, oldLen
	}
	for len(a.items) <= i {
		a.items = append(a.items, hole)
	}
	if i < oldLen && a.items[i] != hole {
		old, had = a.items[i], true
	}
	a.items[i] = value
	return old, had, oldLen
}

func (a *Array) remove(i int) (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if i < 0 || i >= len(a.items) || a.items[i] == hole {
		return nil, false
	}
	old := a.items[i]
	a.items[i] = hole
	return old, true
}

// Map is a raw, insertion-ordered map with comparable keys. NaN keys all
// address the same entry. Its methods do not track or notify.
type Map struct {
	state targetState

	mu     sync.RWMutex
	keys   []any
	values map[any]any
}

// NewMap creates a Map from alternating key/value pairs.
func NewMap(pairs ...any) *Map {
	if len(pairs)%2 != 0 {
		panic("fx: NewMap expects key/value pairs")
	}
	m := &Map{values: make(map[any]any, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		m.swap(pairs[i], pairs[i+1])
	}
	return m
}

func (m *Map) trackState() *targetState {
	return &m.state
}

// Get returns the value stored under key.
func (m *Map) Get(key any) (any, bool) {
	if !hashableKey(key) {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[normKey(key)]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key any) bool {
	if !hashableKey(key) {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.values[normKey(key)]
	return ok
}

// Set stores value under key. It panics if key is not comparable;
// MapProxy.Set reports false instead.
func (m *Map) Set(key, value any) {
	m.swap(key, value)
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key any) bool {
	_, ok := m.remove(key)
	return ok
}

// Clear removes every entry and returns how many there were.
func (m *Map) Clear() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.keys)
	m.keys = nil
	m.values = make(map[any]any)
	return n
}

// Size returns the number of entries.
func (m *Map) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]any, len(m.keys))
	for i, k := range m.keys {
		keys[i] = denormKey(k)
	}
	return keys
}

// Values returns the values in key insertion order.
func (m *Map) Values() []any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make([]any, len(m.keys))
	for i, k := range m.keys {
		values[i] = m.values[k]
	}
	return values
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key, value any) bool) {
	keys := m.Keys()
	values := m.Values()
	for i := range keys {
		if !fn(keys[i], values[i]) {
			return
		}
	}
}

func (m *Map) swap(key, value any) (any, bool) {
	if !hashableKey(key) {
		panic(fmt.Sprintf("fx: unhashable map key of type %T", key))
	}
	key = normKey(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.values == nil {
		m.values = make(map[any]any)
	}
	old, ok := m.values[key]
	if !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return old, ok
}

func (m *Map) remove(key any) (any, bool) {
	if !hashableKey(key) {
		return nil, false
	}
	key = normKey(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.values[key]
	if !ok {
		return nil, false
	}
	delete(m.values, key)
	m.keys = removeKey(m.keys, key)
	return old, true
}

// Set is a raw, insertion-ordered set of comparable members.
// Its methods do not track or notify.
type Set struct {
	state targetState

	mu      sync.RWMutex
	members []any
	index   map[any]struct{}
}

// NewSet creates a Set holding members.
func NewSet(members ...any) *Set {
	s := &Set{index: make(map[any]struct{}, len(members))}
	for _, v := range members {
		s.add(v)
	}
	return s
}

func (s *Set) trackState() *targetState {
	return &s.state
}

// Add inserts v. It panics if v is not comparable; SetProxy.Add reports
// false instead.
func (s *Set) Add(v any) {
	s.add(v)
}

// Has reports whether v is a member.
func (s *Set) Has(v any) bool {
	if !hashableKey(v) {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[normKey(v)]
	return ok
}

// Delete removes v and reports whether it was a member.
func (s *Set) Delete(v any) bool {
	return s.remove(v)
}

// Clear removes every member and returns how many there were.
func (s *Set) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.members)
	s.members = nil
	s.index = make(map[any]struct{})
	return n
}

// Size returns the number of members.
func (s *Set) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

// Values returns the members in insertion order.
func (s *Set) Values() []any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make([]any, len(s.members))
	for i, v := range s.members {
		values[i] = denormKey(v)
	}
	return values
}

// Range calls fn for each member in insertion order until fn returns false.
func (s *Set) Range(fn func(v any) bool) {
	for _, v := range s.Values() {
		if !fn(v) {
			return
		}
	}
}

// add inserts v and reports whether it was new.
func (s *Set) add(v any) bool {
	if !hashableKey(v) {
		panic(fmt.Sprintf("fx: unhashable set member of type %T", v))
	}
	v = normKey(v)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		s.index = make(map[any]struct{})
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.members = append(s.members, v)
	return true
}

func (s *Set) remove(v any) bool {
	if !hashableKey(v) {
		return false
	}
	v = normKey(v)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[v]; !ok {
		return false
	}
	delete(s.index, v)
	s.members = removeKey(s.members, v)
	return true
}

func removeKey(keys []any, key any) []any {
	for i, k := range keys {
		if k == key {
			copy(keys[i:], keys[i+1:])
			keys[len(keys)-1] = nil
			return keys[:len(keys)-1]
		}
	}
	return keys
}
