package fx

import (
	"math"
	"reflect"
	"sync"
)

// TrackOp identifies the kind of read that created a dependency edge.
type TrackOp string

const (
	TrackGet     TrackOp = "get"
	TrackHas     TrackOp = "has"
	TrackIterate TrackOp = "iterate"
)

// TriggerOp identifies the kind of write that invalidated dependents.
type TriggerOp string

const (
	TriggerSet    TriggerOp = "set"
	TriggerAdd    TriggerOp = "add"
	TriggerDelete TriggerOp = "delete"
	TriggerClear  TriggerOp = "clear"
)

type iterateKeyType struct{ name string }

var (
	// IterateKey is the dependency key recorded by enumeration (Keys,
	// Range, Size, ForEach). Structural changes notify it.
	IterateKey any = iterateKeyType{"iterate"}

	// MapKeyIterateKey is recorded by MapProxy.Keys. Adds and deletes
	// notify it, value updates do not.
	MapKeyIterateKey any = iterateKeyType{"map-key-iterate"}
)

const (
	// lengthKey is the dependency key for an array's length.
	lengthKey = "length"

	// valueKey is the single dependency key of Refs and Computeds.
	valueKey = "value"
)

// nanKey stands in for NaN map keys so that all NaNs address one slot.
type nanKeyType struct{}

var nanKey any = nanKeyType{}

// normKey maps keys that Go compares differently from SameValueZero.
func normKey(k any) any {
	switch v := k.(type) {
	case float64:
		if math.IsNaN(v) {
			return nanKey
		}
	case float32:
		if math.IsNaN(float64(v)) {
			return nanKey
		}
	}
	return k
}

// hashableKey reports whether k can key a Go map. Slices, maps, funcs
// and structs holding them cannot.
func hashableKey(k any) bool {
	switch k.(type) {
	case nil, string, int, int64, int32, uint, uint64, float64, bool, *Ref:
		return true
	}
	return reflect.ValueOf(k).Comparable()
}

// denormKey reverses normKey for values handed back to callers.
func denormKey(k any) any {
	if k == nanKey {
		return math.NaN()
	}
	return k
}

// DebugEvent describes one track or trigger, delivered to OnTrack and
// OnTrigger hooks.
type DebugEvent struct {
	Effect  *Fx
	Target  any
	Key     any
	Track   TrackOp
	Trigger TriggerOp
}

// dep is the ordered set of effects subscribed to one (target, key).
type dep struct {
	mu   sync.Mutex
	subs []*Fx
}

// add subscribes e. Reports false if e was already subscribed.
func (d *dep) add(e *Fx) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.subs {
		if existing == e {
			return false
		}
	}
	d.subs = append(d.subs, e)
	return true
}

// remove unsubscribes e, keeping the order of the remaining effects.
func (d *dep) remove(e *Fx) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, existing := range d.subs {
		if existing == e {
			copy(d.subs[i:], d.subs[i+1:])
			d.subs[len(d.subs)-1] = nil
			d.subs = d.subs[:len(d.subs)-1]
			return
		}
	}
}

func (d *dep) snapshot() []*Fx {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.subs) == 0 {
		return nil
	}
	subs := make([]*Fx, len(d.subs))
	copy(subs, d.subs)
	return subs
}

func (d *dep) size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// targetState is the per-target side table: the dependency map for each
// key read through a proxy and the identity cache slots for its proxies.
// It lives on the target so it is collected together with it.
type targetState struct {
	depsMu sync.Mutex
	deps   map[any]*dep

	proxyMu  sync.Mutex
	reactive Proxy
	readonly Proxy
}

// depFor returns the dep for key, creating it when create is set.
// Unhashable keys have no dep.
func (s *targetState) depFor(key any, create bool) *dep {
	if !hashableKey(key) {
		return nil
	}
	key = normKey(key)

	s.depsMu.Lock()
	defer s.depsMu.Unlock()

	d := s.deps[key]
	if d == nil && create {
		if s.deps == nil {
			s.deps = make(map[any]*dep)
		}
		d = &dep{}
		s.deps[key] = d
	}
	return d
}

func (s *targetState) allDeps() []*dep {
	s.depsMu.Lock()
	defer s.depsMu.Unlock()

	deps := make([]*dep, 0, len(s.deps))
	for _, d := range s.deps {
		deps = append(deps, d)
	}
	return deps
}

// subscribers counts the effects subscribed to key.
func (s *targetState) subscribers(key any) int {
	d := s.depFor(key, false)
	if d == nil {
		return 0
	}
	return d.size()
}

// tracked is implemented by everything that owns dependency edges:
// raw containers, Refs and Computeds.
type tracked interface {
	trackState() *targetState
}

// valueBox is a tracked value with a single dependency key.
type valueBox interface {
	tracked
	boxed()
}

// Subscribers returns how many effects currently depend on key of target.
// target may be a raw container, a proxy, a *Ref or a *Computed; for Refs
// and Computeds the key is ignored.
func Subscribers(target any, key any) int {
	target = ToRaw(target)
	switch t := target.(type) {
	case valueBox:
		return t.trackState().subscribers(valueKey)
	case tracked:
		return t.trackState().subscribers(key)
	}
	return 0
}

// track records that the active effect read key of t.
func track(t tracked, op TrackOp, key any) {
	e := activeEffect()
	if e == nil {
		return
	}

	d := t.trackState().depFor(key, true)
	if d == nil || !d.add(e) {
		return
	}
	e.addDep(d)
	recordTrack()

	if e.onTrack != nil {
		e.onTrack(DebugEvent{Effect: e, Target: t, Key: key, Track: op})
	}
}

// trigger notifies the subscribers of each key in keys.
func trigger(t tracked, op TriggerOp, key any, keys ...any) {
	state := t.trackState()
	deps := make([]*dep, 0, len(keys))
	for _, k := range keys {
		if d := state.depFor(k, false); d != nil {
			deps = append(deps, d)
		}
	}
	notify(t, op, key, deps)
}

// triggerAll notifies every subscriber of t, as a Clear does.
func triggerAll(t tracked, op TriggerOp) {
	notify(t, op, nil, t.trackState().allDeps())
}

func notify(t tracked, op TriggerOp, key any, deps []*dep) {
	recordTrigger(op)
	if len(deps) == 0 {
		return
	}

	current := CurrentEffect()
	var effects []*Fx
	for _, d := range deps {
		for _, e := range d.snapshot() {
			if e == current && !e.allowRecurse {
				continue
			}
			if !e.Active() || containsEffect(effects, e) {
				continue
			}
			effects = append(effects, e)
		}
	}
	if len(effects) == 0 {
		return
	}

	for _, e := range effects {
		if e.onTrigger != nil {
			e.onTrigger(DebugEvent{Effect: e, Target: t, Key: key, Trigger: op})
		}
	}

	if queuePendingEffects(effects) {
		return
	}
	dispatch(effects)
}

// dispatch runs or schedules effects, computed ones first so that they
// are dirty before any plain effect reads them.
func dispatch(effects []*Fx) {
	for _, e := range effects {
		if e.computed {
			schedule(e)
		}
	}
	for _, e := range effects {
		if !e.computed {
			schedule(e)
		}
	}
}

func schedule(e *Fx) {
	if !e.Active() {
		return
	}
	if e.scheduler != nil {
		e.scheduler(e)
		return
	}
	e.Run()
}

func containsEffect(effects []*Fx, e *Fx) bool {
	for _, existing := range effects {
		if existing == e {
			return true
		}
	}
	return false
}
