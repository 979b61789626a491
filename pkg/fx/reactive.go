package fx

import "fmt"

// Proxy is a reactive handle over one raw container. It holds no data of
// its own: reads and writes go to the raw target, and are tracked and
// notified on the way.
//
// A raw target has at most one mutable and one read-only proxy; asking
// for it again returns the same handle.
type Proxy interface {
	// Raw returns the raw container behind the proxy.
	Raw() any

	// IsReadonly reports whether mutators are rejected.
	IsReadonly() bool

	isProxy()
}

// proxy returns the cached proxy of the given mode, building it once.
func (s *targetState) proxy(readonly bool, build func() Proxy) Proxy {
	s.proxyMu.Lock()
	defer s.proxyMu.Unlock()

	slot := &s.reactive
	if readonly {
		slot = &s.readonly
	}
	if *slot == nil {
		*slot = build()
		recordProxyCreated(readonly)
	}
	return *slot
}

// Reactive returns the mutable proxy of target. target must be an
// *Object, *Array, *Map or *Set, or a proxy, which is returned unchanged.
//
// Example:
//
//	p, err := fx.Reactive(fx.NewObject("foo", 1))
//	if err != nil {
//	    return err
//	}
//	state := p.(*fx.ObjectProxy)
func Reactive(target any) (Proxy, error) {
	return createProxy(target, false)
}

// Readonly returns the read-only proxy of target. A mutable proxy is
// mapped to the read-only proxy of its raw target.
func Readonly(target any) (Proxy, error) {
	return createProxy(target, true)
}

// MustReactive is like Reactive but panics if target cannot be wrapped.
func MustReactive(target any) Proxy {
	p, err := Reactive(target)
	if err != nil {
		panic(err)
	}
	return p
}

// MustReadonly is like Readonly but panics if target cannot be wrapped.
func MustReadonly(target any) Proxy {
	p, err := Readonly(target)
	if err != nil {
		panic(err)
	}
	return p
}

// asProxy returns v as a Proxy, rejecting nil handles.
func asProxy(v any) (Proxy, bool) {
	switch p := v.(type) {
	case *ObjectProxy:
		return p, p != nil
	case *ArrayProxy:
		return p, p != nil
	case *MapProxy:
		return p, p != nil
	case *SetProxy:
		return p, p != nil
	}
	return nil, false
}

func createProxy(target any, readonly bool) (Proxy, error) {
	if p, ok := asProxy(target); ok {
		if !readonly || p.IsReadonly() {
			return p, nil
		}
		target = p.Raw()
	}

	switch t := target.(type) {
	case *Object:
		if t != nil {
			return objectProxy(t, readonly), nil
		}
	case *Array:
		if t != nil {
			return arrayProxy(t, readonly), nil
		}
	case *Map:
		if t != nil {
			return mapProxy(t, readonly), nil
		}
	case *Set:
		if t != nil {
			return setProxy(t, readonly), nil
		}
	}
	return nil, invalidTargetError(target)
}

func objectProxy(o *Object, readonly bool) *ObjectProxy {
	return o.state.proxy(readonly, func() Proxy {
		return &ObjectProxy{target: o, readonly: readonly}
	}).(*ObjectProxy)
}

func arrayProxy(a *Array, readonly bool) *ArrayProxy {
	return a.state.proxy(readonly, func() Proxy {
		return &ArrayProxy{target: a, readonly: readonly}
	}).(*ArrayProxy)
}

func mapProxy(m *Map, readonly bool) *MapProxy {
	return m.state.proxy(readonly, func() Proxy {
		return &MapProxy{target: m, readonly: readonly}
	}).(*MapProxy)
}

func setProxy(s *Set, readonly bool) *SetProxy {
	return s.state.proxy(readonly, func() Proxy {
		return &SetProxy{target: s, readonly: readonly}
	}).(*SetProxy)
}

// ReactiveObject returns the mutable proxy of o, or nil if o is nil.
func ReactiveObject(o *Object) *ObjectProxy {
	if o == nil {
		return nil
	}
	return objectProxy(o, false)
}

// ReactiveArray returns the mutable proxy of a, or nil if a is nil.
func ReactiveArray(a *Array) *ArrayProxy {
	if a == nil {
		return nil
	}
	return arrayProxy(a, false)
}

// ReactiveMap returns the mutable proxy of m, or nil if m is nil.
func ReactiveMap(m *Map) *MapProxy {
	if m == nil {
		return nil
	}
	return mapProxy(m, false)
}

// ReactiveSet returns the mutable proxy of s, or nil if s is nil.
func ReactiveSet(s *Set) *SetProxy {
	if s == nil {
		return nil
	}
	return setProxy(s, false)
}

// ReadonlyObject returns the read-only proxy of o, or nil if o is nil.
func ReadonlyObject(o *Object) *ObjectProxy {
	if o == nil {
		return nil
	}
	return objectProxy(o, true)
}

// ReadonlyArray returns the read-only proxy of a, or nil if a is nil.
func ReadonlyArray(a *Array) *ArrayProxy {
	if a == nil {
		return nil
	}
	return arrayProxy(a, true)
}

// ReadonlyMap returns the read-only proxy of m, or nil if m is nil.
func ReadonlyMap(m *Map) *MapProxy {
	if m == nil {
		return nil
	}
	return mapProxy(m, true)
}

// ReadonlySet returns the read-only proxy of s, or nil if s is nil.
func ReadonlySet(s *Set) *SetProxy {
	if s == nil {
		return nil
	}
	return setProxy(s, true)
}

// IsReactive reports whether v is a proxy produced by Reactive or
// Readonly.
func IsReactive(v any) bool {
	_, ok := asProxy(v)
	return ok
}

// IsReadonly reports whether v is a read-only proxy.
func IsReadonly(v any) bool {
	p, ok := asProxy(v)
	return ok && p.IsReadonly()
}

// IsProxy reports whether v is a proxy of either mode. It is the same
// test as IsReactive.
func IsProxy(v any) bool {
	return IsReactive(v)
}

// IsCollection reports whether v is a *Map or *Set, or a proxy of one.
func IsCollection(v any) bool {
	switch ToRaw(v).(type) {
	case *Map, *Set:
		return true
	}
	return false
}

// ToReactive returns the mutable proxy of v when v is a raw container and
// v itself otherwise.
func ToReactive(v any) any {
	if isContainer(v) {
		p, _ := Reactive(v)
		return p
	}
	return v
}

// ToReadonly returns the read-only proxy of v when v is a container or a
// proxy, and v itself otherwise.
func ToReadonly(v any) any {
	if isContainer(v) || IsProxy(v) {
		p, _ := Readonly(v)
		return p
	}
	return v
}

// ToRaw returns the raw container behind a proxy, or v itself.
func ToRaw(v any) any {
	if p, ok := asProxy(v); ok {
		return p.Raw()
	}
	return v
}

func isContainer(v any) bool {
	switch t := v.(type) {
	case *Object:
		return t != nil
	case *Array:
		return t != nil
	case *Map:
		return t != nil
	case *Set:
		return t != nil
	}
	return false
}

// wrap returns the value handed out for a nested read: containers come
// back as proxies of the parent's mode.
func wrap(v any, readonly bool) any {
	if readonly {
		return ToReadonly(v)
	}
	return ToReactive(v)
}

// unwrapRef reads through a Ref stored as a value.
func unwrapRef(v any, readonly bool) any {
	if r, ok := v.(*Ref); ok {
		return wrap(r.Value(), readonly)
	}
	return wrap(v, readonly)
}

// warnReadonly reports a rejected mutation of a read-only proxy.
func warnReadonly(target tracked, op TriggerOp, key any) {
	recordReadonlyRejected()
	if silenceReadonly.Load() {
		return
	}
	err := readonlyError(op, key)
	logger().Warn("fx: read-only target not modified",
		"code", err.Code,
		"op", string(op),
		"key", fmt.Sprint(key),
		"target", fmt.Sprintf("%T", target),
	)
}
