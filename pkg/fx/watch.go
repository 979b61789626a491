package fx

import kerrors "github.com/kirei-dev/kirei/internal/errors"

// StopFunc stops a watcher. It is safe to call more than once.
type StopFunc func()

// Getter is a reactive value source: reading it inside an effect tracks
// it. *Ref and *Computed implement Getter.
type Getter interface {
	GetAny() any
}

// WatchEffect runs fn now and again whenever anything it read changes.
// It returns ErrNotCallable if fn is nil.
//
// Example:
//
//	stop, err := fx.WatchEffect(func() {
//	    log.Println("count:", count.Value())
//	})
//	if err != nil {
//	    return err
//	}
//	defer stop()
func WatchEffect(fn func()) (StopFunc, error) {
	if fn == nil {
		return nil, kerrors.New("FX002").
			WithSuggestion("Pass a function: fx.WatchEffect(func() { ... })")
	}
	e := Effect(fn)
	return e.Stop, nil
}

type watchConfig struct {
	immediate bool
}

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

// Immediate calls the callback once when the watcher is created, with a
// nil old value.
func Immediate() WatchOption {
	return func(c *watchConfig) { c.immediate = true }
}

// Watch calls cb with the new and previous value whenever source changes.
//
// source is a Getter (such as *Ref or *Computed), a func() any, or a
// []any of those, in which case the values are passed as []any. Any other
// source returns ErrInvalidWatchSource.
func Watch(source any, cb func(value, old any), opts ...WatchOption) (StopFunc, error) {
	if cb == nil {
		return nil, kerrors.New("FX002").WithDetail("Watch expects a non-nil callback.")
	}
	getter, multi, err := watchGetter(source)
	if err != nil {
		return nil, err
	}

	var cfg watchConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var old any
	initialized := false

	var e *Fx
	job := func(*Fx) {
		if !e.Active() {
			return
		}
		value := e.Run()
		if !initialized || watchChanged(old, value, multi) {
			prev := old
			old = value
			initialized = true
			cb(value, prev)
		}
	}

	e = New(getter, Lazy(), WithScheduler(job))

	if cfg.immediate {
		job(e)
	} else {
		old = e.Run()
		initialized = true
	}
	return e.Stop, nil
}

func watchGetter(source any) (func() any, bool, error) {
	switch s := source.(type) {
	case *Ref:
		if s == nil {
			break
		}
		return s.GetAny, false, nil
	case Getter:
		if s == nil {
			break
		}
		return s.GetAny, false, nil
	case func() any:
		if s == nil {
			break
		}
		return s, false, nil
	case []any:
		getters := make([]func() any, len(s))
		for i, item := range s {
			g, multi, err := watchGetter(item)
			if err != nil || multi {
				return nil, false, invalidWatchSource(item)
			}
			getters[i] = g
		}
		return func() any {
			values := make([]any, len(getters))
			for i, g := range getters {
				values[i] = g()
			}
			return values
		}, true, nil
	}
	return nil, false, invalidWatchSource(source)
}

func invalidWatchSource(source any) error {
	return kerrors.New("FX005").
		WithDetailf("cannot watch %T", source).
		WithSuggestion("Watch a *fx.Ref, a *fx.Computed, a func() any, or a []any of those")
}

func watchChanged(old, value any, multi bool) bool {
	if !multi {
		return hasChanged(old, value)
	}
	a, _ := old.([]any)
	b, _ := value.([]any)
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if hasChanged(a[i], b[i]) {
			return true
		}
	}
	return false
}
