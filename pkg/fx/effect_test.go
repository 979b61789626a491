package fx

import (
	"testing"
)

func TestEffectRunsOnCreate(t *testing.T) {
	ran := false
	e := Effect(func() { ran = true })
	defer e.Stop()

	if !ran {
		t.Error("effect should run immediately on creation")
	}
	if e.Runs() != 1 {
		t.Errorf("Runs() = %d, want 1", e.Runs())
	}
}

func TestLazyEffectWaitsForRun(t *testing.T) {
	ran := false
	e := New(func() any {
		ran = true
		return "done"
	}, Lazy())
	defer e.Stop()

	if ran {
		t.Fatal("lazy effect should not run on creation")
	}
	if !e.IsLazy() {
		t.Error("IsLazy() = false, want true")
	}
	if got := e.Run(); got != "done" {
		t.Errorf("Run() = %v, want done", got)
	}
	if !ran {
		t.Error("Run() should invoke the function")
	}
}

func TestEffectTracksExactKey(t *testing.T) {
	state := ReactiveObject(NewObject("count", 0))
	runs := 0
	e := Effect(func() {
		_ = state.Get("count")
		runs++
	})
	defer e.Stop()

	state.Set("count", 1)
	if runs != 2 {
		t.Errorf("expected 2 runs after write, got %d", runs)
	}

	state.Set("other", 1)
	if runs != 2 {
		t.Errorf("write to unrelated key re-ran effect: %d runs", runs)
	}

	state.Set("count", 1)
	if runs != 2 {
		t.Errorf("write of the same value re-ran effect: %d runs", runs)
	}
}

func TestReadOutsideEffectTracksNothing(t *testing.T) {
	o := NewObject("a", 1)
	state := ReactiveObject(o)
	_ = state.Get("a")

	if n := Subscribers(o, "a"); n != 0 {
		t.Errorf("Subscribers() = %d, want 0", n)
	}
}

func TestEffectPrunesStaleDependencies(t *testing.T) {
	flag := NewRef(true)
	a := NewRef("a")
	b := NewRef("b")

	runs := 0
	e := Effect(func() {
		runs++
		if flag.Value().(bool) {
			_ = a.Value()
		} else {
			_ = b.Value()
		}
	})
	defer e.Stop()

	flag.Set(false)
	if runs != 2 {
		t.Fatalf("expected 2 runs, got %d", runs)
	}
	if n := Subscribers(a, nil); n != 0 {
		t.Errorf("stale edge to a: %d subscribers", n)
	}

	a.Set("x")
	if runs != 2 {
		t.Errorf("write to pruned dependency re-ran effect: %d runs", runs)
	}

	b.Set("y")
	if runs != 3 {
		t.Errorf("expected 3 runs after write to b, got %d", runs)
	}
}

func TestEffectStop(t *testing.T) {
	count := NewRef(0)
	runs := 0
	stops := 0

	e := Effect(func() {
		_ = count.Value()
		runs++
	}, OnStop(func() { stops++ }))

	e.Stop()
	e.Stop()

	if e.Active() {
		t.Error("Active() = true after Stop")
	}
	if stops != 1 {
		t.Errorf("OnStop called %d times, want 1", stops)
	}
	if n := Subscribers(count, nil); n != 0 {
		t.Errorf("stopped effect still subscribed: %d", n)
	}

	count.Set(1)
	if runs != 1 {
		t.Errorf("stopped effect re-ran: %d runs", runs)
	}
}

func TestStopNilEffect(t *testing.T) {
	Stop(nil)
}

func TestStoppedEffectRun(t *testing.T) {
	e := New(func() any { return 42 }, Lazy())
	e.Stop()
	if got := e.Run(); got != 42 {
		t.Errorf("Run() on stopped effect = %v, want 42", got)
	}

	scheduled := New(func() any { return 42 }, Lazy(), WithScheduler(func(*Fx) {}))
	scheduled.Stop()
	if got := scheduled.Run(); got != nil {
		t.Errorf("Run() on stopped scheduled effect = %v, want nil", got)
	}
}

func TestNestedEffectRestoresOuter(t *testing.T) {
	inner := NewRef(0)
	outerDep := NewRef(0)

	var innerEffect *Fx
	var before, after *Fx
	outerRuns := 0

	outer := Effect(func() {
		outerRuns++
		before = CurrentEffect()
		if innerEffect == nil {
			innerEffect = Effect(func() { _ = inner.Value() })
		}
		after = CurrentEffect()
		_ = outerDep.Value()
	})
	defer outer.Stop()
	defer innerEffect.Stop()

	if before == nil || before != after {
		t.Fatalf("current effect changed across nested run: before=%v after=%v", before, after)
	}
	if before != outer {
		t.Error("current effect inside outer should be outer")
	}
	if CurrentEffect() != nil {
		t.Error("no effect should be current after runs complete")
	}

	outerDep.Set(1)
	if outerRuns != 2 {
		t.Errorf("read after nested effect not tracked by outer: %d runs", outerRuns)
	}

	inner.Set(1)
	if outerRuns != 2 {
		t.Errorf("inner dependency leaked to outer: %d runs", outerRuns)
	}
}

func TestEffectPanicUnwinds(t *testing.T) {
	a := NewRef(1)
	e := New(func() any {
		_ = a.Value()
		panic("boom")
	}, Lazy())
	defer e.Stop()

	if !mustPanic(func() { e.Run() }) {
		t.Fatal("panic should propagate to the caller of Run")
	}
	if CurrentEffect() != nil {
		t.Error("effect stack not unwound after panic")
	}
	if n := Subscribers(a, nil); n != 1 {
		t.Errorf("edge recorded before panic lost: %d subscribers", n)
	}
}

func TestEffectDoesNotRetriggerItself(t *testing.T) {
	count := NewRef(0)
	runs := 0
	e := Effect(func() {
		runs++
		n := count.Value().(int)
		if n < 5 {
			count.Set(n + 1)
		}
	})
	defer e.Stop()

	if runs != 1 {
		t.Errorf("effect re-triggered itself: %d runs", runs)
	}
	if got := count.Peek(); got != 1 {
		t.Errorf("count = %v, want 1", got)
	}
}

func TestEffectScheduler(t *testing.T) {
	count := NewRef(0)
	var scheduled []*Fx
	runs := 0

	e := Effect(func() {
		_ = count.Value()
		runs++
	}, WithScheduler(func(e *Fx) { scheduled = append(scheduled, e) }))
	defer e.Stop()

	count.Set(1)
	if runs != 1 {
		t.Errorf("scheduled effect ran inline: %d runs", runs)
	}
	if len(scheduled) != 1 || scheduled[0] != e {
		t.Fatalf("scheduler got %v, want [e]", scheduled)
	}

	scheduled[0].Run()
	if runs != 2 {
		t.Errorf("expected 2 runs, got %d", runs)
	}
}

func TestEffectDebugHooks(t *testing.T) {
	o := NewObject("a", 1)
	state := ReactiveObject(o)

	var tracked, triggered []DebugEvent
	e := Effect(func() {
		_ = state.Get("a")
		_ = state.Has("b")
	},
		OnTrack(func(ev DebugEvent) { tracked = append(tracked, ev) }),
		OnTrigger(func(ev DebugEvent) { triggered = append(triggered, ev) }),
	)
	defer e.Stop()

	if len(tracked) != 2 {
		t.Fatalf("expected 2 track events, got %d", len(tracked))
	}
	if tracked[0].Key != "a" || tracked[0].Track != TrackGet {
		t.Errorf("first track = %+v", tracked[0])
	}
	if tracked[1].Key != "b" || tracked[1].Track != TrackHas {
		t.Errorf("second track = %+v", tracked[1])
	}

	state.Set("a", 2)
	if len(triggered) != 1 {
		t.Fatalf("expected 1 trigger event, got %d", len(triggered))
	}
	if triggered[0].Trigger != TriggerSet || triggered[0].Key != "a" || triggered[0].Target != o {
		t.Errorf("trigger = %+v", triggered[0])
	}
}

func TestEffectIDsAreUnique(t *testing.T) {
	a := New(func() any { return nil }, Lazy())
	b := New(func() any { return nil }, Lazy())
	if a.ID() == b.ID() {
		t.Errorf("IDs collide: %d", a.ID())
	}
}

func TestEffectDeps(t *testing.T) {
	x, y := NewRef(1), NewRef(2)
	e := Effect(func() {
		_ = x.Value()
		_ = y.Value()
		_ = x.Value()
	})
	defer e.Stop()

	if e.Deps() != 2 {
		t.Errorf("Deps() = %d, want 2", e.Deps())
	}
}
