package fx

import (
	"math"
	"reflect"
	"testing"
)

func newArrayFixture() (*Ref, *Array, *ArrayProxy) {
	baz := NewRef("hi")
	a := NewArray("first", "second", "first", baz)
	return baz, a, ReactiveArray(a)
}

func TestArraySearch(t *testing.T) {
	_, a, r := newArrayFixture()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"raw IndexOf found", a.IndexOf("second"), 1},
		{"raw IndexOf missing", a.IndexOf("third"), -1},
		{"raw LastIndexOf found", a.LastIndexOf("first"), 2},
		{"raw LastIndexOf missing", a.LastIndexOf("fifth"), -1},
		{"raw Includes found", a.Includes("first"), true},
		{"raw Includes missing", a.Includes("fourth"), false},
		{"proxy IndexOf found", r.IndexOf("second"), 1},
		{"proxy IndexOf missing", r.IndexOf("third"), -1},
		{"proxy LastIndexOf found", r.LastIndexOf("first"), 2},
		{"proxy LastIndexOf missing", r.LastIndexOf("fifth"), -1},
		{"proxy Includes found", r.Includes("first"), true},
		{"proxy Includes missing", r.Includes("fourth"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestArraySearchUnwrapsRefs(t *testing.T) {
	baz, a, r := newArrayFixture()
	a.Append(NewRef("hi"))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"raw IndexOf ref value", a.IndexOf("hi"), 3},
		{"raw LastIndexOf ref value", a.LastIndexOf("hi"), 4},
		{"raw Includes ref value", a.Includes("hi"), true},
		{"raw IndexOf ref itself", a.IndexOf(baz), 3},
		{"proxy IndexOf ref value", r.IndexOf("hi"), 3},
		{"proxy LastIndexOf ref value", r.LastIndexOf("hi"), 4},
		{"proxy Includes ref value", r.Includes("hi"), true},
		{"proxy IndexOf ref itself", r.IndexOf(baz), 3},
		{"proxy LastIndexOf ref itself", r.LastIndexOf(baz), 3},
		{"proxy IndexOf other ref", r.IndexOf(NewRef("hi")), -1},
		{"proxy Includes missing", r.Includes("bye"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestArraySearchTracksRefValues(t *testing.T) {
	baz, _, r := newArrayFixture()

	var found bool
	runs := 0
	e := Effect(func() {
		found = r.Includes("bye")
		runs++
	})
	defer e.Stop()

	baz.Set("bye")
	if runs != 2 || !found {
		t.Errorf("runs = %d, found = %v; want 2, true", runs, found)
	}
}

func TestArraySearchMatchesProxiesAndRaw(t *testing.T) {
	item := NewObject("id", 1)
	a := NewArray(item)
	r := ReactiveArray(a)

	if r.IndexOf(item) != 0 {
		t.Error("raw item not found through proxy")
	}
	if r.IndexOf(ReactiveObject(item)) != 0 {
		t.Error("proxy of item not found through proxy")
	}
	if !r.Includes(ReadonlyObject(item)) {
		t.Error("readonly proxy of item not found")
	}
	if r.IndexOf(NewObject("id", 1)) != -1 {
		t.Error("equal but distinct object should not match")
	}

	// Elements read through the proxy come back wrapped and must still be
	// found.
	if r.IndexOf(r.At(0)) != 0 {
		t.Error("element read through proxy not found")
	}
}

func TestArraySearchNaN(t *testing.T) {
	a := NewArray(1.0, math.NaN())
	if a.IndexOf(math.NaN()) != -1 {
		t.Error("IndexOf should never find NaN")
	}
	if !a.Includes(math.NaN()) {
		t.Error("Includes should find NaN")
	}
	r := ReactiveArray(a)
	if r.LastIndexOf(math.NaN()) != -1 || !r.Includes(math.NaN()) {
		t.Error("proxy NaN search mismatch")
	}
}

func TestArrayProxyGet(t *testing.T) {
	baz, _, r := newArrayFixture()

	if got := r.At(0); got != "first" {
		t.Errorf("At(0) = %v, want first", got)
	}
	if got := r.At(3); got != baz {
		t.Errorf("At(3) = %v, want the ref itself", got)
	}
	if got := r.At(99); got != nil {
		t.Errorf("At(99) = %v, want nil", got)
	}
}

func TestArrayProxySet(t *testing.T) {
	baz, _, r := newArrayFixture()

	r.Set(2, "third")
	if got := r.At(2); got != "third" {
		t.Errorf("At(2) = %v, want third", got)
	}

	if r.At(4) == 10 {
		t.Fatal("index 4 should be empty")
	}
	r.Set(4, 10)
	if got := r.At(4); got != 10 {
		t.Errorf("At(4) = %v, want 10", got)
	}

	r.Set(3, -1)
	if got := baz.Peek(); got != "hi" {
		t.Errorf("ref written through array: %v", got)
	}
	if got := r.At(3); got != -1 {
		t.Errorf("At(3) = %v, want -1", got)
	}

	if r.Set(-1, "x") {
		t.Error("negative index should be rejected")
	}
}

func TestArrayProxyDelete(t *testing.T) {
	_, a, r := newArrayFixture()

	r.Set(5, "Hello there")
	if got := r.At(5); got != "Hello there" {
		t.Fatalf("At(5) = %v", got)
	}

	r.Delete(5)
	if got := r.At(5); got != nil {
		t.Errorf("At(5) after delete = %v, want nil", got)
	}
	if a.Len() != 6 {
		t.Errorf("delete should leave a hole, Len() = %d", a.Len())
	}
	if r.Has(5) {
		t.Error("Has(5) = true for a hole")
	}
}

func TestArrayProxyHas(t *testing.T) {
	_, _, r := newArrayFixture()

	if !r.Has(1) {
		t.Error("Has(1) = false")
	}
	if r.Has(10) || r.Has(-1) {
		t.Error("Has() true for missing index")
	}
}

func TestArrayProxyKeys(t *testing.T) {
	_, _, r := newArrayFixture()

	if got := r.Keys(); !reflect.DeepEqual(got, []string{"0", "1", "2", "3"}) {
		t.Errorf("Keys() = %v", got)
	}

	r.Set(6, "x")
	if got := r.Keys(); !reflect.DeepEqual(got, []string{"0", "1", "2", "3", "6"}) {
		t.Errorf("Keys() with holes = %v", got)
	}
}

func TestArrayProxyKeysTracking(t *testing.T) {
	r := ReactiveArray(NewArray("a", "b", "c"))

	var keys []string
	runs := 0
	e := Effect(func() {
		keys = r.Keys()
		runs++
	})
	defer e.Stop()

	steps := []struct {
		name string
		op   func()
		want []string
	}{
		{"delete", func() { r.Delete(1) }, []string{"0", "2"}},
		{"fill hole", func() { r.Set(1, "b") }, []string{"0", "1", "2"}},
		{"set past end", func() { r.Set(4, "e") }, []string{"0", "1", "2", "4"}},
		{"push", func() { r.Push("f") }, []string{"0", "1", "2", "4", "5"}},
		{"pop", func() { r.Pop() }, []string{"0", "1", "2", "4"}},
		{"truncate", func() { r.SetLen(2) }, []string{"0", "1"}},
	}

	for i, step := range steps {
		step.op()
		if runs != i+2 {
			t.Errorf("%s: runs = %d, want %d", step.name, runs, i+2)
		}
		if !reflect.DeepEqual(keys, step.want) {
			t.Errorf("%s: Keys() = %v, want %v", step.name, keys, step.want)
		}
	}

	r.Set(0, "z")
	if runs != len(steps)+1 {
		t.Errorf("value update re-ran keys reader: %d runs", runs)
	}
	r.Delete(3)
	if runs != len(steps)+1 {
		t.Errorf("deleting a missing index re-ran keys reader: %d runs", runs)
	}
}

func TestArrayLengthTracking(t *testing.T) {
	r := ReactiveArray(NewArray(1, 2))

	var n int
	runs := 0
	e := Effect(func() {
		n = r.Len()
		runs++
	})
	defer e.Stop()

	r.Set(0, 5)
	if runs != 1 {
		t.Errorf("in-bounds write re-ran length reader: %d runs", runs)
	}

	r.Set(2, 3)
	if n != 3 {
		t.Errorf("Len() = %d after append by index, want 3", n)
	}

	r.Push(4, 5)
	if n != 5 {
		t.Errorf("Len() = %d after Push, want 5", n)
	}

	if v, ok := r.Pop(); !ok || v != 5 {
		t.Errorf("Pop() = %v, %v", v, ok)
	}
	if n != 4 {
		t.Errorf("Len() = %d after Pop, want 4", n)
	}

	r.SetLen(1)
	if n != 1 {
		t.Errorf("Len() = %d after SetLen, want 1", n)
	}
}

func TestArrayIndexTracking(t *testing.T) {
	r := ReactiveArray(NewArray("a", "b", "c"))

	var last any
	e := Effect(func() { last = r.At(2) })
	defer e.Stop()

	r.SetLen(1)
	if last != nil {
		t.Errorf("truncation did not notify index reader: %v", last)
	}

	r.Push("x", "y")
	if last != "y" {
		t.Errorf("Push did not notify index reader: %v", last)
	}
}

func TestArraySearchTracking(t *testing.T) {
	r := ReactiveArray(NewArray("a", "b"))

	var found bool
	e := Effect(func() { found = r.Includes("c") })
	defer e.Stop()

	r.Set(1, "c")
	if !found {
		t.Error("search not re-run after element write")
	}
}

func TestArrayRange(t *testing.T) {
	r := ReactiveArray(NewArray("a", "b", "c"))
	r.Delete(1)

	var seen []int
	r.Range(func(i int, v any) bool {
		seen = append(seen, i)
		return true
	})
	if !reflect.DeepEqual(seen, []int{0, 2}) {
		t.Errorf("Range visited %v, want [0 2]", seen)
	}
}

func TestReadonlyArray(t *testing.T) {
	captureLogs(t)

	a := NewArray(1)
	ro := ReadonlyArray(a)

	if ro.Set(0, 2) || ro.Delete(0) || ro.SetLen(0) {
		t.Error("readonly mutators should report false")
	}
	if n := ro.Push(2); n != 1 {
		t.Errorf("Push on readonly = %d, want 1", n)
	}
	if _, ok := ro.Pop(); ok {
		t.Error("Pop on readonly should fail")
	}
	if !reflect.DeepEqual(a.Slice(), []any{1}) {
		t.Errorf("raw array mutated: %v", a.Slice())
	}
}

func TestArrayPushStoresRaw(t *testing.T) {
	item := NewObject()
	a := NewArray()
	ReactiveArray(a).Push(ReactiveObject(item))

	if a.At(0) != item {
		t.Errorf("Push stored %T, want raw *Object", a.At(0))
	}
}
