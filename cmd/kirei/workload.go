package main

import (
	"github.com/kirei-dev/kirei/pkg/fx"
)

// maxItems bounds the demo list; it is truncated once it grows past this.
const maxItems = 32

// workload is a small reactive model shared by inspect and bench: an
// object, an array, a set, a computed total and n watching effects.
type workload struct {
	state *fx.ObjectProxy
	items *fx.ArrayProxy
	tags  *fx.SetProxy
	total *fx.Computed[int]

	effects []*fx.Fx
	seen    []int
}

func newWorkload(n int, scheduler fx.Scheduler) *workload {
	w := &workload{
		state: fx.ReactiveObject(fx.NewObject("count", 0, "label", "demo")),
		items: fx.ReactiveArray(fx.NewArray()),
		tags:  fx.ReactiveSet(fx.NewSet()),
		seen:  make([]int, n),
	}

	w.total = fx.NewComputed(func() int {
		sum := 0
		w.items.Range(func(_ int, v any) bool {
			if x, ok := v.(int); ok {
				sum += x
			}
			return true
		})
		return sum
	})

	var opts []fx.Option
	if scheduler != nil {
		opts = append(opts, fx.WithScheduler(scheduler))
	}

	for i := 0; i < n; i++ {
		i := i
		e := fx.Effect(func() {
			count, _ := w.state.Get("count").(int)
			w.seen[i] = count + w.total.Get() + w.tags.Size()
		}, opts...)
		w.effects = append(w.effects, e)
	}
	return w
}

// step applies one batched round of mutations.
func (w *workload) step(i int) {
	fx.Batch(func() {
		w.state.Set("count", i)
		if w.items.Len() >= maxItems {
			w.items.SetLen(0)
		}
		w.items.Push(i)
		w.tags.Add(i % 8)
	})
}

// runs returns the total number of effect runs so far.
func (w *workload) runs() uint64 {
	var total uint64
	for _, e := range w.effects {
		total += e.Runs()
	}
	return total
}

func (w *workload) stop() {
	for _, e := range w.effects {
		e.Stop()
	}
	w.total.Stop()
}
