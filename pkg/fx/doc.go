// Package fx is a fine-grained reactivity core.
//
// State lives in raw containers (Object, Array, Map, Set) and in Refs.
// Reading through a reactive proxy while an effect runs records a
// dependency on the exact key read; writing through a proxy re-runs, or
// schedules, exactly the effects that depend on the written key.
//
// # Containers and proxies
//
//	state := fx.ReactiveObject(fx.NewObject("count", 0))
//	fx.Effect(func() {
//	    fmt.Println("count:", state.Get("count"))
//	})
//	state.Set("count", 1) // prints "count: 1"
//
// A raw container has at most one mutable and one read-only proxy.
// Nested containers are wrapped lazily on read. Object properties read
// through a stored Ref; array elements and collection members do not.
//
// # Refs and computed values
//
//	n := fx.NewRef(2)
//	sq := fx.NewComputed(func() int { v := n.Value().(int); return v * v })
//	sq.Get() // 4
//
// # Scheduling
//
// Without a scheduler an effect re-runs inline. WithScheduler(fx.QueuePush)
// defers it to the default Queue, which deduplicates pending jobs and
// runs them in insertion order. Batch collects triggers until the
// outermost batch returns.
//
// # Thread Safety
//
// Containers, dependency sets and queues are safe for concurrent use.
// The running-effect stack is per goroutine, so a read on another
// goroutine is not attributed to the effect that started it.
package fx
