package fx

// Batch groups writes so that each invalidated effect runs (or is handed
// to its scheduler) once, when the outermost batch returns.
//
// Batches can be nested. Computed effects are notified before plain ones.
//
// Example:
//
//	fx.Batch(func() {
//	    user.Set("first", "Ada")
//	    user.Set("last", "Lovelace")
//	})
//	// effects reading both keys run once
func Batch(fn func()) {
	incrementBatchDepth()

	defer func() {
		if pending, done := decrementBatchDepth(); done {
			flushPendingEffects(pending)
		}
	}()

	fn()
}

// flushPendingEffects deduplicates and dispatches the effects collected
// during a batch.
func flushPendingEffects(pending []*Fx) {
	if len(pending) == 0 {
		return
	}

	seen := make(map[*Fx]struct{}, len(pending))
	unique := make([]*Fx, 0, len(pending))
	for _, e := range pending {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		unique = append(unique, e)
	}

	dispatch(unique)
}
