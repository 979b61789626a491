package fx

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// TrackingContext holds the reactive state for a goroutine.
// A single-threaded program sees exactly one of these; goroutines that
// run effects concurrently each get their own stack.
type TrackingContext struct {
	// effectStack holds the effects currently running, innermost last.
	// Only the top of the stack receives new dependency edges.
	effectStack []*Fx

	// paused disables tracking while true, even with a running effect.
	paused bool

	// pauseStack saves previous paused values for ResetTracking.
	pauseStack []bool

	// batchDepth tracks nested Batch() calls.
	batchDepth int

	// pendingEffects accumulates effects to notify when the batch completes.
	pendingEffects []*Fx
}

func (c *TrackingContext) idle() bool {
	return len(c.effectStack) == 0 &&
		!c.paused &&
		len(c.pauseStack) == 0 &&
		c.batchDepth == 0 &&
		len(c.pendingEffects) == 0
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map

// liveContexts counts stored tracking contexts. When it is zero no
// goroutine can be running an effect, so reads skip the goroutine lookup.
var liveContexts atomic.Int64

// getGoroutineID returns a unique identifier for the current goroutine,
// parsed from the header of runtime.Stack ("goroutine <id> [...").
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ { // skip "goroutine "
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// loadTrackingContext returns the current goroutine's context, or nil.
func loadTrackingContext() (*TrackingContext, uint64) {
	if liveContexts.Load() == 0 {
		return nil, 0
	}
	gid := getGoroutineID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*TrackingContext), gid
	}
	return nil, gid
}

// getTrackingContext returns the tracking context for the current goroutine.
// If no context exists, creates a new one.
func getTrackingContext() (*TrackingContext, uint64) {
	gid := getGoroutineID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*TrackingContext), gid
	}

	ctx := &TrackingContext{}
	trackingContexts.Store(gid, ctx)
	liveContexts.Add(1)
	return ctx, gid
}

// releaseTrackingContext drops the context once nothing references it.
func releaseTrackingContext(ctx *TrackingContext, gid uint64) {
	if !ctx.idle() {
		return
	}
	if _, loaded := trackingContexts.LoadAndDelete(gid); loaded {
		liveContexts.Add(-1)
	}
}

// activeEffect returns the effect that should receive dependency edges
// right now, or nil when tracking is off.
func activeEffect() *Fx {
	ctx, _ := loadTrackingContext()
	if ctx == nil || ctx.paused || len(ctx.effectStack) == 0 {
		return nil
	}
	return ctx.effectStack[len(ctx.effectStack)-1]
}

// CurrentEffect returns the innermost running effect on this goroutine,
// or nil when no effect is running.
func CurrentEffect() *Fx {
	ctx, _ := loadTrackingContext()
	if ctx == nil || len(ctx.effectStack) == 0 {
		return nil
	}
	return ctx.effectStack[len(ctx.effectStack)-1]
}

// effectOnStack reports whether e is already running on this goroutine.
func effectOnStack(e *Fx) bool {
	ctx, _ := loadTrackingContext()
	if ctx == nil {
		return false
	}
	for _, running := range ctx.effectStack {
		if running == e {
			return true
		}
	}
	return false
}

// pushEffect makes e the current effect. The returned func restores the
// previous state and must be deferred.
func pushEffect(e *Fx) func() {
	ctx, gid := getTrackingContext()
	ctx.effectStack = append(ctx.effectStack, e)
	ctx.pauseStack = append(ctx.pauseStack, ctx.paused)
	ctx.paused = false

	return func() {
		n := len(ctx.effectStack)
		ctx.effectStack[n-1] = nil
		ctx.effectStack = ctx.effectStack[:n-1]

		m := len(ctx.pauseStack)
		ctx.paused = ctx.pauseStack[m-1]
		ctx.pauseStack = ctx.pauseStack[:m-1]

		releaseTrackingContext(ctx, gid)
	}
}

// PauseTracking stops dependency collection until the matching
// ResetTracking call.
func PauseTracking() {
	ctx, _ := getTrackingContext()
	ctx.pauseStack = append(ctx.pauseStack, ctx.paused)
	ctx.paused = true
}

// ResetTracking restores the tracking state saved by PauseTracking.
func ResetTracking() {
	ctx, gid := loadTrackingContext()
	if ctx == nil || len(ctx.pauseStack) == 0 {
		return
	}
	m := len(ctx.pauseStack)
	ctx.paused = ctx.pauseStack[m-1]
	ctx.pauseStack = ctx.pauseStack[:m-1]
	releaseTrackingContext(ctx, gid)
}

// Untracked runs fn without recording reads as dependencies.
//
// Example:
//
//	fx.Effect(func() {
//	    fx.Untracked(func() {
//	        // reading state here won't subscribe the effect
//	        log.Println(state.Get("debug"))
//	    })
//	})
func Untracked(fn func()) {
	PauseTracking()
	defer ResetTracking()
	fn()
}

// incrementBatchDepth increases the batch depth by 1.
func incrementBatchDepth() {
	ctx, _ := getTrackingContext()
	ctx.batchDepth++
}

// decrementBatchDepth decreases the batch depth by 1 and returns the
// effects to notify when the outermost batch completes.
func decrementBatchDepth() ([]*Fx, bool) {
	ctx, gid := loadTrackingContext()
	if ctx == nil {
		return nil, false
	}
	ctx.batchDepth--
	if ctx.batchDepth > 0 {
		return nil, false
	}
	pending := ctx.pendingEffects
	ctx.pendingEffects = nil
	releaseTrackingContext(ctx, gid)
	return pending, true
}

// queuePendingEffects defers effects until the current batch ends.
// Returns false when no batch is open.
func queuePendingEffects(effects []*Fx) bool {
	ctx, _ := loadTrackingContext()
	if ctx == nil || ctx.batchDepth == 0 {
		return false
	}
	ctx.pendingEffects = append(ctx.pendingEffects, effects...)
	return true
}
