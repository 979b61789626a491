package fx

import "sync/atomic"

// counters are always on; Prometheus collectors are opt-in.
var stats struct {
	effectsCreated   atomic.Uint64
	effectsStopped   atomic.Uint64
	effectRuns       atomic.Uint64
	tracks           atomic.Uint64
	triggers         atomic.Uint64
	reactiveProxies  atomic.Uint64
	readonlyProxies  atomic.Uint64
	readonlyRejected atomic.Uint64
	queuePushes      atomic.Uint64
	flushes          atomic.Uint64
	flushRuns        atomic.Uint64
	recursionDrops   atomic.Uint64
	jobPanics        atomic.Uint64
}

// Stats is a point-in-time snapshot of package activity since start-up
// or the last ResetStats.
type Stats struct {
	EffectsCreated   uint64 `json:"effects_created"`
	EffectsStopped   uint64 `json:"effects_stopped"`
	EffectRuns       uint64 `json:"effect_runs"`
	Tracks           uint64 `json:"tracks"`
	Triggers         uint64 `json:"triggers"`
	ReactiveProxies  uint64 `json:"reactive_proxies"`
	ReadonlyProxies  uint64 `json:"readonly_proxies"`
	ReadonlyRejected uint64 `json:"readonly_rejected"`
	QueuePushes      uint64 `json:"queue_pushes"`
	Flushes          uint64 `json:"flushes"`
	FlushRuns        uint64 `json:"flush_runs"`
	RecursionDrops   uint64 `json:"recursion_drops"`
	JobPanics        uint64 `json:"job_panics"`
	TrackingContexts int64  `json:"tracking_contexts"`
}

// ActiveEffects returns the number of effects created and not stopped.
func (s Stats) ActiveEffects() uint64 {
	if s.EffectsStopped > s.EffectsCreated {
		return 0
	}
	return s.EffectsCreated - s.EffectsStopped
}

// ReadStats returns the current counters.
func ReadStats() Stats {
	return Stats{
		EffectsCreated:   stats.effectsCreated.Load(),
		EffectsStopped:   stats.effectsStopped.Load(),
		EffectRuns:       stats.effectRuns.Load(),
		Tracks:           stats.tracks.Load(),
		Triggers:         stats.triggers.Load(),
		ReactiveProxies:  stats.reactiveProxies.Load(),
		ReadonlyProxies:  stats.readonlyProxies.Load(),
		ReadonlyRejected: stats.readonlyRejected.Load(),
		QueuePushes:      stats.queuePushes.Load(),
		Flushes:          stats.flushes.Load(),
		FlushRuns:        stats.flushRuns.Load(),
		RecursionDrops:   stats.recursionDrops.Load(),
		JobPanics:        stats.jobPanics.Load(),
		TrackingContexts: liveContexts.Load(),
	}
}

// ResetStats zeroes the counters.
func ResetStats() {
	stats.effectsCreated.Store(0)
	stats.effectsStopped.Store(0)
	stats.effectRuns.Store(0)
	stats.tracks.Store(0)
	stats.triggers.Store(0)
	stats.reactiveProxies.Store(0)
	stats.readonlyProxies.Store(0)
	stats.readonlyRejected.Store(0)
	stats.queuePushes.Store(0)
	stats.flushes.Store(0)
	stats.flushRuns.Store(0)
	stats.recursionDrops.Store(0)
	stats.jobPanics.Store(0)
}
