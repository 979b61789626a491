package fx

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecording(t *testing.T) {
	captureLogs(t)

	reg := prometheus.NewRegistry()
	EnableMetrics(WithRegistry(reg), WithNamespace("test"))
	defer DisableMetrics()

	m := globalMetrics.Load()
	if m == nil {
		t.Fatal("EnableMetrics did not install collectors")
	}

	state := ReactiveObject(NewObject("a", 1))
	e := Effect(func() { _ = state.Get("a") })
	state.Set("a", 2)
	e.Stop()

	ReadonlyObject(NewObject()).Set("x", 1)

	q := NewQueue(WithName("metrics"))
	q.Push(New(func() any { return nil }, Lazy()))

	tests := []struct {
		name      string
		collector prometheus.Collector
		want      float64
	}{
		{"effects created", m.effectsCreated, 2},
		{"effects stopped", m.effectsStopped, 1},
		{"active effects", m.activeEffects, 1},
		{"effect runs", m.effectRuns, 3},
		{"tracks", m.tracks, 2},
		{"set triggers", m.triggers.WithLabelValues("set"), 1},
		{"reactive proxies", m.proxies.WithLabelValues("reactive"), 1},
		{"readonly proxies", m.proxies.WithLabelValues("readonly"), 1},
		{"readonly rejections", m.readonlyRejected, 1},
		{"queue pushes", m.queuePushes, 1},
		{"flushes", m.flushes.WithLabelValues("metrics"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.collector); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(m.flushDuration); n != 1 {
		t.Errorf("flush duration series = %d, want 1", n)
	}
}

func TestMetricsExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	EnableMetrics(WithRegistry(reg), WithSubsystem("core"))
	defer DisableMetrics()

	Effect(func() {}).Stop()

	expected := `
# HELP kirei_core_effects_created_total Total number of effects created
# TYPE kirei_core_effects_created_total counter
kirei_core_effects_created_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "kirei_core_effects_created_total"); err != nil {
		t.Error(err)
	}
}

func TestRecordingWithoutMetricsIsSafe(t *testing.T) {
	DisableMetrics()
	Effect(func() {}).Stop()
}

func TestStats(t *testing.T) {
	ResetStats()

	r := NewRef(0)
	e := Effect(func() { _ = r.Value() })
	r.Set(1)
	e.Stop()

	s := ReadStats()
	if s.EffectsCreated != 1 || s.EffectsStopped != 1 {
		t.Errorf("created=%d stopped=%d", s.EffectsCreated, s.EffectsStopped)
	}
	if s.EffectRuns != 2 {
		t.Errorf("EffectRuns = %d, want 2", s.EffectRuns)
	}
	if s.ActiveEffects() != 0 {
		t.Errorf("ActiveEffects() = %d", s.ActiveEffects())
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"effect_runs":2`) {
		t.Errorf("json = %s", data)
	}
}
