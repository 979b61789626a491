package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	kerrors "github.com/kirei-dev/kirei/internal/errors"
	"github.com/kirei-dev/kirei/pkg/fx"
)

// benchResult summarizes one bench run.
type benchResult struct {
	Iterations int
	Effects    int
	EffectRuns uint64
	Flushes    uint64
	Duration   time.Duration
}

// PerStep returns the mean time per batched step.
func (r benchResult) PerStep() time.Duration {
	if r.Iterations == 0 {
		return 0
	}
	return r.Duration / time.Duration(r.Iterations)
}

func benchCmd() *cobra.Command {
	var (
		iterations int
		effects    int
		scheduler  string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a synthetic reactive workload",
		Long: `Run a synthetic workload against the reactive core and print
effect run counts and timings.

Schedulers:
  direct   effects re-run inside the triggering write (default)
  queue    effects are pushed onto a synchronous scheduler queue

Examples:
  kirei bench
  kirei bench --iterations=100000 --effects=16
  kirei bench --scheduler=queue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations < 1 || effects < 1 {
				return kerrors.New("CLI002").
					WithDetail("--iterations and --effects must be at least 1")
			}

			var q *fx.Queue
			switch scheduler {
			case "direct":
			case "queue":
				q = fx.NewQueue(fx.WithName("bench"))
			default:
				return kerrors.New("CLI002").
					WithDetailf("--scheduler must be \"direct\" or \"queue\", got %q", scheduler)
			}

			res := runBench(iterations, effects, q)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			info(out, "Iterations:  %d", res.Iterations)
			info(out, "Effects:     %d", res.Effects)
			info(out, "Effect runs: %d", res.EffectRuns)
			if q != nil {
				info(out, "Flushes:     %d", res.Flushes)
			}
			info(out, "Duration:    %s", res.Duration.Round(time.Microsecond))
			info(out, "Per step:    %s", res.PerStep())
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&iterations, "iterations", "n", 10000, "Number of batched steps")
	cmd.Flags().IntVarP(&effects, "effects", "e", 8, "Number of watching effects")
	cmd.Flags().StringVarP(&scheduler, "scheduler", "s", "direct", "Effect scheduler (direct, queue)")

	return cmd
}

// runBench drives iterations steps of the workload. A nil queue runs
// effects directly.
func runBench(iterations, effects int, q *fx.Queue) benchResult {
	var flushes uint64
	var scheduler fx.Scheduler
	if q != nil {
		scheduler = q.Push
		unobserve := q.Observe(func(fx.FlushEvent) { flushes++ })
		defer unobserve()
	}

	w := newWorkload(effects, scheduler)
	defer w.stop()
	initial := w.runs()

	start := time.Now()
	for i := 1; i <= iterations; i++ {
		w.step(i)
	}
	elapsed := time.Since(start)

	return benchResult{
		Iterations: iterations,
		Effects:    effects,
		EffectRuns: w.runs() - initial,
		Flushes:    flushes,
		Duration:   elapsed,
	}
}
