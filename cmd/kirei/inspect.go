package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirei-dev/kirei/internal/config"
	kerrors "github.com/kirei-dev/kirei/internal/errors"
	"github.com/kirei-dev/kirei/pkg/fx"
	"github.com/kirei-dev/kirei/pkg/inspect"
)

func inspectCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		interval   time.Duration
		effects    int
		noDemo     bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Serve the live inspector",
		Long: `Serve the inspector: health, Prometheus metrics, a JSON stats
snapshot and a WebSocket stream of scheduler flushes.

Unless --no-demo is set, a demo workload mutates reactive state on
every tick so the inspector has something to show.

Examples:
  kirei inspect
  kirei inspect --addr=:9090 --interval=250ms
  kirei inspect --config=./kirei.json --no-demo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Inspector.Addr = addr
			}
			if interval <= 0 {
				return kerrors.New("CLI002").
					WithDetailf("--interval must be positive, got %s", interval)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runInspect(ctx, cfg, cmd.ErrOrStderr(), interval, effects, !noDemo)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to kirei.json (default: nearest kirei.json, else defaults)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from kirei.json)")
	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "Demo workload tick interval")
	cmd.Flags().IntVarP(&effects, "effects", "e", 4, "Number of demo effects")
	cmd.Flags().BoolVar(&noDemo, "no-demo", false, "Do not run the demo workload")

	return cmd
}

// loadConfig reads path if given, otherwise the nearest kirei.json.
// A missing kirei.json falls back to defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cfg, err := config.LoadFromWorkingDir()
	if errors.Is(err, kerrors.New("CFG003")) {
		return config.New(), nil
	}
	return cfg, err
}

// newLogger builds the process logger from the log section of cfg.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// configureFx applies cfg to the fx package.
func configureFx(cfg *config.Config, logger *slog.Logger) {
	opts := fx.Options{
		Logger:                  logger,
		QueueMode:               fx.QueueSync,
		RecursionLimit:          cfg.Fx.RecursionLimit,
		SilenceReadonlyWarnings: cfg.Fx.SilenceReadonlyWarnings,
	}
	if cfg.Deferred() {
		opts.QueueMode = fx.QueueDeferred
		opts.Dispatcher = fx.GoDispatcher
	}
	fx.Configure(opts)
}

func runInspect(ctx context.Context, cfg *config.Config, logOut io.Writer, interval time.Duration, effects int, demo bool) error {
	logger := newLogger(cfg, logOut)
	configureFx(cfg, logger)
	fx.EnableMetrics(fx.WithNamespace(cfg.Inspector.MetricsNamespace))

	server := inspect.New(inspect.Config{
		Addr:   cfg.Inspector.Addr,
		Queue:  fx.DefaultQueue(),
		Logger: logger,
	})

	if demo {
		w := newWorkload(effects, fx.QueuePush)
		defer w.stop()
		go runDemo(ctx, w, interval, logger)
	}

	return server.Run(ctx)
}

func runDemo(ctx context.Context, w *workload, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 1; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.step(i)
			logger.Debug("demo tick", "tick", i, "effect_runs", w.runs())
		}
	}
}
