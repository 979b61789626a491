package fx

import (
	"log/slog"
	"sync/atomic"
)

// silenceReadonly suppresses the warning logged when a read-only proxy
// rejects a write. Rejections are still counted.
var silenceReadonly atomic.Bool

// Options configures package-wide behavior. Call Configure at start-up,
// before effects are created.
type Options struct {
	// Logger receives warnings and recovered errors. Nil keeps the
	// current logger.
	Logger *slog.Logger

	// QueueMode is the mode of the default queue (default: QueueSync).
	QueueMode QueueMode

	// Dispatcher schedules deferred flushes of the default queue.
	Dispatcher Dispatcher

	// RecursionLimit bounds how often one effect may run per flush
	// (default: DefaultRecursionLimit).
	RecursionLimit int

	// SilenceReadonlyWarnings turns off read-only rejection warnings.
	SilenceReadonlyWarnings bool
}

// Configure applies opts and replaces the default queue.
//
// Example:
//
//	fx.Configure(fx.Options{
//	    Logger:     slog.New(slog.NewTextHandler(os.Stderr, nil)),
//	    QueueMode:  fx.QueueDeferred,
//	    Dispatcher: fx.GoDispatcher,
//	})
func Configure(opts Options) {
	if opts.Logger != nil {
		SetLogger(opts.Logger)
	}
	silenceReadonly.Store(opts.SilenceReadonlyWarnings)

	mode := opts.QueueMode
	if mode == "" {
		mode = QueueSync
	}
	SetDefaultQueue(NewQueue(
		WithName("default"),
		WithMode(mode),
		WithDispatcher(opts.Dispatcher),
		WithRecursionLimit(opts.RecursionLimit),
	))
}
