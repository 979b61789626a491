package fx

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kirei-dev/kirei/pkg/fx"

// DefaultRecursionLimit is how many times one effect may run within a
// single flush before it is dropped.
const DefaultRecursionLimit = 100

// QueueMode selects when a queue flushes.
type QueueMode string

const (
	// QueueSync flushes inside Push when no flush is in progress.
	QueueSync QueueMode = "sync"

	// QueueDeferred requests one flush per batch of pushes through the
	// queue's Dispatcher.
	QueueDeferred QueueMode = "deferred"
)

// Dispatcher arranges for flush to be called later, for example on the
// next tick of an event loop.
type Dispatcher func(flush func())

// GoDispatcher runs each flush on a new goroutine.
func GoDispatcher(flush func()) {
	go flush()
}

// FlushEvent summarises one queue flush.
type FlushEvent struct {
	Queue    string        `json:"queue"`
	Runs     int           `json:"runs"`
	Skipped  int           `json:"skipped"`
	Dropped  int           `json:"dropped"`
	Panics   int           `json:"panics"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration_ns"`
}

// Queue is an ordered, deduplicating job queue for effects.
//
// An effect pushed while it is already waiting is not added again. Once
// a job has started it may be pushed again, and the flush keeps draining
// until the queue is empty, so effects that schedule further effects run
// in the same flush. Stopped effects are skipped.
type Queue struct {
	name       string
	mode       QueueMode
	dispatcher Dispatcher
	limit      int
	tracer     trace.Tracer

	mu        sync.Mutex
	jobs      []*Fx
	pending   map[*Fx]struct{}
	flushing  bool
	scheduled bool

	observersMu  sync.Mutex
	observers    map[uint64]func(FlushEvent)
	nextObserver uint64
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithName names the queue in logs, metrics and spans.
func WithName(name string) QueueOption {
	return func(q *Queue) { q.name = name }
}

// WithMode sets the flush mode. The default is QueueSync.
func WithMode(mode QueueMode) QueueOption {
	return func(q *Queue) { q.mode = mode }
}

// WithDispatcher sets the dispatcher used in QueueDeferred mode. Without
// one, the owner of the queue must call Flush.
func WithDispatcher(d Dispatcher) QueueOption {
	return func(q *Queue) { q.dispatcher = d }
}

// WithRecursionLimit sets how many times one effect may run per flush.
// Values below 1 select DefaultRecursionLimit.
func WithRecursionLimit(n int) QueueOption {
	return func(q *Queue) { q.limit = n }
}

// WithTracer sets the tracer used for flush spans. The default comes from
// the global OpenTelemetry provider.
func WithTracer(t trace.Tracer) QueueOption {
	return func(q *Queue) { q.tracer = t }
}

// NewQueue creates a queue.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		name:    "default",
		mode:    QueueSync,
		pending: make(map[*Fx]struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.limit < 1 {
		q.limit = DefaultRecursionLimit
	}
	if q.tracer == nil {
		q.tracer = otel.Tracer(tracerName)
	}
	return q
}

// Name returns the queue name.
func (q *Queue) Name() string {
	return q.name
}

// Mode returns the flush mode.
func (q *Queue) Mode() QueueMode {
	return q.mode
}

// Len returns the number of waiting jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Push enqueues e unless it is already waiting or stopped. It has the
// Scheduler signature, so a queue can be passed to WithScheduler.
func (q *Queue) Push(e *Fx) {
	if e == nil || !e.Active() {
		return
	}

	q.mu.Lock()
	if _, ok := q.pending[e]; ok {
		q.mu.Unlock()
		return
	}
	q.pending[e] = struct{}{}
	q.jobs = append(q.jobs, e)

	var flushNow, dispatch bool
	switch q.mode {
	case QueueDeferred:
		if !q.flushing && !q.scheduled {
			q.scheduled = true
			dispatch = true
		}
	default:
		flushNow = !q.flushing
	}
	q.mu.Unlock()

	recordQueuePush()

	switch {
	case flushNow:
		q.Flush()
	case dispatch && q.dispatcher != nil:
		q.dispatcher(q.Flush)
	}
}

// Flush runs waiting jobs until the queue is empty. A Flush called while
// another flush is running returns immediately; jobs it would have run
// are picked up by the running flush.
func (q *Queue) Flush() {
	_ = q.FlushContext(context.Background())
}

// FlushContext is like Flush but stops between jobs when ctx is done,
// leaving the remaining jobs queued, and returns ctx.Err().
func (q *Queue) FlushContext(ctx context.Context) error {
	q.mu.Lock()
	if q.flushing {
		q.mu.Unlock()
		return nil
	}
	q.flushing = true
	q.scheduled = false
	q.mu.Unlock()

	ctx, span := q.tracer.Start(ctx, "fx.queue.flush",
		trace.WithAttributes(attribute.String("fx.queue", q.name)),
	)
	defer span.End()

	ev := FlushEvent{Queue: q.name, Started: time.Now()}
	runs := make(map[*Fx]int)

	var err error
	for {
		if err = ctx.Err(); err != nil {
			q.mu.Lock()
			q.flushing = false
			q.mu.Unlock()
			break
		}

		e, ok := q.next()
		if !ok {
			break
		}
		if !e.Active() {
			ev.Skipped++
			continue
		}

		runs[e]++
		if runs[e] > q.limit {
			ev.Dropped++
			q.dropRecursive(e, span)
			continue
		}

		if q.runJob(e, span) {
			ev.Runs++
		} else {
			ev.Panics++
		}
	}

	ev.Duration = time.Since(ev.Started)

	span.SetAttributes(
		attribute.Int("fx.runs", ev.Runs),
		attribute.Int("fx.skipped", ev.Skipped),
		attribute.Int("fx.dropped", ev.Dropped),
		attribute.Int("fx.panics", ev.Panics),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else if ev.Dropped > 0 || ev.Panics > 0 {
		span.SetStatus(codes.Error, "flush completed with failed jobs")
	} else {
		span.SetStatus(codes.Ok, "")
	}

	recordFlush(q.name, ev)
	q.emit(ev)
	return err
}

// next pops the first job. When the queue is empty it ends the flush
// under the same lock, so a concurrent Push either lands in this flush or
// starts its own.
func (q *Queue) next() (*Fx, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		q.flushing = false
		return nil, false
	}
	e := q.jobs[0]
	q.jobs[0] = nil
	q.jobs = q.jobs[1:]
	delete(q.pending, e)
	return e, true
}

func (q *Queue) runJob(e *Fx, span trace.Span) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err := jobPanicError(e, r)
			span.RecordError(err)
			recordJobPanic(q.name)
			logger().Error("fx: scheduled job panicked",
				"code", err.Code,
				"queue", q.name,
				"effect", e.ID(),
				"error", err.Wrapped,
			)
		}
	}()

	e.Run()
	return true
}

func (q *Queue) dropRecursive(e *Fx, span trace.Span) {
	err := recursionError(e, q.limit)
	span.RecordError(err)
	recordRecursionDrop(q.name)
	logger().Error("fx: maximum recursive updates exceeded",
		"code", err.Code,
		"queue", q.name,
		"effect", e.ID(),
		"limit", q.limit,
	)
}

// Observe registers fn to receive an event after every flush and returns
// a function that unregisters it.
func (q *Queue) Observe(fn func(FlushEvent)) func() {
	q.observersMu.Lock()
	defer q.observersMu.Unlock()

	if q.observers == nil {
		q.observers = make(map[uint64]func(FlushEvent))
	}
	q.nextObserver++
	id := q.nextObserver
	q.observers[id] = fn

	return func() {
		q.observersMu.Lock()
		defer q.observersMu.Unlock()
		delete(q.observers, id)
	}
}

func (q *Queue) emit(ev FlushEvent) {
	q.observersMu.Lock()
	observers := make([]func(FlushEvent), 0, len(q.observers))
	for _, fn := range q.observers {
		observers = append(observers, fn)
	}
	q.observersMu.Unlock()

	for _, fn := range observers {
		fn(ev)
	}
}

var (
	defaultQueue     atomic.Pointer[Queue]
	defaultQueueOnce sync.Once
)

// DefaultQueue returns the process-wide queue used by QueuePush and
// QueueFlush.
func DefaultQueue() *Queue {
	defaultQueueOnce.Do(func() {
		defaultQueue.CompareAndSwap(nil, NewQueue())
	})
	return defaultQueue.Load()
}

// SetDefaultQueue replaces the process-wide queue. Jobs waiting in the
// previous queue stay there.
func SetDefaultQueue(q *Queue) {
	if q == nil {
		q = NewQueue()
	}
	defaultQueueOnce.Do(func() {})
	defaultQueue.Store(q)
}

// QueuePush pushes e onto the default queue. Use it as a scheduler:
//
//	fx.Effect(render, fx.WithScheduler(fx.QueuePush))
func QueuePush(e *Fx) {
	DefaultQueue().Push(e)
}

// QueueFlush flushes the default queue.
func QueueFlush() {
	DefaultQueue().Flush()
}
