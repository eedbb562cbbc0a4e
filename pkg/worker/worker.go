// Package worker implements one slot of the task system's thread pool: a
// main goroutine that executes jobs and can nest its own scheduler loop
// to stay busy while a blocking call runs on a dedicated aux goroutine,
// and the aux goroutine itself.
//
// This is the Go rendering of the two-OS-thread-per-worker design:
// goroutines stand in for OS threads, and a context.Context value
// (Context/FromContext below) stands in for the per-thread "current
// worker" pointer, since a task body in Go is an ordinary function
// invoked with an explicit ctx rather than code running on a thread with
// implicit thread-local storage.
package worker

import (
	"context"

	"github.com/kecho/splatastic/internal/logger"
	"github.com/kecho/splatastic/pkg/metrics"
	"github.com/kecho/splatastic/pkg/queue"
)

type workerCtxKey struct{}

var currentWorkerKey = workerCtxKey{}

// Context returns a copy of ctx carrying w as the current worker.
func Context(ctx context.Context, w *Worker) context.Context {
	return context.WithValue(ctx, currentWorkerKey, w)
}

// FromContext returns the worker executing the current task body, or nil
// if ctx was not dispatched by a Worker (the host thread, or a context
// that was not threaded through).
func FromContext(ctx context.Context) *Worker {
	w, _ := ctx.Value(currentWorkerKey).(*Worker)
	return w
}

// Worker is one main+aux goroutine pair, each draining its own queue.
// activeDepth is only ever read or written by the goroutine running
// run/WaitUntil, so it needs no lock of its own.
type Worker struct {
	id int

	mainQueue *queue.Queue[Message]
	auxQueue  *queue.Queue[Message]

	activeDepth int

	// onTaskComplete is invoked with the Job.Task of every RunJob that
	// finishes, if set. Installed once by the task system before any job
	// is scheduled.
	onTaskComplete func(task any)

	mainDone chan struct{}
	auxDone  chan struct{}

	metrics metrics.WorkerMetrics
}

// New creates a worker. id is a stable index used for logging and
// round-robin dispatch by the pool.
func New(id int, onTaskComplete func(task any)) *Worker {
	return &Worker{
		id:             id,
		mainQueue:      queue.New[Message](),
		auxQueue:       queue.New[Message](),
		onTaskComplete: onTaskComplete,
		mainDone:       make(chan struct{}),
		auxDone:        make(chan struct{}),
		metrics:        metrics.NewWorkerMetrics(),
	}
}

// ID returns the worker's pool index.
func (w *Worker) ID() int {
	return w.id
}

// Start launches the main and aux goroutines. It returns immediately;
// the goroutines run until Shutdown's Exit messages are processed.
func (w *Worker) Start() {
	go func() {
		w.auxLoop()
		close(w.auxDone)
	}()
	go func() {
		w.run(0)
		close(w.mainDone)
	}()
}

// Schedule pushes a job to the main queue for this worker to run.
func (w *Worker) Schedule(job Job) {
	w.mainQueue.Push(Message{Kind: KindRunJob, Job: job})
}

// Dispatch runs job synchronously on the calling goroutine, exactly as
// the main loop would, including the onTaskComplete callback. Used by
// Yield to run a stolen job on the current stack instead of re-queueing
// it.
func (w *Worker) Dispatch(job Job) {
	w.runJob(job)
}

// Shutdown asks both loops to terminate unconditionally. It does not
// block; pair with Wait to know when the goroutines have actually
// exited (see pkg/task's use of errgroup).
func (w *Worker) Shutdown() {
	w.mainQueue.Push(Message{Kind: KindExit, TargetStack: -1})
	w.auxQueue.Push(Message{Kind: KindExit})
}

// Wait blocks until both the main and aux goroutines started by Start
// have returned.
func (w *Worker) Wait() {
	<-w.mainDone
	<-w.auxDone
}

// StealJob briefly takes the main queue's lock and scans for the first
// RunJob message, pushing every non-job message it passed over back in
// order. The second return is false if no RunJob was found.
func (w *Worker) StealJob() (Job, bool) {
	w.mainQueue.AcquireThread()
	defer w.mainQueue.ReleaseThread()

	var parked []Message
	for {
		msg, ok := w.mainQueue.UnsafePop()
		if !ok {
			break
		}
		if msg.Kind == KindRunJob {
			for _, p := range parked {
				w.mainQueue.UnsafePush(p)
			}
			if w.metrics != nil {
				w.metrics.ObserveSteal(w.id)
			}
			return msg.Job, true
		}
		parked = append(parked, msg)
	}
	for _, p := range parked {
		w.mainQueue.UnsafePush(p)
	}
	return Job{}, false
}

// WaitUntil is the suspension primitive invoked by a task body that wants
// to block without consuming the worker: blockFn runs on the aux
// goroutine while the main goroutine nests another scheduler frame to
// service other ready work. WaitUntil returns only after blockFn
// completes.
func (w *Worker) WaitUntil(ctx context.Context, blockFn func()) {
	target := w.activeDepth + 1
	w.auxQueue.Push(Message{Kind: KindRunAuxLambda, AuxLambda: blockFn, TargetStack: target})

	w.activeDepth++
	if w.metrics != nil {
		w.metrics.RecordActiveDepth(w.id, w.activeDepth)
	}
	w.run(w.activeDepth)
	w.activeDepth--
	if w.metrics != nil {
		w.metrics.RecordActiveDepth(w.id, w.activeDepth)
	}

	// A deeper exit/signal may have been buffered while this frame was
	// active; put it back so the frame it belongs to can see it.
	w.mainQueue.RecoverInactive()
}

// run is the main thread loop. depth is this invocation's activeDepth: a
// Signal or Exit targeting exactly this depth
// (or targeting every depth with a negative TargetStack) ends the loop;
// anything else is deferred for the frame it was meant for.
func (w *Worker) run(depth int) {
	defer w.mainQueue.RecoverInactive()

	for {
		msg, ok := w.mainQueue.WaitPop()
		if !ok {
			return
		}

		switch msg.Kind {
		case KindRunJob:
			w.runJob(msg.Job)
		case KindExit, KindSignal:
			if msg.TargetStack < 0 || msg.TargetStack == depth {
				return
			}
			w.mainQueue.DeferInactive(msg)
		}
	}
}

func (w *Worker) runJob(job Job) {
	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = Context(ctx, w)

	lc := logger.FromContext(ctx)
	if lc == nil {
		lc = logger.NewLogContext("")
	}
	ctx = logger.WithContext(ctx, lc.WithWorker(w.id))

	logger.DebugCtx(ctx, "worker: running job", logger.StackDepth(w.activeDepth))
	if w.metrics != nil {
		w.metrics.ObserveJobRun(w.id)
	}
	job.Fn(ctx)

	if w.onTaskComplete != nil {
		w.onTaskComplete(job.Task)
	}
}

// auxLoop runs blocking lambdas handed to it by WaitUntil and signals the
// main queue when each completes.
func (w *Worker) auxLoop() {
	for {
		msg, ok := w.auxQueue.WaitPop()
		if !ok {
			return
		}

		switch msg.Kind {
		case KindRunAuxLambda:
			msg.AuxLambda()
			w.mainQueue.Push(Message{Kind: KindSignal, TargetStack: msg.TargetStack})
		case KindExit:
			return
		}
	}
}
