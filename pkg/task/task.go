// Package task implements the task graph and worker pool: a fixed set of
// pkg/worker.Workers, a DAG of tasks linked by dependency edges,
// ready-scheduling as dependencies complete, and the yieldUntil
// suspension primitive task bodies use to block without tying up a
// worker.
package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kecho/splatastic/internal/logger"
	"github.com/kecho/splatastic/internal/telemetry"
	"github.com/kecho/splatastic/pkg/handle"
	"github.com/kecho/splatastic/pkg/metrics"
	"github.com/kecho/splatastic/pkg/worker"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrUnknownTask is returned for any operation on a Task that does
	// not name a live task record.
	ErrUnknownTask = errors.New("task: unknown task")
	// ErrTaskStarted is returned by Depends when src has already left
	// the Created state — forming a dependency edge after a task starts
	// running is a contract violation.
	ErrTaskStarted = errors.New("task: cannot add a dependency on a task that has already started")
)

// Task is an opaque reference into a TaskSystem's task graph.
type Task = handle.Handle

// State is a task's position in its Created → Scheduled → Running →
// Completed lifecycle (or Cleaned, once its record has been freed).
type State int

const (
	StateCreated State = iota
	StateScheduled
	StateRunning
	StateCompleted
	StateCleaned
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCleaned:
		return "cleaned"
	default:
		return "unknown"
	}
}

type record struct {
	desc  string
	// baseDesc is desc without the correlation suffix; used as the
	// metrics label so label cardinality stays bounded.
	baseDesc string

	data  any
	fn    func(ctx context.Context)
	ctx   context.Context
	state State

	parents     []Task
	children    []Task
	pendingDeps int

	scheduledAt time.Time
	completed   chan struct{}
}

// TaskSystem owns a fixed pool of workers and the task graph scheduled
// across them.
type TaskSystem struct {
	mu      sync.Mutex
	tasks   *handle.Table[*record]
	workers []*worker.Worker
	nextIdx atomic.Uint32
	metrics metrics.TaskMetrics

	// pendingCount mirrors the number of Depends-created edges not yet
	// resolved, purely for the RecordPending gauge below.
	pendingCount atomic.Int64
}

// New creates a TaskSystem with numWorkers workers and starts them
// immediately.
func New(numWorkers int) *TaskSystem {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	ts := &TaskSystem{
		tasks:   handle.New[*record](0),
		metrics: metrics.NewTaskMetrics(),
	}
	ts.workers = make([]*worker.Worker, numWorkers)
	for i := range ts.workers {
		ts.workers[i] = worker.New(i, ts.onTaskComplete)
	}
	for _, w := range ts.workers {
		w.Start()
	}
	logger.Info("task system started", "workers", numWorkers)
	return ts
}

// Shutdown stops every worker's main and aux goroutines and waits for
// all of them to exit, fanning the wait out across the pool with
// errgroup rather than a hand-rolled WaitGroup.
func (ts *TaskSystem) Shutdown() error {
	var g errgroup.Group
	for _, w := range ts.workers {
		w := w
		g.Go(func() error {
			w.Shutdown()
			w.Wait()
			return nil
		})
	}
	return g.Wait()
}

// CreateTask allocates a task record. fn may be nil, in which case the
// task is a pure synchronization placeholder: it has no body, but still
// participates in dependency edges and completes as soon as it is
// scheduled. data is an opaque payload retrievable with Data.
func (ts *TaskSystem) CreateTask(ctx context.Context, desc string, data any, fn func(ctx context.Context)) (Task, error) {
	h, slot, err := ts.tasks.Allocate()
	if err != nil {
		return handle.Invalid(), err
	}
	// Suffix desc with a short correlation id so repeated tasks sharing a
	// description (e.g. every "asyncfile.read" task) can still be told
	// apart in logs.
	*slot = &record{
		desc:      desc + "-" + uuid.NewString()[:8],
		baseDesc:  desc,
		data:      data,
		fn:        fn,
		ctx:       ctx,
		state:     StateCreated,
		completed: make(chan struct{}),
	}
	return h, nil
}

// lookup resolves t to its record. The table stores *record, so Get
// hands back a pointer to the slot's pointer; this flattens it.
func (ts *TaskSystem) lookup(t Task) (*record, bool) {
	p, ok := ts.tasks.Get(t)
	if !ok {
		return nil, false
	}
	return *p, true
}

// Data returns the opaque payload passed to CreateTask.
func (ts *TaskSystem) Data(t Task) (any, bool) {
	rec, ok := ts.lookup(t)
	if !ok {
		return nil, false
	}
	return rec.data, true
}

// State reports t's current lifecycle state.
func (ts *TaskSystem) State(t Task) (State, bool) {
	rec, ok := ts.lookup(t)
	if !ok {
		return StateCleaned, false
	}
	return rec.state, true
}

// Depends adds the edge src → dst: dst will not be scheduled until src
// (and every other predecessor) has completed. It is illegal to call
// once src has left the Created state.
func (ts *TaskSystem) Depends(src, dst Task) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	srcRec, ok := ts.lookup(src)
	if !ok {
		return ErrUnknownTask
	}
	dstRec, ok := ts.lookup(dst)
	if !ok {
		return ErrUnknownTask
	}
	if srcRec.state != StateCreated {
		return ErrTaskStarted
	}

	dstRec.pendingDepsIncr()
	srcRec.children = append(srcRec.children, dst)
	dstRec.parents = append(dstRec.parents, src)
	if ts.metrics != nil {
		ts.metrics.RecordPending(int(ts.pendingCount.Add(1)))
	}
	return nil
}

// DependsMany adds src → dst for every task in dsts.
func (ts *TaskSystem) DependsMany(src Task, dsts ...Task) error {
	for _, dst := range dsts {
		if err := ts.Depends(src, dst); err != nil {
			return err
		}
	}
	return nil
}

// pendingDeps is tracked on record but incremented/decremented only
// while ts.mu is held; these helpers exist purely to keep the field
// access next to the struct definition readable.
func (r *record) pendingDepsIncr() { r.pendingDeps++ }

// Execute schedules every task in tasks whose dependencies are already
// satisfied (pendingDeps == 0). Tasks with pending dependencies are left
// alone — they are scheduled transitively once their last predecessor
// completes.
func (ts *TaskSystem) Execute(tasks ...Task) {
	for _, t := range tasks {
		ts.tryScheduleReady(t)
	}
}

func (ts *TaskSystem) tryScheduleReady(t Task) {
	ts.mu.Lock()
	rec, ok := ts.lookup(t)
	if !ok || rec.state != StateCreated || rec.pendingDeps > 0 {
		ts.mu.Unlock()
		return
	}
	rec.state = StateScheduled
	rec.scheduledAt = time.Now()
	ts.mu.Unlock()

	if ts.metrics != nil {
		ts.metrics.ObserveScheduled(rec.baseDesc)
	}
	ts.dispatch(t, rec)
}

func (ts *TaskSystem) dispatch(t Task, rec *record) {
	w := ts.pickWorker()
	ctx := rec.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	w.Schedule(worker.Job{
		Ctx:  ctx,
		Task: t,
		Fn: func(jobCtx context.Context) {
			ts.markRunning(t)
			jobCtx, span := telemetry.StartTaskSpan(jobCtx, rec.desc, telemetry.TaskID(t.Index()))
			defer span.End()
			// Carry the task identity and trace ids through every nested
			// yieldUntil frame this body may open.
			jobCtx = logger.WithContext(jobCtx,
				logger.NewLogContext(rec.desc).WithTrace(telemetry.TraceID(jobCtx), telemetry.SpanID(jobCtx)))
			logger.DebugCtx(jobCtx, "task: running", logger.TaskID(t.Index()))
			if rec.fn != nil {
				rec.fn(jobCtx)
			}
		},
	})
}

func (ts *TaskSystem) markRunning(t Task) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if rec, ok := ts.lookup(t); ok {
		rec.state = StateRunning
	}
}

func (ts *TaskSystem) pickWorker() *worker.Worker {
	idx := ts.nextIdx.Add(1) % uint32(len(ts.workers))
	return ts.workers[idx]
}

// onTaskComplete is installed on every worker; it is invoked with a
// Job.Task value, which is always a Task for jobs dispatched by this
// TaskSystem.
func (ts *TaskSystem) onTaskComplete(taskAny any) {
	t, ok := taskAny.(Task)
	if !ok {
		return
	}

	ts.mu.Lock()
	rec, ok := ts.lookup(t)
	if !ok {
		ts.mu.Unlock()
		return
	}
	rec.state = StateCompleted
	close(rec.completed)
	if ts.metrics != nil && !rec.scheduledAt.IsZero() {
		ts.metrics.ObserveCompleted(rec.baseDesc, time.Since(rec.scheduledAt))
	}

	var ready []Task
	for _, child := range rec.children {
		childRec, ok := ts.lookup(child)
		if !ok {
			continue
		}
		childRec.pendingDeps--
		if ts.metrics != nil {
			ts.metrics.RecordPending(int(ts.pendingCount.Add(-1)))
		}
		if childRec.pendingDeps == 0 && childRec.state == StateCreated {
			childRec.state = StateScheduled
			childRec.scheduledAt = time.Now()
			ready = append(ready, child)
		}
	}
	ts.mu.Unlock()

	for _, child := range ready {
		if childRec, ok := ts.lookup(child); ok {
			if ts.metrics != nil {
				ts.metrics.ObserveScheduled(childRec.baseDesc)
			}
			ts.dispatch(child, childRec)
		}
	}
}

// Wait blocks the caller until t completes. From inside a worker-
// dispatched task body it suspends via yieldUntil instead of blocking
// the worker outright; from the host thread it blocks directly.
func (ts *TaskSystem) Wait(ctx context.Context, t Task) error {
	rec, ok := ts.lookup(t)
	if !ok {
		return ErrUnknownTask
	}
	completed := rec.completed
	YieldUntil(ctx, func() {
		<-completed
	})
	return nil
}

// CleanFinishedTasks frees every completed task whose whole reachable
// subtree has also completed.
func (ts *TaskSystem) CleanFinishedTasks() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	var roots []Task
	ts.tasks.ForEach(func(h handle.Handle, rec **record) bool {
		if (*rec).state == StateCompleted {
			roots = append(roots, h)
		}
		return true
	})
	for _, t := range roots {
		ts.cleanSubtreeLocked(t)
	}
}

// CleanTaskTree frees t and its descendants, provided every one of them
// has completed. Nodes that haven't completed yet (and their ancestors,
// transitively) are left alone.
func (ts *TaskSystem) CleanTaskTree(t Task) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.cleanSubtreeLocked(t)
}

// cleanSubtreeLocked requires ts.mu held. It reports whether t's record
// is gone afterwards, either freed now or already freed earlier.
func (ts *TaskSystem) cleanSubtreeLocked(t Task) bool {
	rec, ok := ts.lookup(t)
	if !ok {
		return true
	}
	if rec.state != StateCompleted {
		return false
	}
	allFreed := true
	children := append([]Task(nil), rec.children...)
	for _, c := range children {
		if !ts.cleanSubtreeLocked(c) {
			allFreed = false
		}
	}
	if !allFreed {
		return false
	}
	ts.tasks.Free(t)
	return true
}

// Yield runs another ready job on the current goroutine's stack if one
// is available on the current worker, otherwise returns immediately. It
// is a no-op outside a worker-dispatched task.
func Yield(ctx context.Context) {
	w := worker.FromContext(ctx)
	if w == nil {
		return
	}
	job, ok := w.StealJob()
	if !ok {
		return
	}
	w.Dispatch(job)
}

// YieldUntil is the suspension primitive task bodies (and pkg/asyncfile)
// use to block on a single blocking call without consuming a worker: if
// ctx carries a worker, the call is delegated to the worker's aux
// goroutine and a nested scheduler frame is entered; otherwise (host
// thread) blockFn simply runs inline.
func YieldUntil(ctx context.Context, blockFn func()) {
	if w := worker.FromContext(ctx); w != nil {
		w.WaitUntil(ctx, blockFn)
		return
	}
	blockFn()
}
