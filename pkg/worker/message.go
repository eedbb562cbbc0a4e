package worker

import "context"

// Kind discriminates the tagged union of messages a worker's queues carry.
type Kind int

const (
	// KindRunJob carries a job for the main thread to execute.
	KindRunJob Kind = iota
	// KindRunAuxLambda carries a blocking call for the aux thread to run
	// on the main thread's behalf.
	KindRunAuxLambda
	// KindSignal wakes a specific nested scheduler frame.
	KindSignal
	// KindExit terminates a loop, unconditionally or at a specific frame.
	KindExit
)

// Job is a unit of work dispatched to a worker's main thread. Task is an
// opaque handle the task system owns; the worker never inspects it except
// to hand it back to onTaskComplete.
type Job struct {
	Fn   func(ctx context.Context)
	Ctx  context.Context
	Task any
}

// Message is the worker's queue element: exactly one of the Kind-specific
// fields below is meaningful for a given Kind.
type Message struct {
	Kind Kind

	Job Job // KindRunJob

	AuxLambda func() // KindRunAuxLambda

	// TargetStack names the nested frame depth a Signal/Exit/RunAuxLambda
	// is meant for. A negative value means "every frame" (unconditional).
	TargetStack int
}
