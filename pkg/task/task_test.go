package task

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForState(t *testing.T, ts *TaskSystem, tk Task, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, ok := ts.State(tk); ok && got == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	got, _ := ts.State(tk)
	t.Fatalf("task never reached state %s, last seen %s", want, got)
}

func TestCreateAndExecuteSingleTask(t *testing.T) {
	ts := New(2)
	defer ts.Shutdown()

	ran := make(chan struct{})
	tk, err := ts.CreateTask(context.Background(), "solo", nil, func(ctx context.Context) {
		close(ran)
	})
	require.NoError(t, err)

	ts.Execute(tk)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
	waitForState(t, ts, tk, StateCompleted)
}

func TestDependsOrdersExecution(t *testing.T) {
	ts := New(2)
	defer ts.Shutdown()

	var mu sync.Mutex
	var order []string
	record := func(name string) func(context.Context) {
		return func(context.Context) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}

	a, err := ts.CreateTask(context.Background(), "a", nil, record("a"))
	require.NoError(t, err)
	b, err := ts.CreateTask(context.Background(), "b", nil, record("b"))
	require.NoError(t, err)
	c, err := ts.CreateTask(context.Background(), "c", nil, record("c"))
	require.NoError(t, err)

	require.NoError(t, ts.Depends(a, c))
	require.NoError(t, ts.Depends(b, c))

	ts.Execute(a, b, c)

	waitForState(t, ts, c, StateCompleted)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 3)
	assert.Equal(t, "c", order[2], "c must run only after both a and b complete")
}

func TestDependsAfterStartIsRejected(t *testing.T) {
	ts := New(1)
	defer ts.Shutdown()

	started := make(chan struct{})
	block := make(chan struct{})
	a, err := ts.CreateTask(context.Background(), "a", nil, func(context.Context) {
		close(started)
		<-block
	})
	require.NoError(t, err)
	b, err := ts.CreateTask(context.Background(), "b", nil, func(context.Context) {})
	require.NoError(t, err)

	ts.Execute(a)
	<-started

	err = ts.Depends(a, b)
	assert.ErrorIs(t, err, ErrTaskStarted)
	close(block)
}

func TestWaitBlocksUntilCompletion(t *testing.T) {
	ts := New(2)
	defer ts.Shutdown()

	release := make(chan struct{})
	a, err := ts.CreateTask(context.Background(), "a", nil, func(context.Context) {
		<-release
	})
	require.NoError(t, err)
	ts.Execute(a)

	waitDone := make(chan struct{})
	go func() {
		require.NoError(t, ts.Wait(context.Background(), a))
		close(waitDone)
	}()

	select {
	case <-waitDone:
		t.Fatal("Wait returned before the task completed")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)

	select {
	case <-waitDone:
	case <-time.After(time.Second):
		t.Fatal("Wait never returned after completion")
	}
}

func TestWaitFromInsideWorkerNestsScheduler(t *testing.T) {
	ts := New(1)
	defer ts.Shutdown()

	release := make(chan struct{})
	inner, err := ts.CreateTask(context.Background(), "inner", nil, func(context.Context) {
		<-release
	})
	require.NoError(t, err)

	outerRan := make(chan struct{})
	outer, err := ts.CreateTask(context.Background(), "outer", nil, func(ctx context.Context) {
		ts.Execute(inner)
		require.NoError(t, ts.Wait(ctx, inner))
		close(outerRan)
	})
	require.NoError(t, err)

	ts.Execute(outer)

	time.Sleep(30 * time.Millisecond)
	close(release)

	select {
	case <-outerRan:
	case <-time.After(time.Second):
		t.Fatal("outer task never resumed after inner completed")
	}
}

func TestCleanTaskTreeFreesCompletedSubtree(t *testing.T) {
	ts := New(1)
	defer ts.Shutdown()

	parent, err := ts.CreateTask(context.Background(), "parent", nil, func(context.Context) {})
	require.NoError(t, err)
	child, err := ts.CreateTask(context.Background(), "child", nil, func(context.Context) {})
	require.NoError(t, err)
	require.NoError(t, ts.Depends(parent, child))

	ts.Execute(parent)
	waitForState(t, ts, child, StateCompleted)

	ts.CleanTaskTree(parent)

	_, ok := ts.State(parent)
	assert.False(t, ok)
	_, ok = ts.State(child)
	assert.False(t, ok)
}

func TestCleanFinishedTasksSweepsAllCompleted(t *testing.T) {
	ts := New(2)
	defer ts.Shutdown()

	var tasks []Task
	for i := 0; i < 5; i++ {
		tk, err := ts.CreateTask(context.Background(), "leaf", nil, func(context.Context) {})
		require.NoError(t, err)
		tasks = append(tasks, tk)
	}
	ts.Execute(tasks...)
	for _, tk := range tasks {
		waitForState(t, ts, tk, StateCompleted)
	}

	ts.CleanFinishedTasks()

	for _, tk := range tasks {
		_, ok := ts.State(tk)
		assert.False(t, ok)
	}
}

func TestDataReturnsTaskPayload(t *testing.T) {
	ts := New(1)
	defer ts.Shutdown()

	payload := &struct{ n int }{n: 9}
	tk, err := ts.CreateTask(context.Background(), "carrier", payload, nil)
	require.NoError(t, err)

	got, ok := ts.Data(tk)
	require.True(t, ok)
	assert.Same(t, payload, got)

	_, ok = ts.Data(Task{})
	assert.False(t, ok)
}

func TestDependsManyGatesOnAllPredecessors(t *testing.T) {
	ts := New(2)
	defer ts.Shutdown()

	var gateRan atomic.Bool
	gate, err := ts.CreateTask(context.Background(), "gate", nil, func(context.Context) {
		gateRan.Store(true)
	})
	require.NoError(t, err)

	var preds []Task
	for i := 0; i < 3; i++ {
		p, err := ts.CreateTask(context.Background(), "pred", nil, func(context.Context) {})
		require.NoError(t, err)
		preds = append(preds, p)
	}
	for _, p := range preds {
		require.NoError(t, ts.DependsMany(p, gate))
	}

	// Scheduling the gate alone must be a no-op while predecessors are
	// outstanding.
	ts.Execute(gate)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, gateRan.Load())

	ts.Execute(preds...)
	waitForState(t, ts, gate, StateCompleted)
	assert.True(t, gateRan.Load())
}

func TestYieldRunsStolenJobInline(t *testing.T) {
	ts := New(1)
	defer ts.Shutdown()

	var stolenRan atomic.Bool
	second, err := ts.CreateTask(context.Background(), "second", nil, func(context.Context) {
		stolenRan.Store(true)
	})
	require.NoError(t, err)

	firstDone := make(chan struct{})
	first, err := ts.CreateTask(context.Background(), "first", nil, func(ctx context.Context) {
		ts.Execute(second)
		// Give the scheduler a moment to have queued `second` behind
		// this very job on the lone worker, then yield to run it
		// in-line rather than deadlocking waiting for a second worker.
		time.Sleep(10 * time.Millisecond)
		Yield(ctx)
		close(firstDone)
	})
	require.NoError(t, err)
	ts.Execute(first)

	select {
	case <-firstDone:
	case <-time.After(time.Second):
		t.Fatal("first task never finished")
	}
	assert.True(t, stolenRan.Load())
}
