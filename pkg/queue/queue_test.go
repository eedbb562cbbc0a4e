package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushWaitPop(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Push(2)

	v, ok := q.WaitPop()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = q.WaitPop()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestWaitPopBlocksUntilPush(t *testing.T) {
	q := New[string]()
	done := make(chan string, 1)

	go func() {
		v, ok := q.WaitPop()
		if ok {
			done <- v
		} else {
			done <- "<closed>"
		}
	}()

	time.Sleep(20 * time.Millisecond)
	q.Push("hello")

	select {
	case v := <-done:
		assert.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("WaitPop never returned")
	}
}

func TestCloseWakesWaiters(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	results := make([]bool, 4)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, ok := q.WaitPop()
			results[i] = ok
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	q.Close()
	wg.Wait()

	for _, ok := range results {
		assert.False(t, ok, "closed empty queue must wake waiters with ok=false")
	}
}

func TestCloseStillDrainsQueuedMessages(t *testing.T) {
	q := New[int]()
	q.Push(9)
	q.Close()

	v, ok := q.WaitPop()
	require.True(t, ok)
	assert.Equal(t, 9, v)

	_, ok = q.WaitPop()
	assert.False(t, ok)
}

func TestDeferAndRecoverInactive(t *testing.T) {
	q := New[string]()
	q.Push("job")
	q.DeferInactive("exit")
	q.DeferInactive("signal")

	// The deferred messages aren't visible to WaitPop until recovered.
	assert.Equal(t, 1, q.Len())

	q.RecoverInactive()
	assert.Equal(t, 3, q.Len())

	first, ok := q.WaitPop()
	require.True(t, ok)
	assert.Equal(t, "exit", first, "deferred messages are re-queued ahead of pending work")

	second, ok := q.WaitPop()
	require.True(t, ok)
	assert.Equal(t, "signal", second)

	third, ok := q.WaitPop()
	require.True(t, ok)
	assert.Equal(t, "job", third)
}

func TestLockHandoffScan(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Push(2)
	q.Push(3)

	// Simulate a stealing scan: pull every item out, keep the evens,
	// park the odds and push them back once the scan is done, all under
	// one lock hold.
	q.AcquireThread()
	var kept, parked []int
	for {
		item, ok := q.UnsafePop()
		if !ok {
			break
		}
		if item%2 == 0 {
			kept = append(kept, item)
		} else {
			parked = append(parked, item)
		}
	}
	for _, item := range parked {
		q.UnsafePush(item)
	}
	q.ReleaseThread()

	assert.Equal(t, []int{2}, kept)
	assert.Equal(t, 2, q.Len())

	v, ok := q.WaitPop()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = q.WaitPop()
	require.True(t, ok)
	assert.Equal(t, 3, v)
}
