package eventloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestContext_fifoOrder(t *testing.T) {
	c := NewWorker("order", nil)
	defer c.Close()

	var got []int
	done := make(chan struct{})
	for i := 0; i < 100; i++ {
		i := i
		require.NoError(t, c.Schedule(func() {
			got = append(got, i) // safe: single goroutine
			if i == 99 {
				close(done)
			}
		}))
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}

	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestContext_inLoop(t *testing.T) {
	c := NewWorker("affinity", nil)
	defer c.Close()

	require.False(t, c.InLoop())

	res := make(chan bool, 1)
	require.NoError(t, c.Schedule(func() { res <- c.InLoop() }))
	require.True(t, <-res)
}

func TestContext_scheduleAfterClose(t *testing.T) {
	c := NewWorker("closed", nil)
	c.Close()

	err := c.Schedule(func() { t.Fatal("must not run") })
	require.ErrorIs(t, err, ErrClosed)
}

func TestContext_closeDrainsQueuedTasks(t *testing.T) {
	c := NewWorker("drain", nil)

	var ran atomic.Int32
	block := make(chan struct{})
	require.NoError(t, c.Schedule(func() { <-block }))
	for i := 0; i < 10; i++ {
		require.NoError(t, c.Schedule(func() { ran.Add(1) }))
	}

	close(block)
	c.Close()
	<-c.Done()

	require.Equal(t, int32(10), ran.Load())
}

func TestContext_closeIdempotent(t *testing.T) {
	c := NewWorker("twice", nil)
	c.Close()
	c.Close()
}

func TestContext_panicContainment(t *testing.T) {
	c := NewWorker("panics", nil)
	defer c.Close()

	require.NoError(t, c.Schedule(func() { panic("uups") }))

	// loop keeps running
	res := make(chan struct{}, 1)
	require.NoError(t, c.Schedule(func() { res <- struct{}{} }))
	select {
	case <-res:
	case <-time.After(time.Second):
		t.Fatal("loop died after task panic")
	}
}

func TestAmbient(t *testing.T) {
	c := NewWorker("ambient", nil)
	defer c.Close()

	_, ok := FromContext(context.Background())
	require.False(t, ok)

	ctx := With(context.Background(), c)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Same(t, c, got)
}
