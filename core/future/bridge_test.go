package future

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/vrtx-go/core/eventloop"
)

func TestOn_continuationRunsOnTarget(t *testing.T) {
	c := eventloop.NewWorker("bridge-test", nil)
	defer c.Close()

	f := New[int]()
	q := On[int](c, f)

	inLoop := make(chan bool, 1)
	q.Subscribe(func(v int, err error) {
		require.NoError(t, err)
		require.Equal(t, 42, v)
		inLoop <- c.InLoop()
	})

	// settle on an unrelated goroutine
	go f.Complete(42)

	select {
	case ok := <-inLoop:
		require.True(t, ok, "continuation must run on the target context")
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

func TestOn_sourceAlreadySettled(t *testing.T) {
	c := eventloop.NewWorker("bridge-test", nil)
	defer c.Close()

	// source settles synchronously, before bridging
	q := On[string](c, Completed("done"))

	inLoop := make(chan bool, 1)
	q.Subscribe(func(v string, err error) {
		require.NoError(t, err)
		inLoop <- c.InLoop()
	})

	select {
	case ok := <-inLoop:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

func TestOn_failurePreserved(t *testing.T) {
	c := eventloop.NewWorker("bridge-test", nil)
	defer c.Close()

	boom := fmt.Errorf("boom")
	q := On[int](c, Failed[int](boom))

	_, err := q.Await(testContext(t))
	require.ErrorIs(t, err, boom)
}

func TestOn_schedulingFailure(t *testing.T) {
	c := eventloop.NewWorker("bridge-test", nil)
	c.Close()

	q := On[int](c, Completed(1))

	_, err := q.Await(testContext(t))
	require.ErrorIs(t, err, ErrSchedule)
}

func TestOnAny(t *testing.T) {
	c := eventloop.NewWorker("bridge-test", nil)
	defer c.Close()

	f := New[map[string]any]()
	q := OnAny(c, f)

	inLoop := make(chan bool, 1)
	q.Subscribe(func(v any, err error) {
		require.NoError(t, err)
		m, ok := v.(map[string]any)
		require.True(t, ok)
		require.Equal(t, 1, m["k"])
		inLoop <- c.InLoop()
	})

	go f.Complete(map[string]any{"k": 1})

	select {
	case ok := <-inLoop:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}
