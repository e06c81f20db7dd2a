package integration

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/vrtx-go/adapters/nats"
	"github.com/codewandler/vrtx-go/core/eventloop"
	"github.com/codewandler/vrtx-go/core/runtime"
	"github.com/codewandler/vrtx-go/core/verticle"
	"github.com/codewandler/vrtx-go/ports/bus"
)

type order struct {
	ID    string `json:"id"`
	Total int    `json:"total"`
}

// TestIntegration exercises the full stack against a real NATS server: a
// runtime wired to the NATS bus, an actor fleet consuming a topic, worker
// deployments, and a clean shutdown.
func TestIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))

	connect := nats.NewTestContainer(containerT{t})
	b, err := nats.NewBus(nats.BusConfig{
		Connect:       connect,
		SubjectPrefix: "vrtx.it",
	})
	require.NoError(t, err)

	rt, err := runtime.New(runtime.Config{
		Threads: 4,
		Bus:     b,
		Context: testContext(t),
	})
	require.NoError(t, err)

	// actor fleet: every copy sees every order published on the topic
	var processed atomic.Int64
	fleet, err := rt.Deploy(verticle.ActorOptions{
		Name:  "orders",
		Topic: "orders.created",
		OnMessage: func(msg bus.Message) {
			o, err := bus.Decode[order](msg)
			require.NoError(t, err)
			require.NotEmpty(t, o.ID)
			processed.Add(1)
		},
	}.Factory(rt.Bus()), runtime.DeployOptions{}).Await(testContext(t))
	require.NoError(t, err)

	const numOrders = 25
	for i := 0; i < numOrders; i++ {
		require.NoError(t, bus.PublishJSON(rt.Bus(), "orders.created", order{
			ID:    fmt.Sprintf("order-%d", i),
			Total: 100 + i,
		}))
	}

	require.Eventually(t, func() bool {
		return processed.Load() == numOrders
	}, 10*time.Second, 50*time.Millisecond, "all orders delivered through NATS")

	// undeploy drops the NATS subscription
	_, err = fleet.Undeploy().Await(testContext(t))
	require.NoError(t, err)

	require.NoError(t, bus.PublishJSON(rt.Bus(), "orders.created", order{ID: "late"}))
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int64(numOrders), processed.Load())

	// a blocking worker next to the actor fleet
	blocked := make(chan struct{})
	workerF := rt.Deploy(verticle.Supply(verticle.Options{
		Name: "slow",
		OnStart: func(c *eventloop.Context) (any, error) {
			require.True(t, c.IsWorker())
			<-blocked
			return nil, nil
		},
	}), runtime.DeployOptions{Worker: true})
	close(blocked)
	worker, err := workerF.Await(testContext(t))
	require.NoError(t, err)
	require.NoError(t, worker.Close())

	require.NoError(t, rt.Shutdown(testContext(t)))

	select {
	case <-rt.Done():
	default:
		t.Fatal("Done not closed after shutdown")
	}
}
