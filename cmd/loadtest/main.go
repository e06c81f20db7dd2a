package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/codewandler/vrtx-go/adapters/nats"
	"github.com/codewandler/vrtx-go/core/eventloop"
	"github.com/codewandler/vrtx-go/core/runtime"
	"github.com/codewandler/vrtx-go/core/verticle"
	"github.com/codewandler/vrtx-go/ports/bus"
)

// === Config ===

// NOTE: run nats: docker run --net=host nats:latest

var (
	logLevel    = slog.LevelWarn
	N           = getEnvInt("N", 500_000)
	batchSize   = getEnvInt("B", 10_000)
	numActors   = getEnvInt("ACTORS", 64)
	threads     = getEnvInt("THREADS", 0)
	backendType = getEnv("BACKEND", "mem")
	churn       = getEnvBool("CHURN", false)
)

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "0")
	if v == "" {
		return fallback
	}
	if v == "1" || strings.ToLower(v) == "true" {
		return true
	}
	return false
}

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	fmt.Printf("Backend: %s\n", backendType)
	fmt.Printf(" Actors: %d\n", numActors)
	fmt.Printf("  Churn: %s\n", strconv.FormatBool(churn))

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	var b bus.Bus
	if backendType == "nats" {
		var err error
		b, err = nats.NewBus(nats.BusConfig{
			Connect:       nats.ConnectDefault(),
			Log:           log,
			SubjectPrefix: "vrtx.loadtest",
		})
		checkErr(err)
	}

	rt, err := runtime.New(runtime.Config{
		Threads: threads,
		Log:     log,
		Bus:     b,
		Context: ctx,
	})
	checkErr(err)
	defer rt.Shutdown(context.Background())

	if churn {
		runChurn(ctx, rt)
		return
	}
	runThroughput(ctx, rt)
}

// runThroughput deploys a fleet of actors and hammers their topics.
func runThroughput(ctx context.Context, rt *runtime.Runtime) {
	var received atomic.Int64
	done := make(chan struct{})

	deps := make([]*runtime.Deployment, numActors)
	for i := 0; i < numActors; i++ {
		d, err := rt.Deploy(verticle.ActorOptions{
			Name:  fmt.Sprintf("sink-%d", i),
			Topic: topicFor(i),
			OnMessage: func(bus.Message) {
				if received.Add(1) == int64(N) {
					close(done)
				}
			},
		}.Factory(rt.Bus()), runtime.DeployOptions{}).Await(ctx)
		checkErr(err)
		deps[i] = d
	}

	fmt.Println("==================================")
	fmt.Println("Starting ...")

	startAt := time.Now()
	lastTime := startAt
	payload := []byte(`{"seq":0}`)

	for i := 0; i < N; i++ {
		checkErr(rt.Bus().Publish(topicFor(i%numActors), payload))

		if i == 0 {
			continue
		}
		if i%1000 == 0 {
			print(".")
		}
		if i%batchSize == 0 {
			mu := getMemUsage()

			n := time.Now()
			took := n.Sub(lastTime)
			fmt.Printf(" | %6d msgs | %6d ms | %7d msgs/s | (%d / %d) MiB mem (sys) |\n", batchSize, took.Milliseconds(), int(float64(batchSize)/took.Seconds()), mu.Alloc/1024/1024, mu.Sys/1024/1024)
			lastTime = n
		}
	}

	select {
	case <-done:
	case <-ctx.Done():
		fmt.Println("\ntimed out waiting for delivery")
	}

	for _, d := range deps {
		checkErr(d.Close())
	}

	println("")
	println("==========================================")

	took := time.Since(startAt)
	goruntime.GC()

	fmt.Printf("total runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("    delivered: %d\n", received.Load())
	fmt.Printf(" avg. msgs/s: %d\n", int(float64(received.Load())/took.Seconds()))
}

// runChurn measures deploy/undeploy cycles instead of message throughput.
func runChurn(ctx context.Context, rt *runtime.Runtime) {
	fmt.Println("==================================")
	fmt.Println("Starting churn ...")

	startAt := time.Now()
	lastTime := startAt

	for i := 0; i < N; i++ {
		d, err := rt.Deploy(verticle.Supply(verticle.Options{
			OnStart: func(*eventloop.Context) (any, error) { return nil, nil },
		}), runtime.DeployOptions{}).Await(ctx)
		checkErr(err)
		checkErr(d.Close())

		if i == 0 {
			continue
		}
		if i%100 == 0 {
			print(".")
		}
		if i%batchSize == 0 {
			n := time.Now()
			took := n.Sub(lastTime)
			fmt.Printf(" | %6d cycles | %6d ms | %7d cycles/s |\n", batchSize, took.Milliseconds(), int(float64(batchSize)/took.Seconds()))
			lastTime = n
		}
	}

	took := time.Since(startAt)
	fmt.Printf("\ntotal runtime: %.3f seconds\n", took.Seconds())
	fmt.Printf("avg. cycles/s: %d\n", int(float64(N)/took.Seconds()))
}

func topicFor(i int) string {
	return fmt.Sprintf("load.%d", i)
}

// === stats helpers ===

type MemUsage struct {
	Alloc      uint64 // bytes allocated and not yet freed (heap)
	TotalAlloc uint64 // cumulative bytes allocated
	Sys        uint64 // total bytes obtained from OS
	NumGC      uint32 // gc cycles
}

func getMemUsage() MemUsage {
	var m goruntime.MemStats
	goruntime.ReadMemStats(&m)
	return MemUsage{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
	}
}

// === Helpers ===

func checkErr(err error) {
	if err != nil {
		panic(err)
	}
}
