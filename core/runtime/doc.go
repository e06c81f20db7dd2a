// Package runtime is the deployment manager: it owns the event-loop group,
// the pub/sub bus and the table of live deployments, and turns verticle
// factories into running instances.
//
// # Deploying
//
//	rt, err := runtime.New(runtime.Config{Threads: 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	dep, err := rt.Deploy(verticle.Supply(opts), runtime.DeployOptions{}).Await(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dep.Close() // blocks until the stop hook ran
//
// Deploy settles only once every requested copy is Running; a partial
// failure rolls the other copies back. Undeploy settles once every copy
// reached a terminal phase. Both are safe to call from any goroutine; the
// deployment table is the only cross-instance shared state and is guarded
// internally.
//
// # Graceful shutdown
//
// Shutdown undeploys everything, closes the bus and stops the event loops:
//
//	if err := rt.Shutdown(ctx); err != nil {
//	    log.Error("shutdown", "error", err)
//	}
//	<-rt.Done()
package runtime
