// Package eventloop provides sticky execution contexts: single-goroutine
// FIFO task queues that give scheduled work thread affinity.
//
// A [Context] serializes everything scheduled onto it. Two flavors exist:
//
//   - Event-loop contexts are shared. A [Group] owns a fixed number of them
//     and hands them out round-robin ([Group.Next]) or sticky by key
//     ([Group.For]). Blocking inside a task stalls every other user of that
//     loop, so tasks must stay non-blocking.
//   - Worker contexts ([Group.Worker], [NewWorker]) are dedicated to one
//     owner and may block freely.
//
// Contexts implement future.Scheduler, so pending values can be bridged
// onto them with future.On.
//
// The ambient form of "current context" is a plain context.Context value
// ([With], [FromContext]); there is no global registry.
package eventloop
