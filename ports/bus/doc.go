// Package bus defines the pub/sub port consumed by the runtime's actor
// layer, plus an in-process implementation for tests and single-process
// deployments. The runtime needs exactly one operation from a backend:
// subscribe a handler to a topic. Publish exists so producers and the
// in-memory implementation share one interface; wire formats and broker
// features beyond that are adapter concerns (see adapters/nats).
package bus
