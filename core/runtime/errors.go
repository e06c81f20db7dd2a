package runtime

import "errors"

var (
	// ErrClosed is returned by operations attempted after shutdown began.
	ErrClosed = errors.New("runtime closed")

	// ErrDeploymentNotFound is returned when an undeploy references an id
	// that is not live. A second undeploy of the same id gets this too:
	// a deployment id is consumed by the undeploy that wins.
	ErrDeploymentNotFound = errors.New("deployment not found")
)
