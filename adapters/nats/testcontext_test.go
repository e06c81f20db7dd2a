package nats

import (
	"context"
	"testing"
)

// containerT adapts *testing.T to the Testing interface on Go versions
// before 1.24, where testing.T has no Context method.
type containerT struct{ *testing.T }

func (c containerT) Context() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c.Cleanup(cancel)
	return ctx
}
