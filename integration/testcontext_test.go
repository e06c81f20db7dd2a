package integration

import (
	"context"
	"testing"
)

// testContext stands in for t.Context(), which requires Go 1.24: it returns
// a context canceled when the test ends.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// containerT adapts *testing.T to the nats.Testing interface on Go versions
// before 1.24, where testing.T has no Context method.
type containerT struct{ *testing.T }

func (c containerT) Context() context.Context {
	return testContext(c.T)
}
