package eventloop

import "context"

type ctxKey struct{}

// With returns a context.Context carrying c. This is the explicit form of
// "current context": callers thread it through instead of consulting a
// process-wide lookup.
func With(parent context.Context, c *Context) context.Context {
	return context.WithValue(parent, ctxKey{}, c)
}

// FromContext extracts the execution context carried by ctx, if any.
func FromContext(ctx context.Context) (*Context, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Context)
	return c, ok
}
