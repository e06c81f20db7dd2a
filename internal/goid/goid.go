// Package goid resolves the id of the calling goroutine from the runtime
// stack header. It backs affinity checks ("am I on this loop?") and is not
// meant for hot paths.
package goid

import (
	"bytes"
	"runtime"
	"strconv"
)

var prefix = []byte("goroutine ")

// ID returns the numeric id of the calling goroutine.
func ID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]

	// header: "goroutine 123 [running]:"
	b = bytes.TrimPrefix(b, prefix)
	i := bytes.IndexByte(b, ' ')
	if i < 0 {
		return 0
	}
	n, err := strconv.ParseUint(string(b[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
