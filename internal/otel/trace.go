package otel

import (
	"os"
	"sync/atomic"
)

// traceEnabled is read on every coordinator tick, so it is atomic rather
// than guarded by a mutex.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(os.Getenv("NEXTTOGO_TRACE") != "")
}

// TraceEnabled reports whether NEXTTOGO_TRACE is set.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

// setTraceEnabled overrides the flag in tests.
func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
