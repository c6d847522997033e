package safego

import (
	"runtime/debug"

	"github.com/hatcher/secretaria/pkg/logs"
)

// Go runs f on its own goroutine, recovering panics.
func Go(f func()) {
	go func() {
		defer Recovery()
		f()
	}()
}

// Recovery captures a panic in the calling goroutine.
func Recovery() {
	e := recover()
	if e == nil {
		return
	}
	logs.Errorf("[Recovery] caught panic: %v\nstacktrace:\n%s", e, string(debug.Stack()))
}
