package epolltest

import (
	"runtime"
	"time"
)

// TB is the subset of testing.TB used by this package.
type TB interface {
	Helper()
	Errorf(format string, args ...any)
}

// CheckNumGoroutines records the number of goroutines, returning a function
// that fails the test, if the number has not returned to (at most) that
// value, within the timeout. Intended to be deferred, at the start of a test.
//
//	defer epolltest.CheckNumGoroutines(time.Second)(t)
func CheckNumGoroutines(timeout time.Duration) func(t TB) {
	before := runtime.NumGoroutine()
	return func(t TB) {
		t.Helper()
		deadline := time.Now().Add(timeout)
		for {
			after := runtime.NumGoroutine()
			if after <= before {
				return
			}
			if time.Now().After(deadline) {
				t.Errorf(`epolltest: goroutines leaked: %d before, %d after`, before, after)
				return
			}
			time.Sleep(time.Millisecond * 10)
		}
	}
}
