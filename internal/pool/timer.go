// Package pool recycles timers across the drivers' retry delays so that
// busy-link deferral loops do not allocate a timer per attempt.
package pool

import (
	"sync"
	"time"
)

var timers sync.Pool

// AcquireTimer returns a timer armed for d. Release it with ReleaseTimer
// once it has fired or been abandoned.
func AcquireTimer(d time.Duration) *time.Timer {
	v := timers.Get()
	if v == nil {
		return time.NewTimer(d)
	}

	t := v.(*time.Timer)
	if t.Reset(d) {
		// The timer was still active; drain a pending fire.
		select {
		case <-t.C:
		default:
		}
	}
	return t
}

// ReleaseTimer stops t and returns it to the pool. The caller must not
// touch t afterwards.
func ReleaseTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	timers.Put(t)
}
