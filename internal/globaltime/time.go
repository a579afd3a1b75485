// Package globaltime is the process clock. Tests swap it to make durations
// and timestamps deterministic.
package globaltime

import (
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	nowFunc = time.Now
)

func Now() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return nowFunc()
}

func UTC() time.Time {
	return Now().UTC()
}

// Since is time.Since against the swappable clock.
func Since(t time.Time) time.Duration {
	return Now().Sub(t)
}

// SetMockTime freezes the clock at t.
func SetMockTime(t time.Time) {
	SetNowFunc(func() time.Time { return t })
}

// SetNowFunc installs fn as the clock. It must be safe for concurrent use if
// the code under test reads the clock from several goroutines.
func SetNowFunc(fn func() time.Time) {
	if fn == nil {
		fn = time.Now
	}
	mu.Lock()
	defer mu.Unlock()
	nowFunc = fn
}

func ResetTime() {
	SetNowFunc(time.Now)
}
