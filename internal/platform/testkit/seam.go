package testkit

import (
	"sync"
	"testing"
)

var seamMu sync.Mutex

// Swap replaces *target for the rest of the test; cleanup puts the old value back
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}

// Serial holds a process wide lock until the test ends
// use it in tests that Swap package level openers
func Serial(t *testing.T) {
	t.Helper()
	seamMu.Lock()
	t.Cleanup(seamMu.Unlock)
}
