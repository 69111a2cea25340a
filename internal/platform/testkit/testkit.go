// Package testkit holds helpers shared by package tests
package testkit

import "testing"

// MustPanic fails the test unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}
