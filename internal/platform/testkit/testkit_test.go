package testkit

import "testing"

func TestMustPanic(t *testing.T) {
	t.Parallel()
	MustPanic(t, func() { panic("root path is required") })
}
