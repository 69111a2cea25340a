package repokit

import (
	"context"
	"fmt"
	"time"
)

// guardTimeout bounds MustGuard when ctx carries no deadline
const guardTimeout = 5 * time.Second

// MustGuard pings every seam st knows about and panics on the first failure
// meant for process startup, before any traffic is accepted
func MustGuard(ctx context.Context, st interface{ Guard(context.Context) error }) {
	if st == nil {
		panic("repokit: nil store")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, guardTimeout)
		defer cancel()
	}
	if err := st.Guard(ctx); err != nil {
		panic(fmt.Errorf("store guard failed: %w", err))
	}
}
