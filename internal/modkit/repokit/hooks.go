package repokit

import "context"

// BeginHook runs first inside every transaction, on the tx bound Queryer
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks returns a TxRunner whose transactions run hooks before fn
// calls outside Tx go straight to inner
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	return hookedTx{TxRunner: inner, hooks: hooks}
}

type hookedTx struct {
	TxRunner
	hooks []BeginHook
}

func (h hookedTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hk := range h.hooks {
			if err := hk(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}
