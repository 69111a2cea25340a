// Package repokit holds the seams SQL and KV backed repos are written against
package repokit

import (
	"context"

	"bugprint/internal/platform/store"
)

// Queryer is the read and write surface a bound repo runs on
type Queryer = store.RowQuerier

// TxRunner is a Queryer that can also open a transaction
type TxRunner = store.TxRunner

// TX hands a module the postgres seam without importing a driver
func TX(_ context.Context, tx store.TxRunner) store.TxRunner { return tx }

// KV hands a module the embedded key value seam
func KV(_ context.Context, kv store.KV) store.KV { return kv }
