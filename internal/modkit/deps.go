package modkit

import (
	"github.com/prometheus/client_golang/prometheus"

	"bugprint/internal/modkit/repokit"
	"bugprint/internal/platform/config"
	"bugprint/internal/platform/logger"
	"bugprint/internal/platform/store"
)

// Deps holds the shared dependencies handed to every module
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	// PG and KV are nil when the backend is disabled
	PG repokit.TxRunner
	KV store.KV
	// Reg receives module collectors, nil means metrics are not exported
	Reg prometheus.Registerer
}

// FromStore fills the storage seams from an opened store; st may be nil
func FromStore(cfg config.Conf, st *store.Store) Deps {
	d := Deps{Cfg: cfg}
	if st != nil {
		d.Log = st.Log
		d.PG = st.PG
		d.KV = st.KV
	}
	return d
}
