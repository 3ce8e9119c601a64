package modkit

import (
	"wta/internal/platform/config"
	"wta/internal/platform/logger"
	"wta/internal/platform/store"
	"wta/internal/platform/store/kv"
)

// Deps are the shared collaborators handed to every module. Backends that are not
// configured are nil
type Deps struct {
	Log *logger.Logger
	Cfg config.Conf
	PG  store.TxRunner
	CH  store.Clickhouse
	KV  *kv.DB
}

// DepsFrom exposes the open backends of st. st may be nil, log defaults to the root logger
func DepsFrom(st *store.Store, cfg config.Conf, log *logger.Logger) Deps {
	if log == nil {
		log = logger.Get()
	}
	d := Deps{Log: log, Cfg: cfg}
	if st != nil {
		d.PG, d.CH, d.KV = st.PG, st.CH, st.KV
	}
	return d
}
