// Package repokit binds repositories to a query handle, a pool or an open transaction alike
package repokit

import "wta/internal/platform/store"

// Queryer is what repositories run statements against
type Queryer = store.RowQuerier

// TxRunner is a Queryer that can also open transactions
type TxRunner = store.TxRunner

// Binder builds a T over a Queryer
type Binder[T any] interface {
	Bind(q Queryer) T
}

// RequireQueryer panics on a nil handle so a missing backend fails at wiring time
func RequireQueryer(q Queryer) Queryer {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return q
}

// MustBind binds b to q, panicking when q is nil
func MustBind[T any](b Binder[T], q Queryer) T {
	return b.Bind(RequireQueryer(q))
}
