package repokit

// Binder binds a domain repo to a Queryer, either the pool or an open tx
type Binder[T any] interface {
	Bind(Queryer) T
}

// RequireQueryer panics on a nil q; binding to nothing is a wiring bug
func RequireQueryer(q Queryer) Queryer {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return q
}
