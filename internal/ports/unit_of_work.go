package ports

import "context"

// Tx is an opaque transaction handle for repositories/adapters.
// Infrastructure controls the concrete type (for example, *gorm.DB).
type Tx interface{}

// UnitOfWork defines a transaction boundary.
//
// Callback-style: returning an error rolls back, returning nil commits. Calling
// WithTx with a context that already carries a transaction opens a nested scope
// (a savepoint) so a failing inner step can be undone without losing the outer work.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// WithTxContext stores a transaction handle in context.
func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext reads a transaction handle from context.
func TxFromContext(ctx context.Context) Tx {
	return ctx.Value(txKey{})
}
