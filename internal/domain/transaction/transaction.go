package transaction

import "context"

// Tx represents a storage transaction.
// Keeps the domain layer independent of the sqlx implementation.
type Tx interface {
	Commit() error
	Rollback() error
}

// Manager starts transactions.
type Manager interface {
	Begin(ctx context.Context) (Tx, error)
}
