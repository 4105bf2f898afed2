package repo

import "context"

// Tx is the transactional surface datastore-backed repositories share.
// Repository calls made with the ctx passed to fn join the transaction.
type Tx interface {
	ExecTx(ctx context.Context, fn func(ctx context.Context) error) error
}
