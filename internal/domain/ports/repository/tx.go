package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes fn within a database transaction and hands the
// transaction handle to repositories through tx.
//
// Repositories MUST accept a nil tx and fall back to the connection pool. Every
// call on the pool acquires its own connection, so a nil tx never shares state
// with another request's transaction.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
