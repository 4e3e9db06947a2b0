// pkg/db/transaction_manager.go
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxController defines methods for controlling a storage transaction.
// *sqlx.Tx implicitly implements this interface; the memory backend provides
// its own implementation.
type TxController interface {
	Commit() error
	Rollback() error
}

// DBTxBeginner defines the interface for beginning SQL transactions.
// *sqlx.DB implements this.
type DBTxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// BeginTxFunc starts a unit of work against whichever backend is configured.
type BeginTxFunc func(ctx context.Context) (TxController, error)

// CommitTxFunc commits a unit of work.
type CommitTxFunc func(tx TxController) error

// RollbackTxFunc rolls back a unit of work; safe to defer after a commit.
type RollbackTxFunc func(tx TxController)

// SQLBeginTx returns a BeginTxFunc bound to a SQL connection pool.
func SQLBeginTx(dbConn DBTxBeginner) BeginTxFunc {
	return func(ctx context.Context) (TxController, error) {
		tx, err := dbConn.BeginTxx(ctx, nil)
		if err != nil {
			return nil, err
		}
		return tx, nil // *sqlx.Tx implicitly implements TxController
	}
}

// CommitTx commits the transaction.
func CommitTx(tx TxController) error {
	return tx.Commit()
}

// RollbackTx rolls back the transaction.
func RollbackTx(tx TxController) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		// Log the error, but don't return it as it's typically a deferred call
		fmt.Printf("Error rolling back transaction: %v\n", err)
	}
}
