package data

import (
	"context"
	"database/sql"

	"github.com/strixlab/patrol/internal/core"
	"github.com/strixlab/patrol/internal/data/pgxutil"
)

var _ core.TxRunner = (*SQLTxRunner)(nil)

// SQLTxRunner implements the TxRunner port over a database/sql pool.
type SQLTxRunner struct {
	DB *sql.DB
}

// NewSQLTxRunner creates a SQLTxRunner over the given pool.
func NewSQLTxRunner(db *sql.DB) *SQLTxRunner {
	return &SQLTxRunner{DB: db}
}

// InTx runs fn inside one transaction, committing when fn returns nil.
func (r *SQLTxRunner) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{Fn: fn})
}
