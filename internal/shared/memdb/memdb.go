// Package memdb provides a serializing in-memory transactor. Stores built on
// it register a snapshot hook so a failed transaction restores every table.
package memdb

import (
	"context"
	"sync"

	"library-backend/pkg/database"

	"github.com/jackc/pgx/v5"
)

// Table snapshots its state and returns a function that restores it.
type Table interface {
	Snapshot() (restore func())
}

// tx marks "inside a transaction" for stores; it is never used as a real pgx.Tx.
type tx struct {
	pgx.Tx
}

// DB serializes every transaction, which stands in for row locks.
type DB struct {
	mu     sync.Mutex
	tables []Table

	commits   int
	rollbacks int
}

func New() *DB {
	return &DB{}
}

func (db *DB) Register(t Table) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.tables = append(db.tables, t)
}

var _ database.Transactor = (*DB)(nil)

func (db *DB) WithTransaction(ctx context.Context, fn database.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	restores := make([]func(), 0, len(db.tables))
	for _, t := range db.tables {
		restores = append(restores, t.Snapshot())
	}

	if err := fn(&tx{}); err != nil {
		for _, restore := range restores {
			restore()
		}
		db.rollbacks++
		return err
	}

	db.commits++
	return nil
}

// Read runs fn under the same lock used by transactions.
func (db *DB) Read(fn func()) {
	db.mu.Lock()
	defer db.mu.Unlock()
	fn()
}

func (db *DB) Stats() (commits, rollbacks int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.commits, db.rollbacks
}
