package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/codesuggest/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Transactor = (*Transactor)(nil)

// Transactor runs units of work in a transaction on the writer connection.
// Because the writer pool holds a single connection, transactions never
// interleave within one process.
type Transactor struct {
	db *DB
}

// NewTransactor creates a Transactor backed by the given DB.
func NewTransactor(db *DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTx begins a transaction, hands fn stores bound to it and commits when
// fn returns nil. Any error from fn rolls the transaction back.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, files driven.FileStore, suggestions driven.SuggestionStore) error) error {
	tx, err := t.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	files := &FileRepo{reader: tx, writer: tx}
	suggestions := &SuggestionRepo{reader: tx, writer: tx}

	if err := fn(ctx, files, suggestions); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
