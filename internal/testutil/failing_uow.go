package testutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/labdesk/internal/db"
)

// FailingWriteUoW runs each callback in a real transaction but fails every
// write to Table with Err, so tests can check that a session write and its
// auth event roll back together. Reads and writes to other tables pass
// through.
type FailingWriteUoW struct {
	DB    *sql.DB
	Table string
	Err   error
}

func (u *FailingWriteUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(ctx, &failingWrites{DBTX: tx, table: strings.ToLower(u.Table), err: u.Err}); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit()
}

type failingWrites struct {
	db.DBTX
	table string
	err   error
}

func (f *failingWrites) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q := strings.ToLower(query)
	for _, verb := range []string{"insert into ", "update ", "delete from "} {
		if strings.Contains(q, verb+f.table) {
			return nil, f.err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
