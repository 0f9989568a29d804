package itf

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// stubTx satisfies pgx.Tx so services exercising composables.InTx run their
// callbacks directly against in-memory repositories. Any attempt to actually
// query through it fails loudly.
type stubTx struct{}

var errStubTx = errors.New("test transaction cannot execute SQL")

func (stubTx) Begin(ctx context.Context) (pgx.Tx, error) { return stubTx{}, nil }
func (stubTx) Commit(ctx context.Context) error          { return nil }
func (stubTx) Rollback(ctx context.Context) error        { return nil }

func (stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errStubTx
}

func (stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (stubTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }

func (stubTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errStubTx
}

func (stubTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errStubTx
}

func (stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errStubTx
}

func (stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return stubRow{} }

func (stubTx) Conn() *pgx.Conn { return nil }

type stubRow struct{}

func (stubRow) Scan(dest ...any) error { return errStubTx }
