package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type TransactionRow struct {
	Position    int64
	ID          int64
	Title       string
	Description string
	Price       float64
	Category    string
	Image       string
	Sold        bool
	DateOfSale  string
}

type Snapshot struct {
	ID      int64
	Source  string
	TakenAt string
	Records int64
}

const listTransactions = `-- name: ListTransactions :many
SELECT position, id, title, description, price, category, image, sold, date_of_sale
FROM transactions
ORDER BY position`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(
			&i.Position,
			&i.ID,
			&i.Title,
			&i.Description,
			&i.Price,
			&i.Category,
			&i.Image,
			&i.Sold,
			&i.DateOfSale,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTransactions = `-- name: DeleteTransactions :exec
DELETE FROM transactions`

func (q *Queries) DeleteTransactions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteTransactions)
	return err
}

const insertTransaction = `-- name: InsertTransaction :exec
INSERT INTO transactions (position, id, title, description, price, category, image, sold, date_of_sale)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertTransaction(ctx context.Context, arg TransactionRow) error {
	_, err := q.db.ExecContext(ctx, insertTransaction,
		arg.Position,
		arg.ID,
		arg.Title,
		arg.Description,
		arg.Price,
		arg.Category,
		arg.Image,
		arg.Sold,
		arg.DateOfSale,
	)
	return err
}

const createSnapshot = `-- name: CreateSnapshot :one
INSERT INTO snapshots (source, taken_at, records)
VALUES (?, ?, ?)
RETURNING id, source, taken_at, records`

func (q *Queries) CreateSnapshot(ctx context.Context, source, takenAt string, records int64) (Snapshot, error) {
	row := q.db.QueryRowContext(ctx, createSnapshot, source, takenAt, records)
	var i Snapshot
	err := row.Scan(&i.ID, &i.Source, &i.TakenAt, &i.Records)
	return i, err
}

const latestSnapshot = `-- name: LatestSnapshot :one
SELECT id, source, taken_at, records
FROM snapshots
ORDER BY id DESC
LIMIT 1`

func (q *Queries) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	row := q.db.QueryRowContext(ctx, latestSnapshot)
	var i Snapshot
	err := row.Scan(&i.ID, &i.Source, &i.TakenAt, &i.Records)
	return i, err
}
