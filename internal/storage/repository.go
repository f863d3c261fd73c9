package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"txdash/internal/core"
	"txdash/internal/dataset"

	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned by LatestSnapshot before the first ReplaceAll.
var ErrNoSnapshot = errors.New("no snapshot recorded")

var _ dataset.Source = (*SQLiteRepository)(nil)

// SQLiteRepository stores a snapshot of the dataset and serves it back as a
// dataset.Source, in the order it was written.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := MigrateSnapshotSchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// FetchAll implements dataset.Source.
func (r *SQLiteRepository) FetchAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		date, err := time.Parse(time.RFC3339Nano, row.DateOfSale)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: parse date_of_sale: %w", row.ID, err)
		}
		out = append(out, core.Transaction{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			Price:       row.Price,
			Category:    row.Category,
			Image:       row.Image,
			Sold:        row.Sold,
			DateOfSale:  date,
		})
	}
	return out, nil
}

// ReplaceAll swaps the stored dataset for txns atomically and records a
// snapshot entry naming source.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, source string, txns []core.Transaction) (Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteTransactions(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("clear transactions: %w", err)
	}
	for i, t := range txns {
		if err := t.Validate(); err != nil {
			return Snapshot{}, fmt.Errorf("transaction %d: %w", t.ID, err)
		}
		err := q.InsertTransaction(ctx, TransactionRow{
			Position:    int64(i),
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Price:       t.Price,
			Category:    t.Category,
			Image:       t.Image,
			Sold:        t.Sold,
			// Keep the original offset: the sale month is read in it.
			DateOfSale: t.DateOfSale.Format(time.RFC3339Nano),
		})
		if err != nil {
			return Snapshot{}, fmt.Errorf("insert transaction %d: %w", t.ID, err)
		}
	}

	snap, err := q.CreateSnapshot(ctx, source, time.Now().UTC().Format(time.RFC3339), int64(len(txns)))
	if err != nil {
		return Snapshot{}, fmt.Errorf("record snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Dataset snapshot stored",
		"snapshot_id", snap.ID,
		"source", source,
		"records", snap.Records)
	return snap, nil
}

// LatestSnapshot returns the most recent snapshot entry.
func (r *SQLiteRepository) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	snap, err := r.queries.LatestSnapshot(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot: %w", err)
	}
	return snap, nil
}
