// Package storage persists the ledger to SQLite so imports survive restarts.
// The whole batch is replaced on every import, matching the ledger store's
// replace-not-patch lifecycle.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pesatrack/internal/core"

	_ "modernc.org/sqlite"
)

// timeLayout is how occurred_at is stored; lexical order equals time order.
const timeLayout = "2006-01-02 15:04:05"

type SQLiteRepository struct {
	db *sql.DB
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

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceBatch swaps the persisted ledger for records in one transaction.
// Either the new batch lands completely or the old one stays intact.
func (r *SQLiteRepository) ReplaceBatch(ctx context.Context, records []core.TransactionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (code, occurred_at, category, amount, balance, fuliza_used)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.Code,
			rec.Timestamp.UTC().Format(timeLayout),
			rec.Category,
			rec.Amount,
			rec.Balance,
			rec.FulizaUsed,
		)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", rec.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// LoadBatch reads the persisted ledger in insertion-time order.
func (r *SQLiteRepository) LoadBatch(ctx context.Context) ([]core.TransactionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT code, occurred_at, category, amount, balance, fuliza_used
		FROM transactions
		ORDER BY occurred_at, code`)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var records []core.TransactionRecord
	for rows.Next() {
		var rec core.TransactionRecord
		var occurredAt string
		if err := rows.Scan(&rec.Code, &occurredAt, &rec.Category, &rec.Amount, &rec.Balance, &rec.FulizaUsed); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		rec.Timestamp, err = time.Parse(timeLayout, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_at for %s: %w", rec.Code, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return records, nil
}

// LoadPage reads one page of the persisted ledger in insertion-time order.
// The sync worker uses it to assemble large ledgers without holding the whole
// result set in a single query.
func (r *SQLiteRepository) LoadPage(ctx context.Context, limit, offset int) ([]core.TransactionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT code, occurred_at, category, amount, balance, fuliza_used
		FROM transactions
		ORDER BY occurred_at, code
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select transaction page: %w", err)
	}
	defer rows.Close()

	records := make([]core.TransactionRecord, 0, limit)
	for rows.Next() {
		var rec core.TransactionRecord
		var occurredAt string
		if err := rows.Scan(&rec.Code, &occurredAt, &rec.Category, &rec.Amount, &rec.Balance, &rec.FulizaUsed); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		rec.Timestamp, err = time.Parse(timeLayout, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse occurred_at for %s: %w", rec.Code, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction page: %w", err)
	}
	return records, nil
}

// Count returns the number of persisted transactions.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
