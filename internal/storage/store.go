package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"budgetbot/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// dateFormat is the persisted timestamp layout. UTC RFC3339 strings compare
// lexically in the same order as the instants they encode, which the period
// filters rely on.
const dateFormat = time.RFC3339

// SQLiteStore persists categories and transactions.
//
// mu guards the db handle: queries hold the read lock for their whole
// duration so Restore cannot close the handle out from under them.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite does not benefit from concurrent connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Ping verifies the database file is still reachable, for readiness probes.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DBPath returns the path of the underlying database file, used by the
// backup flow to ship the file over the chat transport.
func (s *SQLiteStore) DBPath() string {
	return s.dbPath
}

// CreateCategory inserts a category under the normalized (upper-cased) name.
// A name collision returns core.ErrDuplicateCategory.
func (s *SQLiteStore) CreateCategory(ctx context.Context, name string, t core.TransactionType) (*core.Category, error) {
	cat := core.Category{
		Name: core.NormalizeCategoryName(name),
		Type: t,
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, type) VALUES (?, ?)`,
		cat.Name, int(cat.Type))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("category %q: %w", cat.Name, core.ErrDuplicateCategory)
		}
		return nil, fmt.Errorf("insert category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("category id: %w", err)
	}
	cat.ID = id

	slog.InfoContext(ctx, "category created", "id", cat.ID, "name", cat.Name, "type", cat.Type.String())
	return &cat, nil
}

// GetCategoryByName looks a category up by its normalized name.
// Returns (nil, nil) when no category matches.
func (s *SQLiteStore) GetCategoryByName(ctx context.Context, name string) (*core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, color, icon FROM categories WHERE name = ?`,
		core.NormalizeCategoryName(name))
	return scanCategory(row)
}

// GetCategoryByID returns (nil, nil) when no category matches.
func (s *SQLiteStore) GetCategoryByID(ctx context.Context, id int64) (*core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, color, icon FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

func scanCategory(row *sql.Row) (*core.Category, error) {
	var cat core.Category
	var typ int
	err := row.Scan(&cat.ID, &cat.Name, &typ, &cat.Color, &cat.Icon)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan category: %w", err)
	}
	cat.Type = core.TransactionType(typ)
	return &cat, nil
}

// ListCategories returns every category ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.queryCategories(ctx,
		`SELECT id, name, type, color, icon FROM categories ORDER BY name`)
}

// ListCategoriesByType returns the categories of one type ordered by name.
func (s *SQLiteStore) ListCategoriesByType(ctx context.Context, t core.TransactionType) ([]core.Category, error) {
	return s.queryCategories(ctx,
		`SELECT id, name, type, color, icon FROM categories WHERE type = ? ORDER BY name`,
		int(t))
}

func (s *SQLiteStore) queryCategories(ctx context.Context, query string, args ...any) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var cat core.Category
		var typ int
		if err := rows.Scan(&cat.ID, &cat.Name, &typ, &cat.Color, &cat.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cat.Type = core.TransactionType(typ)
		cats = append(cats, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

// AddTransaction persists tx and returns its id. The type column is the
// denormalized copy of the owning category's type fixed at insert time.
func (s *SQLiteStore) AddTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (amount, date, category_id, description, type)
		 VALUES (?, ?, ?, ?, ?)`,
		tx.Amount.String(),
		tx.Date.UTC().Format(dateFormat),
		tx.CategoryID,
		tx.Description,
		int(tx.Type))
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "transaction saved",
		"id", id,
		"amount", tx.Amount.String(),
		"category_id", tx.CategoryID,
		"type", tx.Type.String())
	return id, nil
}

// GetTransactions returns the transactions dated within [start, end]
// inclusive, ordered by date ascending.
func (s *SQLiteStore) GetTransactions(ctx context.Context, start, end time.Time) ([]core.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT id, amount, date, category_id, description, type
		 FROM transactions WHERE date >= ? AND date <= ? ORDER BY date`,
		start.UTC().Format(dateFormat), end.UTC().Format(dateFormat))
}

// GetTransactionsByCategory returns one category's transactions within
// [start, end] inclusive, ordered by date ascending.
func (s *SQLiteStore) GetTransactionsByCategory(ctx context.Context, categoryID int64, start, end time.Time) ([]core.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT id, amount, date, category_id, description, type
		 FROM transactions WHERE category_id = ? AND date >= ? AND date <= ? ORDER BY date`,
		categoryID, start.UTC().Format(dateFormat), end.UTC().Format(dateFormat))
}

func (s *SQLiteStore) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		var amount, date string
		var typ int
		if err := rows.Scan(&tx.ID, &amount, &date, &tx.CategoryID, &tx.Description, &typ); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
		}
		tx.Date, err = time.Parse(dateFormat, date)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		tx.Type = core.TransactionType(typ)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// TransactionMonths returns the distinct (year, month) pairs that have at
// least one transaction, in ascending order.
func (s *SQLiteStore) TransactionMonths(ctx context.Context) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT substr(date, 1, 7) FROM transactions ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("query transaction months: %w", err)
	}
	defer rows.Close()

	var months []time.Time
	for rows.Next() {
		var ym string
		if err := rows.Scan(&ym); err != nil {
			return nil, fmt.Errorf("scan month: %w", err)
		}
		m, err := time.Parse("2006-01", ym)
		if err != nil {
			return nil, fmt.Errorf("parse stored month %q: %w", ym, err)
		}
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate months: %w", err)
	}
	return months, nil
}
