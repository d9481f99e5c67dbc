// Package storage implements the sqlite persistence layer: user settings,
// categories, transactions and the incrementally maintained roll-up tables.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
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

// GetOrCreateUserSettings returns the user's settings, creating them with
// the default currency on first access. The insert is a no-op when the row
// already exists, so repeated calls stay idempotent.
func (r *SQLiteRepository) GetOrCreateUserSettings(ctx context.Context, userID string) (core.UserSettings, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, currency) VALUES (?, ?)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, core.DefaultCurrency)
	if err != nil {
		return core.UserSettings{}, fmt.Errorf("create default settings: %w", err)
	}

	return r.getUserSettings(ctx, userID)
}

func (r *SQLiteRepository) getUserSettings(ctx context.Context, userID string) (core.UserSettings, error) {
	var s core.UserSettings
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, currency FROM user_settings WHERE user_id = ?`,
		userID).Scan(&s.UserID, &s.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return core.UserSettings{}, core.ErrNotFound
	}
	if err != nil {
		return core.UserSettings{}, fmt.Errorf("get user settings: %w", err)
	}
	return s, nil
}

// UpdateUserCurrency sets the user's display currency, creating the
// settings row if it does not exist yet.
func (r *SQLiteRepository) UpdateUserCurrency(ctx context.Context, userID, currency string) (core.UserSettings, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_settings (user_id, currency) VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET currency = excluded.currency`,
		userID, currency)
	if err != nil {
		return core.UserSettings{}, fmt.Errorf("update currency: %w", err)
	}
	return r.getUserSettings(ctx, userID)
}

// ListCategories returns the user's categories ordered by name ascending,
// optionally filtered by type (empty type means all).
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string, typ core.TransactionType) ([]core.Category, error) {
	query := `SELECT id, user_id, name, icon, type, created_at FROM categories
		  WHERE user_id = ?`
	args := []any{userID}
	if typ != "" {
		query += ` AND type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, userID string, in core.CategoryInput) (core.Category, error) {
	c := core.Category{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      in.Name,
		Icon:      in.Icon,
		Type:      in.Type,
		CreatedAt: time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, icon, type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Icon, string(c.Type), c.CreatedAt.Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return core.Category{}, core.ErrDuplicateName
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, categoryID, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// GetCategoryByName resolves a category reference for the user. Names are
// only unique per type, so the lookup is scoped to one side.
func (r *SQLiteRepository) GetCategoryByName(ctx context.Context, userID, name string, typ core.TransactionType) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, icon, type, created_at FROM categories
		 WHERE user_id = ? AND name = ? AND type = ?`, userID, name, typ)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	return c, err
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, selectTransaction+` WHERE user_id = ? AND id = ?`, userID, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, err
}

// ListTransactionsInRange returns the user's transactions with a date in
// [from, to], newest first.
func (r *SQLiteRepository) ListTransactionsInRange(ctx context.Context, userID string, from, to time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		selectTransaction+` WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date DESC`,
		userID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListAllTransactions returns every transaction of the user. This is the
// unbounded scan the on-read aggregation strategy pays for on each read.
func (r *SQLiteRepository) ListAllTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectTransaction+` WHERE user_id = ? ORDER BY date ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list all transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// BalanceStats sums in-range amounts split by type. Either side defaults
// to zero when no matching transactions exist.
func (r *SQLiteRepository) BalanceStats(ctx context.Context, userID string, from, to time.Time) (core.BalanceStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, COALESCE(SUM(amount_cents), 0) FROM transactions
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 GROUP BY type`,
		userID, formatDate(from), formatDate(to))
	if err != nil {
		return core.BalanceStats{}, fmt.Errorf("balance stats: %w", err)
	}
	defer rows.Close()

	var stats core.BalanceStats
	for rows.Next() {
		var typ string
		var sum int64
		if err := rows.Scan(&typ, &sum); err != nil {
			return core.BalanceStats{}, fmt.Errorf("scan balance stats: %w", err)
		}
		switch core.TransactionType(typ) {
		case core.Income:
			stats.IncomeCents = sum
		case core.Expense:
			stats.ExpenseCents = sum
		}
	}
	return stats, rows.Err()
}

// CategoryStats groups in-range transactions by (type, category snapshot)
// and orders groups by descending summed amount.
func (r *SQLiteRepository) CategoryStats(ctx context.Context, userID string, from, to time.Time) ([]core.CategoryStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, category_name, category_icon, SUM(amount_cents) AS total
		 FROM transactions
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 GROUP BY type, category_name, category_icon
		 ORDER BY total DESC`,
		userID, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	var stats []core.CategoryStats
	for rows.Next() {
		var s core.CategoryStats
		var typ string
		if err := rows.Scan(&typ, &s.CategoryName, &s.CategoryIcon, &s.SumCents); err != nil {
			return nil, fmt.Errorf("scan category stats: %w", err)
		}
		s.Type = core.TransactionType(typ)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

const selectTransaction = `SELECT id, user_id, amount_cents, type, category_name, category_icon, description, date, created_at FROM transactions`

func formatDate(t time.Time) string {
	return core.NormalizeDate(t).Format(dateLayout)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var c core.Category
	var typ, createdAt string
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &typ, &createdAt); err != nil {
		return core.Category{}, err
	}
	c.Type = core.TransactionType(typ)
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return c, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var typ, date, createdAt string
	if err := row.Scan(&t.ID, &t.UserID, &t.AmountCents, &typ, &t.CategoryName,
		&t.CategoryIcon, &t.Description, &date, &createdAt); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	var err error
	t.Date, err = time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
