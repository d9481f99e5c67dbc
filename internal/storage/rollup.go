package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

// This file maintains the incremental roll-up tables. A transaction insert
// or delete and its two roll-up adjustments are always one atomic unit: a
// partially applied write (row inserted but roll-up untouched) must never
// be observable. The increments run inside SQL so concurrent writes to the
// same (user, day) key cannot lose updates.

// CreateTransaction inserts the transaction row and upserts the daily and
// monthly roll-ups for its date key in a single database transaction.
// The category name and icon must already be snapshotted onto t.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, userID string, in core.TransactionInput, cat core.Category) (core.Transaction, error) {
	cents, err := core.ParseAmountToCents(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		AmountCents:  cents,
		Type:         in.Type,
		CategoryName: cat.Name,
		CategoryIcon: cat.Icon,
		Description:  in.Description,
		Date:         core.NormalizeDate(in.Date),
		CreatedAt:    time.Now().UTC(),
	}

	year, month, day := core.DateKey(t.Date)
	income, expense := splitByType(t.Type, t.AmountCents)

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, user_id, amount_cents, type, category_name, category_icon, description, date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.UserID, t.AmountCents, string(t.Type), t.CategoryName, t.CategoryIcon,
			t.Description, formatDate(t.Date), t.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO daily_history (user_id, year, month, day, income_cents, expense_cents)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (user_id, year, month, day) DO UPDATE SET
			     income_cents = income_cents + excluded.income_cents,
			     expense_cents = expense_cents + excluded.expense_cents`,
			t.UserID, year, month, day, income, expense)
		if err != nil {
			return fmt.Errorf("upsert daily roll-up: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO monthly_history (user_id, year, month, income_cents, expense_cents)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (user_id, year, month) DO UPDATE SET
			     income_cents = income_cents + excluded.income_cents,
			     expense_cents = expense_cents + excluded.expense_cents`,
			t.UserID, year, month, income, expense)
		if err != nil {
			return fmt.Errorf("upsert monthly roll-up: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// DeleteTransaction removes the transaction row and decrements both
// roll-ups for its original date key in a single database transaction.
// Decrements are clamped at zero: a roll-up driven below zero would mean
// prior inconsistency, which the reconciliation worker repairs from raw
// rows rather than letting the sum go negative here.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	t, err := r.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	year, month, day := core.DateKey(t.Date)
	income, expense := splitByType(t.Type, t.AmountCents)

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM transactions WHERE id = ? AND user_id = ?`, t.ID, t.UserID)
		if err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("delete transaction rows affected: %w", err)
		} else if n == 0 {
			return core.ErrNotFound
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE daily_history SET
			     income_cents = MAX(0, income_cents - ?),
			     expense_cents = MAX(0, expense_cents - ?)
			 WHERE user_id = ? AND year = ? AND month = ? AND day = ?`,
			income, expense, t.UserID, year, month, day)
		if err != nil {
			return fmt.Errorf("decrement daily roll-up: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE monthly_history SET
			     income_cents = MAX(0, income_cents - ?),
			     expense_cents = MAX(0, expense_cents - ?)
			 WHERE user_id = ? AND year = ? AND month = ?`,
			income, expense, t.UserID, year, month)
		if err != nil {
			return fmt.Errorf("decrement monthly roll-up: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// ReadYearRollups returns the per-month roll-up rows of a year, month
// ascending. Missing months are left for the caller to zero-fill.
func (r *SQLiteRepository) ReadYearRollups(ctx context.Context, userID string, year int) ([]core.HistoryPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT year, month, income_cents, expense_cents FROM monthly_history
		 WHERE user_id = ? AND year = ? ORDER BY month ASC`,
		userID, year)
	if err != nil {
		return nil, fmt.Errorf("read year roll-ups: %w", err)
	}
	defer rows.Close()

	var points []core.HistoryPoint
	for rows.Next() {
		var p core.HistoryPoint
		if err := rows.Scan(&p.Year, &p.Month, &p.IncomeCents, &p.ExpenseCents); err != nil {
			return nil, fmt.Errorf("scan year roll-up: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// ReadMonthRollups returns the per-day roll-up rows of a (zero-based)
// month, day ascending.
func (r *SQLiteRepository) ReadMonthRollups(ctx context.Context, userID string, year, month int) ([]core.HistoryPoint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT year, month, day, income_cents, expense_cents FROM daily_history
		 WHERE user_id = ? AND year = ? AND month = ? ORDER BY day ASC`,
		userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("read month roll-ups: %w", err)
	}
	defer rows.Close()

	var points []core.HistoryPoint
	for rows.Next() {
		var p core.HistoryPoint
		if err := rows.Scan(&p.Year, &p.Month, &p.Day, &p.IncomeCents, &p.ExpenseCents); err != nil {
			return nil, fmt.Errorf("scan month roll-up: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// ListRollupYears returns the distinct years present in the monthly
// roll-ups, ascending.
func (r *SQLiteRepository) ListRollupYears(ctx context.Context, userID string) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT year FROM monthly_history WHERE user_id = ? ORDER BY year ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list roll-up years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan roll-up year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// ListRollupUsers returns distinct user ids with daily roll-up rows in the
// given (year, zero-based month), capped at limit.
func (r *SQLiteRepository) ListRollupUsers(ctx context.Context, year, month, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM daily_history
		 WHERE year = ? AND month = ? ORDER BY user_id LIMIT ?`,
		year, month, limit)
	if err != nil {
		return nil, fmt.Errorf("list roll-up users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan roll-up user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetDailyRollup reads one daily roll-up row. Returns core.ErrNotFound
// when the key has no row.
func (r *SQLiteRepository) GetDailyRollup(ctx context.Context, userID string, year, month, day int) (core.HistoryPoint, error) {
	var p core.HistoryPoint
	err := r.db.QueryRowContext(ctx,
		`SELECT year, month, day, income_cents, expense_cents FROM daily_history
		 WHERE user_id = ? AND year = ? AND month = ? AND day = ?`,
		userID, year, month, day).Scan(&p.Year, &p.Month, &p.Day, &p.IncomeCents, &p.ExpenseCents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.HistoryPoint{}, core.ErrNotFound
	}
	if err != nil {
		return core.HistoryPoint{}, fmt.Errorf("get daily roll-up: %w", err)
	}
	return p, nil
}

// GetMonthlyRollup reads one monthly roll-up row.
func (r *SQLiteRepository) GetMonthlyRollup(ctx context.Context, userID string, year, month int) (core.HistoryPoint, error) {
	var p core.HistoryPoint
	err := r.db.QueryRowContext(ctx,
		`SELECT year, month, income_cents, expense_cents FROM monthly_history
		 WHERE user_id = ? AND year = ? AND month = ?`,
		userID, year, month).Scan(&p.Year, &p.Month, &p.IncomeCents, &p.ExpenseCents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.HistoryPoint{}, core.ErrNotFound
	}
	if err != nil {
		return core.HistoryPoint{}, fmt.Errorf("get monthly roll-up: %w", err)
	}
	return p, nil
}

// WriteDailyRollup overwrites a daily roll-up row with recomputed sums.
// Used by the reconciliation worker to repair drift.
func (r *SQLiteRepository) WriteDailyRollup(ctx context.Context, userID string, year, month, day int, incomeCents, expenseCents int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO daily_history (user_id, year, month, day, income_cents, expense_cents)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, year, month, day) DO UPDATE SET
		     income_cents = excluded.income_cents,
		     expense_cents = excluded.expense_cents`,
		userID, year, month, day, incomeCents, expenseCents)
	if err != nil {
		return fmt.Errorf("write daily roll-up: %w", err)
	}
	return nil
}

// WriteMonthlyRollup overwrites a monthly roll-up row with recomputed sums.
func (r *SQLiteRepository) WriteMonthlyRollup(ctx context.Context, userID string, year, month int, incomeCents, expenseCents int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO monthly_history (user_id, year, month, income_cents, expense_cents)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, year, month) DO UPDATE SET
		     income_cents = excluded.income_cents,
		     expense_cents = excluded.expense_cents`,
		userID, year, month, incomeCents, expenseCents)
	if err != nil {
		return fmt.Errorf("write monthly roll-up: %w", err)
	}
	return nil
}

// SumDay recomputes a day's income/expense sums from raw transaction rows.
func (r *SQLiteRepository) SumDay(ctx context.Context, userID string, year, month, day int) (incomeCents, expenseCents int64, err error) {
	date := time.Date(year, time.Month(month+1), day, 0, 0, 0, 0, time.UTC)
	return r.sumRange(ctx, userID, date, date)
}

// SumMonth recomputes a (zero-based) month's sums from raw transaction rows.
func (r *SQLiteRepository) SumMonth(ctx context.Context, userID string, year, month int) (incomeCents, expenseCents int64, err error) {
	from := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	return r.sumRange(ctx, userID, from, to)
}

func (r *SQLiteRepository) sumRange(ctx context.Context, userID string, from, to time.Time) (int64, int64, error) {
	stats, err := r.BalanceStats(ctx, userID, from, to)
	if err != nil {
		return 0, 0, err
	}
	return stats.IncomeCents, stats.ExpenseCents, nil
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func splitByType(typ core.TransactionType, cents int64) (incomeCents, expenseCents int64) {
	if typ == core.Income {
		return cents, 0
	}
	return 0, cents
}
