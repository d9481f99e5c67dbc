// Package worker audits the incremental roll-up tables against the raw
// transaction rows and repairs any drift. The write path keeps both in one
// database transaction, so drift normally never appears; the worker is the
// safety net for operator edits and the clamped-at-zero decrement path.
package worker

import (
	"context"
	"errors"
	"fmt"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

type ReconcileWorker struct {
	storage *storage.SQLiteRepository
	logger  *log.Logger
}

func NewReconcileWorker(storage *storage.SQLiteRepository, logger *log.Logger) *ReconcileWorker {
	return &ReconcileWorker{
		storage: storage,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleTransactionEvent recomputes the daily and monthly sums for the
// event's date key from raw rows and overwrites any roll-up that disagrees.
func (w *ReconcileWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	w.logger.InfoContext(ctx, "processing transaction event",
		log.FieldTxID, msg.TransactionID,
		log.FieldUserID, msg.UserID,
		"action", msg.Action)

	if err := w.ReconcileDay(ctx, msg.UserID, msg.Year, msg.Month, msg.Day); err != nil {
		return fmt.Errorf("reconcile day: %w", err)
	}
	if err := w.ReconcileMonth(ctx, msg.UserID, msg.Year, msg.Month); err != nil {
		return fmt.Errorf("reconcile month: %w", err)
	}
	return nil
}

// SweepMonth audits every day of a (zero-based) month for all users with
// roll-up activity in it, up to batchSize users per call. The day loop runs
// over the full calendar so a missing roll-up row with backing transactions
// is created, not just stale rows repaired.
func (w *ReconcileWorker) SweepMonth(ctx context.Context, year, month, batchSize int) error {
	users, err := w.storage.ListRollupUsers(ctx, year, month, batchSize)
	if err != nil {
		return fmt.Errorf("list roll-up users: %w", err)
	}

	for _, userID := range users {
		for day := 1; day <= core.DaysInMonth(year, month); day++ {
			if err := w.ReconcileDay(ctx, userID, year, month, day); err != nil {
				return fmt.Errorf("user %s day %d: %w", userID, day, err)
			}
		}
		if err := w.ReconcileMonth(ctx, userID, year, month); err != nil {
			return fmt.Errorf("user %s month: %w", userID, err)
		}
	}
	return nil
}

// ReconcileDay repairs one daily roll-up row. Month is zero-based.
func (w *ReconcileWorker) ReconcileDay(ctx context.Context, userID string, year, month, day int) error {
	income, expense, err := w.storage.SumDay(ctx, userID, year, month, day)
	if err != nil {
		return fmt.Errorf("sum day: %w", err)
	}

	current, err := w.storage.GetDailyRollup(ctx, userID, year, month, day)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("get daily roll-up: %w", err)
	}
	if current.IncomeCents == income && current.ExpenseCents == expense {
		return nil
	}

	w.logger.WarnContext(ctx, "daily roll-up drift detected",
		log.FieldUserID, userID,
		log.FieldYear, year,
		log.FieldMonth, month,
		log.FieldDay, day,
		"stored_income_cents", current.IncomeCents,
		"stored_expense_cents", current.ExpenseCents,
		"actual_income_cents", income,
		"actual_expense_cents", expense)

	if err := w.storage.WriteDailyRollup(ctx, userID, year, month, day, income, expense); err != nil {
		return fmt.Errorf("repair daily roll-up: %w", err)
	}
	return nil
}

// ReconcileMonth repairs one monthly roll-up row. Month is zero-based.
func (w *ReconcileWorker) ReconcileMonth(ctx context.Context, userID string, year, month int) error {
	income, expense, err := w.storage.SumMonth(ctx, userID, year, month)
	if err != nil {
		return fmt.Errorf("sum month: %w", err)
	}

	current, err := w.storage.GetMonthlyRollup(ctx, userID, year, month)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("get monthly roll-up: %w", err)
	}
	if current.IncomeCents == income && current.ExpenseCents == expense {
		return nil
	}

	w.logger.WarnContext(ctx, "monthly roll-up drift detected",
		log.FieldUserID, userID,
		log.FieldYear, year,
		log.FieldMonth, month,
		"stored_income_cents", current.IncomeCents,
		"stored_expense_cents", current.ExpenseCents,
		"actual_income_cents", income,
		"actual_expense_cents", expense)

	if err := w.storage.WriteMonthlyRollup(ctx, userID, year, month, income, expense); err != nil {
		return fmt.Errorf("repair monthly roll-up: %w", err)
	}
	return nil
}
