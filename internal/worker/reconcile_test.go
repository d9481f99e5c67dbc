package worker

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

func newTestWorker(t *testing.T) (*ReconcileWorker, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewReconcileWorker(repo, log.New(slog.LevelError, log.ComponentWorker)), repo
}

func seedTx(t *testing.T, repo *storage.SQLiteRepository, userID, amount string, typ core.TransactionType, date time.Time) core.Transaction {
	t.Helper()
	cat, err := repo.GetCategoryByName(context.Background(), userID, "Misc", typ)
	if err == core.ErrNotFound {
		cat, err = repo.CreateCategory(context.Background(), userID, core.CategoryInput{Name: "Misc", Icon: "📦", Type: typ})
	}
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	tx, err := repo.CreateTransaction(context.Background(), userID, core.TransactionInput{
		Amount: amount, Date: date, Type: typ, Category: cat.Name,
	}, cat)
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return tx
}

func TestReconcile_ConsistentRollupsUntouched(t *testing.T) {
	w, repo := newTestWorker(t)
	ctx := context.Background()

	date := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	tx := seedTx(t, repo, "u1", "50.00", core.Expense, date)

	msg := amqp.NewTransactionEvent(amqp.ActionCreated, tx)
	if err := w.HandleTransactionEvent(ctx, msg); err != nil {
		t.Fatalf("HandleTransactionEvent: %v", err)
	}

	daily, err := repo.GetDailyRollup(ctx, "u1", 2024, 3, 10)
	if err != nil {
		t.Fatal(err)
	}
	if daily.ExpenseCents != 5000 {
		t.Errorf("daily expense = %d after no-op reconcile", daily.ExpenseCents)
	}
}

func TestReconcile_RepairsInjectedDrift(t *testing.T) {
	w, repo := newTestWorker(t)
	ctx := context.Background()

	date := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	tx := seedTx(t, repo, "u1", "50.00", core.Expense, date)

	// Corrupt both roll-ups.
	if err := repo.WriteDailyRollup(ctx, "u1", 2024, 3, 10, 999, 1); err != nil {
		t.Fatal(err)
	}
	if err := repo.WriteMonthlyRollup(ctx, "u1", 2024, 3, 999, 1); err != nil {
		t.Fatal(err)
	}

	msg := amqp.NewTransactionEvent(amqp.ActionCreated, tx)
	if err := w.HandleTransactionEvent(ctx, msg); err != nil {
		t.Fatalf("HandleTransactionEvent: %v", err)
	}

	daily, err := repo.GetDailyRollup(ctx, "u1", 2024, 3, 10)
	if err != nil {
		t.Fatal(err)
	}
	if daily.IncomeCents != 0 || daily.ExpenseCents != 5000 {
		t.Errorf("daily after repair = %+v, want 0/5000", daily)
	}
	monthly, err := repo.GetMonthlyRollup(ctx, "u1", 2024, 3)
	if err != nil {
		t.Fatal(err)
	}
	if monthly.IncomeCents != 0 || monthly.ExpenseCents != 5000 {
		t.Errorf("monthly after repair = %+v, want 0/5000", monthly)
	}
}

func TestReconcile_CreatesMissingRollupRow(t *testing.T) {
	w, repo := newTestWorker(t)
	ctx := context.Background()

	// No transactions and no roll-up rows: reconcile must not invent rows
	// with non-zero sums, and must not fail on the absent key.
	if err := w.ReconcileDay(ctx, "u1", 2024, 3, 10); err != nil {
		t.Fatalf("ReconcileDay on empty store: %v", err)
	}

	// Inject a stale roll-up with no backing rows; reconcile zeroes it.
	if err := repo.WriteDailyRollup(ctx, "u1", 2024, 3, 10, 1234, 0); err != nil {
		t.Fatal(err)
	}
	if err := w.ReconcileDay(ctx, "u1", 2024, 3, 10); err != nil {
		t.Fatal(err)
	}
	daily, err := repo.GetDailyRollup(ctx, "u1", 2024, 3, 10)
	if err != nil {
		t.Fatal(err)
	}
	if daily.IncomeCents != 0 || daily.ExpenseCents != 0 {
		t.Errorf("stale roll-up not zeroed: %+v", daily)
	}
}

func TestSweepMonth_RepairsAllUsersInBatch(t *testing.T) {
	w, repo := newTestWorker(t)
	ctx := context.Background()

	date := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	seedTx(t, repo, "u1", "50.00", core.Expense, date)
	seedTx(t, repo, "u2", "70.00", core.Expense, date)

	if err := repo.WriteDailyRollup(ctx, "u1", 2024, 3, 10, 9, 9); err != nil {
		t.Fatal(err)
	}
	if err := repo.WriteMonthlyRollup(ctx, "u2", 2024, 3, 9, 9); err != nil {
		t.Fatal(err)
	}

	if err := w.SweepMonth(ctx, 2024, 3, 10); err != nil {
		t.Fatalf("SweepMonth: %v", err)
	}

	daily, err := repo.GetDailyRollup(ctx, "u1", 2024, 3, 10)
	if err != nil {
		t.Fatal(err)
	}
	if daily.IncomeCents != 0 || daily.ExpenseCents != 5000 {
		t.Errorf("u1 daily after sweep = %+v", daily)
	}
	monthly, err := repo.GetMonthlyRollup(ctx, "u2", 2024, 3)
	if err != nil {
		t.Fatal(err)
	}
	if monthly.IncomeCents != 0 || monthly.ExpenseCents != 7000 {
		t.Errorf("u2 monthly after sweep = %+v", monthly)
	}
}

func TestReconcile_ScopedToEventUser(t *testing.T) {
	w, repo := newTestWorker(t)
	ctx := context.Background()

	date := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	seedTx(t, repo, "u1", "50.00", core.Expense, date)
	tx2 := seedTx(t, repo, "u2", "70.00", core.Expense, date)

	// Corrupt u1's roll-up, then reconcile an event for u2 only.
	if err := repo.WriteDailyRollup(ctx, "u1", 2024, 3, 10, 0, 1); err != nil {
		t.Fatal(err)
	}
	if err := w.HandleTransactionEvent(ctx, amqp.NewTransactionEvent(amqp.ActionDeleted, tx2)); err != nil {
		t.Fatal(err)
	}

	daily, err := repo.GetDailyRollup(ctx, "u1", 2024, 3, 10)
	if err != nil {
		t.Fatal(err)
	}
	if daily.ExpenseCents != 1 {
		t.Errorf("u1's roll-up changed by u2's event: %+v", daily)
	}
}
