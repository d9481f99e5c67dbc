package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"bilancio/internal/config"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestLogger() *log.Logger {
	return log.New(slog.LevelError, "test")
}

func seedCategory(t *testing.T, repo *storage.SQLiteRepository, userID, name, icon string, typ core.TransactionType) core.Category {
	t.Helper()
	c, err := repo.CreateCategory(context.Background(), userID, core.CategoryInput{Name: name, Icon: icon, Type: typ})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return c
}

func seedTransaction(t *testing.T, repo *storage.SQLiteRepository, userID string, cat core.Category, amount string, typ core.TransactionType, date time.Time) core.Transaction {
	t.Helper()
	tx, err := repo.CreateTransaction(context.Background(), userID, core.TransactionInput{
		Amount: amount, Date: date, Type: typ, Category: cat.Name,
	}, cat)
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return tx
}

func day(y, m, d int) time.Time { return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC) }

func TestBalanceStats_MatchesInRangeSums(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewReportService(repo, config.StrategyRollup, newTestLogger())
	ctx := context.Background()

	salary := seedCategory(t, repo, "u1", "Salary", "💰", core.Income)
	food := seedCategory(t, repo, "u1", "Food", "🍔", core.Expense)
	seedTransaction(t, repo, "u1", salary, "2000.00", core.Income, day(2024, 3, 1))
	seedTransaction(t, repo, "u1", food, "150.00", core.Expense, day(2024, 3, 15))
	seedTransaction(t, repo, "u1", food, "999.00", core.Expense, day(2024, 6, 1)) // outside range

	res := svc.BalanceStats(ctx, "u1", core.DateRangeInput{From: day(2024, 3, 1), To: day(2024, 3, 31)})
	if !res.Success {
		t.Fatalf("BalanceStats failed: %s", res.Message)
	}
	stats := res.Data.(core.BalanceStats)
	if stats.IncomeCents != 200000 || stats.ExpenseCents != 15000 {
		t.Errorf("stats = %+v, want income 200000 expense 15000", stats)
	}
	if balance := stats.IncomeCents - stats.ExpenseCents; balance != 185000 {
		t.Errorf("derived balance = %d, want 185000", balance)
	}
}

func TestBalanceStats_RejectedRanges(t *testing.T) {
	svc := NewReportService(newTestStorage(t), config.StrategyRollup, newTestLogger())
	ctx := context.Background()

	tests := []struct {
		name string
		in   core.DateRangeInput
	}{
		{"negative span", core.DateRangeInput{From: day(2024, 1, 10), To: day(2024, 1, 1)}},
		{"span over 90 days", core.DateRangeInput{From: day(2024, 1, 1), To: day(2024, 12, 31)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.BalanceStats(ctx, "u1", tt.in)
			if res.Success {
				t.Error("invalid range accepted")
			}
			if res.Message == "" {
				t.Error("failure envelope carries no message")
			}
		})
	}
}

func TestHistoryData_StrategyDivergenceOnSparsePeriods(t *testing.T) {
	repo := newTestStorage(t)
	ctx := context.Background()

	food := seedCategory(t, repo, "u1", "Food", "🍔", core.Expense)
	seedTransaction(t, repo, "u1", food, "10.00", core.Expense, day(2024, 1, 5))
	seedTransaction(t, repo, "u1", food, "20.00", core.Expense, day(2024, 8, 12))

	in := core.HistoryInput{TimeFrame: core.FrameYear, Year: 2024}

	// Roll-up strategy left-fills: exactly 12 months, 0-11.
	rollup := NewReportService(repo, config.StrategyRollup, newTestLogger())
	res := rollup.HistoryData(ctx, "u1", in)
	if !res.Success {
		t.Fatalf("rollup HistoryData failed: %s", res.Message)
	}
	filled := res.Data.([]core.HistoryPoint)
	if len(filled) != 12 {
		t.Fatalf("rollup year series has %d entries, want 12", len(filled))
	}
	for m, p := range filled {
		if p.Month != m {
			t.Fatalf("entry %d has month %d", m, p.Month)
		}
	}
	if filled[0].ExpenseCents != 1000 || filled[7].ExpenseCents != 2000 {
		t.Errorf("filled sums wrong: jan=%d aug=%d", filled[0].ExpenseCents, filled[7].ExpenseCents)
	}
	if filled[3].ExpenseCents != 0 || filled[3].IncomeCents != 0 {
		t.Errorf("empty month not zero-filled: %+v", filled[3])
	}

	// Scan strategy is sparse: only months with transactions appear.
	scan := NewReportService(repo, config.StrategyScan, newTestLogger())
	res = scan.HistoryData(ctx, "u1", in)
	if !res.Success {
		t.Fatalf("scan HistoryData failed: %s", res.Message)
	}
	sparse := res.Data.([]core.HistoryPoint)
	if len(sparse) != 2 {
		t.Fatalf("scan year series has %d entries, want 2", len(sparse))
	}
	if sparse[0].Month != 0 || sparse[1].Month != 7 {
		t.Errorf("sparse months = %d, %d, want 0, 7", sparse[0].Month, sparse[1].Month)
	}

	// Where both have data the sums agree.
	if sparse[0].ExpenseCents != filled[0].ExpenseCents {
		t.Errorf("strategies disagree on january: %d vs %d", sparse[0].ExpenseCents, filled[0].ExpenseCents)
	}
}

func TestHistoryData_MonthFrameCoversEveryCalendarDay(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewReportService(repo, config.StrategyRollup, newTestLogger())
	ctx := context.Background()

	food := seedCategory(t, repo, "u1", "Food", "🍔", core.Expense)
	seedTransaction(t, repo, "u1", food, "33.00", core.Expense, day(2024, 2, 29))

	res := svc.HistoryData(ctx, "u1", core.HistoryInput{TimeFrame: core.FrameMonth, Month: 1, Year: 2024})
	if !res.Success {
		t.Fatalf("HistoryData failed: %s", res.Message)
	}
	series := res.Data.([]core.HistoryPoint)
	if len(series) != 29 {
		t.Fatalf("Feb 2024 series has %d entries, want 29", len(series))
	}
	if series[28].ExpenseCents != 3300 {
		t.Errorf("leap-day sum = %d, want 3300", series[28].ExpenseCents)
	}

	res = svc.HistoryData(ctx, "u1", core.HistoryInput{TimeFrame: core.FrameMonth, Month: 1, Year: 2023})
	if !res.Success {
		t.Fatal(res.Message)
	}
	if got := len(res.Data.([]core.HistoryPoint)); got != 28 {
		t.Errorf("Feb 2023 series has %d entries, want 28", got)
	}
}

func TestHistoryData_RejectsBadWindow(t *testing.T) {
	svc := NewReportService(newTestStorage(t), config.StrategyRollup, newTestLogger())

	res := svc.HistoryData(context.Background(), "u1", core.HistoryInput{
		TimeFrame: core.FrameMonth, Month: 12, Year: 2024,
	})
	if res.Success {
		t.Error("month=12 accepted, want validation failure")
	}
}

func TestHistoryPeriods_DefaultsToCurrentYear(t *testing.T) {
	svc := NewReportService(newTestStorage(t), config.StrategyRollup, newTestLogger())

	res := svc.HistoryPeriods(context.Background(), "u1")
	if !res.Success {
		t.Fatal(res.Message)
	}
	years := res.Data.([]int)
	if len(years) != 1 || years[0] != time.Now().UTC().Year() {
		t.Errorf("periods = %v, want current year only", years)
	}
}

func TestTransactionHistory_FormatsWithoutMutatingStoredAmount(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewReportService(repo, config.StrategyRollup, newTestLogger())
	ctx := context.Background()

	food := seedCategory(t, repo, "u1", "Food", "🍔", core.Expense)
	tx := seedTransaction(t, repo, "u1", food, "1234.56", core.Expense, day(2024, 3, 10))

	res := svc.TransactionHistory(ctx, "u1", core.DateRangeInput{From: day(2024, 3, 1), To: day(2024, 3, 31)})
	if !res.Success {
		t.Fatalf("TransactionHistory failed: %s", res.Message)
	}
	listed := res.Data.([]FormattedTransaction)
	if len(listed) != 1 {
		t.Fatalf("got %d transactions, want 1", len(listed))
	}
	if listed[0].FormattedAmount != "$1,234.56" {
		t.Errorf("formatted = %q, want $1,234.56", listed[0].FormattedAmount)
	}
	if listed[0].AmountCents != 123456 {
		t.Errorf("raw cents = %d, want 123456", listed[0].AmountCents)
	}

	// The stored row is untouched by formatting.
	stored, err := repo.GetTransaction(ctx, "u1", tx.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.AmountCents != 123456 {
		t.Errorf("stored cents = %d after listing, want 123456", stored.AmountCents)
	}
}

func TestTransactionHistory_SnapshotSurvivesCategoryDeletion(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewReportService(repo, config.StrategyRollup, newTestLogger())
	ctx := context.Background()

	food := seedCategory(t, repo, "u1", "Food", "🍔", core.Expense)
	seedTransaction(t, repo, "u1", food, "12.00", core.Expense, day(2024, 3, 10))

	if err := repo.DeleteCategory(ctx, "u1", food.ID); err != nil {
		t.Fatal(err)
	}

	res := svc.TransactionHistory(ctx, "u1", core.DateRangeInput{From: day(2024, 3, 1), To: day(2024, 3, 31)})
	if !res.Success {
		t.Fatal(res.Message)
	}
	listed := res.Data.([]FormattedTransaction)
	if len(listed) != 1 {
		t.Fatal("transaction missing after category deletion")
	}
	if listed[0].CategoryName != "Food" || listed[0].CategoryIcon != "🍔" {
		t.Errorf("snapshot = %q/%q, want Food/🍔", listed[0].CategoryName, listed[0].CategoryIcon)
	}
}
