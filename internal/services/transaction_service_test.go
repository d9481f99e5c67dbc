package services

import (
	"context"
	"testing"
	"time"

	"bilancio/internal/core"
)

func TestTransactionService_CreateAndDelete(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewTransactionService(repo, nil, newTestLogger())
	ctx := context.Background()

	seedCategory(t, repo, "u1", "Salary", "💰", core.Income)

	res := svc.Create(ctx, "u1", core.TransactionInput{
		Amount:      "1500.00",
		Date:        day(2024, 5, 2),
		Type:        core.Income,
		Category:    "Salary",
		Description: "may paycheck",
	})
	if !res.Success {
		t.Fatalf("Create failed: %s", res.Message)
	}
	tx := res.Data.(core.Transaction)
	if tx.AmountCents != 150000 || tx.CategoryName != "Salary" || tx.CategoryIcon != "💰" {
		t.Errorf("created transaction = %+v", tx)
	}

	res = svc.Delete(ctx, "u1", tx.ID)
	if !res.Success {
		t.Fatalf("Delete failed: %s", res.Message)
	}
	if _, err := repo.GetTransaction(ctx, "u1", tx.ID); err != core.ErrNotFound {
		t.Errorf("transaction still readable after delete: %v", err)
	}
}

func TestTransactionService_CreateUnknownCategory(t *testing.T) {
	svc := NewTransactionService(newTestStorage(t), nil, newTestLogger())

	res := svc.Create(context.Background(), "u1", core.TransactionInput{
		Amount: "10.00", Date: day(2024, 5, 2), Type: core.Expense, Category: "Nope",
	})
	if res.Success {
		t.Fatal("create with unknown category succeeded")
	}
	if res.Message != "category not found" {
		t.Errorf("message = %q, want %q", res.Message, "category not found")
	}
}

func TestTransactionService_CategoryTypeMustMatch(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewTransactionService(repo, nil, newTestLogger())
	ctx := context.Background()

	seedCategory(t, repo, "u1", "Salary", "💰", core.Income)

	// A Salary income category does not exist on the expense side.
	res := svc.Create(ctx, "u1", core.TransactionInput{
		Amount: "10.00", Date: day(2024, 5, 2), Type: core.Expense, Category: "Salary",
	})
	if res.Success {
		t.Fatal("expense against an income-only category succeeded")
	}
	if res.Message != "category not found" {
		t.Errorf("message = %q, want %q", res.Message, "category not found")
	}
}

func TestTransactionService_CreateRejectsBadInput(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewTransactionService(repo, nil, newTestLogger())
	ctx := context.Background()

	seedCategory(t, repo, "u1", "Food", "🍔", core.Expense)

	tests := []struct {
		name string
		in   core.TransactionInput
	}{
		{"zero amount", core.TransactionInput{Amount: "0", Date: day(2024, 5, 2), Type: core.Expense, Category: "Food"}},
		{"negative amount", core.TransactionInput{Amount: "-5.00", Date: day(2024, 5, 2), Type: core.Expense, Category: "Food"}},
		{"sub-cent amount", core.TransactionInput{Amount: "0.003", Date: day(2024, 5, 2), Type: core.Expense, Category: "Food"}},
		{"unknown type", core.TransactionInput{Amount: "5.00", Date: day(2024, 5, 2), Type: "transfer", Category: "Food"}},
		{"missing category", core.TransactionInput{Amount: "5.00", Date: day(2024, 5, 2), Type: core.Expense}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.Create(ctx, "u1", tt.in)
			if res.Success {
				t.Error("invalid input accepted")
			}
			if res.Message == "" {
				t.Error("failure envelope carries no message")
			}
		})
	}
}

func TestTransactionService_DeleteIsOwnerScoped(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewTransactionService(repo, nil, newTestLogger())
	ctx := context.Background()

	food := seedCategory(t, repo, "u1", "Food", "🍔", core.Expense)
	tx := seedTransaction(t, repo, "u1", food, "10.00", core.Expense, day(2024, 5, 2))

	res := svc.Delete(ctx, "u2", tx.ID)
	if res.Success {
		t.Fatal("cross-tenant delete succeeded")
	}
	if res.Message != "transaction not found" {
		t.Errorf("message = %q, want %q", res.Message, "transaction not found")
	}
	if _, err := repo.GetTransaction(ctx, "u1", tx.ID); err != nil {
		t.Errorf("owner's transaction gone after foreign delete attempt: %v", err)
	}
}

func TestTransactionService_CreateMaintainsRollups(t *testing.T) {
	repo := newTestStorage(t)
	svc := NewTransactionService(repo, nil, newTestLogger())
	ctx := context.Background()

	seedCategory(t, repo, "u1", "Food", "🍔", core.Expense)

	res := svc.Create(ctx, "u1", core.TransactionInput{
		Amount: "25.00", Date: time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC), Type: core.Expense, Category: "Food",
	})
	if !res.Success {
		t.Fatal(res.Message)
	}

	daily, err := repo.GetDailyRollup(ctx, "u1", 2024, 6, 4)
	if err != nil {
		t.Fatalf("daily roll-up missing: %v", err)
	}
	if daily.ExpenseCents != 2500 {
		t.Errorf("daily expense = %d, want 2500", daily.ExpenseCents)
	}
	monthly, err := repo.GetMonthlyRollup(ctx, "u1", 2024, 6)
	if err != nil {
		t.Fatalf("monthly roll-up missing: %v", err)
	}
	if monthly.ExpenseCents != 2500 {
		t.Errorf("monthly expense = %d, want 2500", monthly.ExpenseCents)
	}
}
