package core

import (
	"errors"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	FrameYear  TimeFrame = "year"
	FrameMonth TimeFrame = "month"
)

type (
	// TransactionType is one of exactly two variants: income or expense.
	TransactionType string

	// TimeFrame selects the granularity of a history series:
	// "year" groups by month, "month" groups by day.
	TimeFrame string

	// Transaction is a single income or expense record. The category name
	// and icon are snapshots taken when the transaction is created, so
	// later category edits or deletions never alter historical display.
	Transaction struct {
		ID           string          `json:"id"`
		UserID       string          `json:"user_id"`
		AmountCents  int64           `json:"amount_cents"`
		Type         TransactionType `json:"type"`
		CategoryName string          `json:"category"`
		CategoryIcon string          `json:"category_icon"`
		Description  string          `json:"description"`
		Date         time.Time       `json:"date"`
		CreatedAt    time.Time       `json:"created_at"`
	}

	Category struct {
		ID        string          `json:"id"`
		UserID    string          `json:"user_id"`
		Name      string          `json:"name"`
		Icon      string          `json:"icon"`
		Type      TransactionType `json:"type"`
		CreatedAt time.Time       `json:"created_at"`
	}

	// UserSettings holds per-user display preferences. Created lazily
	// with the default currency on first access.
	UserSettings struct {
		UserID   string `json:"user_id"`
		Currency string `json:"currency"`
	}

	// Period identifies a month within a year. Month is zero-based (0-11),
	// matching the calendar-month convention of the original data.
	Period struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	}

	// ReportFilter is the explicit filter state threaded through history
	// reads in place of ambient client-side store state.
	ReportFilter struct {
		TimeFrame TimeFrame
		Period    Period
	}

	// HistoryPoint is one bucket of a history series. Day is set only for
	// month-frame series and counts calendar days starting at 1.
	HistoryPoint struct {
		Year         int   `json:"year"`
		Month        int   `json:"month"`
		Day          int   `json:"day,omitempty"`
		IncomeCents  int64 `json:"income_cents"`
		ExpenseCents int64 `json:"expense_cents"`
	}

	// BalanceStats are the in-range sums split by type. Balance is always
	// derived as income - expense by the caller, never stored.
	BalanceStats struct {
		IncomeCents  int64 `json:"income_cents"`
		ExpenseCents int64 `json:"expense_cents"`
	}

	// CategoryStats is one (type, category) group with its summed amount.
	CategoryStats struct {
		Type         TransactionType `json:"type"`
		CategoryName string          `json:"category"`
		CategoryIcon string          `json:"category_icon"`
		SumCents     int64           `json:"sum_cents"`
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidTimeFrame = errors.New("invalid time frame")
	ErrInvalidCurrency  = errors.New("unsupported currency")
	ErrDuplicateName    = errors.New("category name already exists")
)

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (f TimeFrame) IsValid() bool {
	return f == FrameYear || f == FrameMonth
}

// NormalizeDate discards the time-of-day component, keeping the UTC
// calendar date only.
func NormalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey returns the (year, month, day) roll-up key for a date, with the
// month zero-based.
func DateKey(t time.Time) (year, month, day int) {
	u := t.UTC()
	return u.Year(), int(u.Month()) - 1, u.Day()
}
