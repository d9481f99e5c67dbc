package core

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2024, 3, 15, 2, 30, 0, 0, loc) // 2024-03-14 21:30 UTC

	got := NormalizeDate(in)
	want := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NormalizeDate() = %v, want %v", got, want)
	}
}

func TestDateKey(t *testing.T) {
	y, m, d := DateKey(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC))
	if y != 2024 || m != 0 || d != 31 {
		t.Errorf("DateKey() = (%d, %d, %d), want (2024, 0, 31)", y, m, d)
	}
}

func TestTransactionType_IsValid(t *testing.T) {
	if !Income.IsValid() || !Expense.IsValid() {
		t.Error("income/expense should be valid")
	}
	if TransactionType("transfer").IsValid() {
		t.Error("transfer should be invalid")
	}
}

func TestTimeFrame_IsValid(t *testing.T) {
	if !FrameYear.IsValid() || !FrameMonth.IsValid() {
		t.Error("year/month should be valid")
	}
	if TimeFrame("week").IsValid() {
		t.Error("week should be invalid")
	}
}
