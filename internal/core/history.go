package core

import (
	"sort"
	"time"
)

// This file implements the on-read aggregation strategy: history series are
// re-derived in memory from raw transaction rows, and the helpers that
// left-fill roll-up series with zero-valued periods.

// AggregateHistory groups transactions into a history series for the filter.
//
// For a year frame the key is the (zero-based) month of transactions whose
// year matches; for a month frame the key is the calendar day of
// transactions matching both year and month. Only periods with at least one
// transaction appear in the result: unlike the roll-up read path, missing
// periods are NOT filled with zero entries, so callers must tolerate sparse
// series.
func AggregateHistory(transactions []Transaction, f ReportFilter) []HistoryPoint {
	type key struct{ month, day int }
	buckets := make(map[key]*HistoryPoint)

	for _, tx := range transactions {
		year, month, day := DateKey(tx.Date)
		if year != f.Period.Year {
			continue
		}

		var k key
		switch f.TimeFrame {
		case FrameYear:
			k = key{month: month}
		case FrameMonth:
			if month != f.Period.Month {
				continue
			}
			k = key{month: month, day: day}
		default:
			continue
		}

		p, ok := buckets[k]
		if !ok {
			p = &HistoryPoint{Year: f.Period.Year, Month: k.month, Day: k.day}
			buckets[k] = p
		}
		switch tx.Type {
		case Income:
			p.IncomeCents += tx.AmountCents
		case Expense:
			p.ExpenseCents += tx.AmountCents
		}
	}

	points := make([]HistoryPoint, 0, len(buckets))
	for _, p := range buckets {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Month != points[j].Month {
			return points[i].Month < points[j].Month
		}
		return points[i].Day < points[j].Day
	})
	return points
}

// DaysInMonth returns the number of calendar days in the zero-based month
// of the given year, leap years included.
func DaysInMonth(year, month int) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// FillYearSeries expands sparse per-month points into exactly 12 entries,
// months 0-11, zero-valued where absent.
func FillYearSeries(year int, points []HistoryPoint) []HistoryPoint {
	byMonth := make(map[int]HistoryPoint, len(points))
	for _, p := range points {
		byMonth[p.Month] = p
	}
	series := make([]HistoryPoint, 12)
	for m := 0; m < 12; m++ {
		p, ok := byMonth[m]
		if !ok {
			p = HistoryPoint{Year: year, Month: m}
		}
		p.Year = year
		series[m] = p
	}
	return series
}

// FillMonthSeries expands sparse per-day points into one entry per calendar
// day of the (zero-based) month, days 1..DaysInMonth, zero-valued where
// absent.
func FillMonthSeries(year, month int, points []HistoryPoint) []HistoryPoint {
	byDay := make(map[int]HistoryPoint, len(points))
	for _, p := range points {
		byDay[p.Day] = p
	}
	days := DaysInMonth(year, month)
	series := make([]HistoryPoint, days)
	for d := 1; d <= days; d++ {
		p, ok := byDay[d]
		if !ok {
			p = HistoryPoint{Year: year, Month: month, Day: d}
		}
		p.Year = year
		p.Month = month
		series[d-1] = p
	}
	return series
}
