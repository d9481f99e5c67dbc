package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bilancio/internal/core"
)

const queryDateLayout = "2006-01-02"

// parseQueryDate accepts plain dates and RFC 3339 timestamps; either way
// only the UTC calendar date survives.
func parseQueryDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	if t, err := time.Parse(queryDateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s is not a valid date", name)
	}
	return core.NormalizeDate(t), nil
}

func parseDateRange(r *http.Request) (core.DateRangeInput, error) {
	q := r.URL.Query()
	from, err := parseQueryDate("from", q.Get("from"))
	if err != nil {
		return core.DateRangeInput{}, err
	}
	to, err := parseQueryDate("to", q.Get("to"))
	if err != nil {
		return core.DateRangeInput{}, err
	}
	return core.DateRangeInput{From: from, To: to}, nil
}

func parseHistoryInput(r *http.Request) (core.HistoryInput, error) {
	q := r.URL.Query()
	in := core.HistoryInput{TimeFrame: core.TimeFrame(q.Get("timeFrame"))}

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return core.HistoryInput{}, fmt.Errorf("year is not a valid number")
	}
	in.Year = year

	// month is only meaningful for the month frame; absent means January.
	if raw := q.Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			return core.HistoryInput{}, fmt.Errorf("month is not a valid number")
		}
		in.Month = month
	}
	return in, nil
}
