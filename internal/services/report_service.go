package services

import (
	"context"
	"time"

	"bilancio/internal/config"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

// ReportService serves the read-side operations: balance and category
// statistics, history series and the transaction listing. History reads go
// through one of two interchangeable strategies chosen at startup:
//
//   - rollup: query the pre-aggregated roll-up tables and left-fill every
//     period in range with zero entries;
//   - scan: fetch all of the user's transactions and re-aggregate in
//     memory, returning only periods that have transactions.
type ReportService struct {
	storage  *storage.SQLiteRepository
	strategy string
	logger   *log.Logger
}

func NewReportService(storage *storage.SQLiteRepository, strategy string, logger *log.Logger) *ReportService {
	return &ReportService{
		storage:  storage,
		strategy: strategy,
		logger:   logger.WithComponent(log.ComponentReport),
	}
}

// BalanceStats sums the in-range amounts split by type. The balance itself
// (income - expense) is derived by consumers, never persisted.
func (s *ReportService) BalanceStats(ctx context.Context, userID string, in core.DateRangeInput) Result {
	if err := in.Validate(); err != nil {
		return failForError(ctx, s.logger, "balance_stats", err, "")
	}

	stats, err := s.storage.BalanceStats(ctx, userID, in.From, in.To)
	if err != nil {
		return failForError(ctx, s.logger, "balance_stats", err, "")
	}
	return OK(stats)
}

// CategoriesStats groups in-range transactions by (type, category) and
// orders groups by descending sum.
func (s *ReportService) CategoriesStats(ctx context.Context, userID string, in core.DateRangeInput) Result {
	if err := in.Validate(); err != nil {
		return failForError(ctx, s.logger, "categories_stats", err, "")
	}

	stats, err := s.storage.CategoryStats(ctx, userID, in.From, in.To)
	if err != nil {
		return failForError(ctx, s.logger, "categories_stats", err, "")
	}
	if stats == nil {
		stats = []core.CategoryStats{}
	}
	return OK(stats)
}

// HistoryData returns the history series for the requested window using
// the configured strategy. The two strategies intentionally diverge on
// sparse periods; see the type comment.
func (s *ReportService) HistoryData(ctx context.Context, userID string, in core.HistoryInput) Result {
	if err := in.Validate(); err != nil {
		return failForError(ctx, s.logger, "history_data", err, "")
	}

	var (
		points []core.HistoryPoint
		err    error
	)
	if s.strategy == config.StrategyScan {
		points, err = s.scanHistory(ctx, userID, in)
	} else {
		points, err = s.rollupHistory(ctx, userID, in)
	}
	if err != nil {
		return failForError(ctx, s.logger, "history_data", err, "")
	}
	if points == nil {
		points = []core.HistoryPoint{}
	}
	return OK(points)
}

func (s *ReportService) rollupHistory(ctx context.Context, userID string, in core.HistoryInput) ([]core.HistoryPoint, error) {
	if in.TimeFrame == core.FrameYear {
		rows, err := s.storage.ReadYearRollups(ctx, userID, in.Year)
		if err != nil {
			return nil, err
		}
		return core.FillYearSeries(in.Year, rows), nil
	}

	rows, err := s.storage.ReadMonthRollups(ctx, userID, in.Year, in.Month)
	if err != nil {
		return nil, err
	}
	return core.FillMonthSeries(in.Year, in.Month, rows), nil
}

func (s *ReportService) scanHistory(ctx context.Context, userID string, in core.HistoryInput) ([]core.HistoryPoint, error) {
	transactions, err := s.storage.ListAllTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.AggregateHistory(transactions, core.ReportFilter{
		TimeFrame: in.TimeFrame,
		Period:    core.Period{Month: in.Month, Year: in.Year},
	}), nil
}

// HistoryPeriods returns the distinct years with recorded history,
// ascending, defaulting to the current year when there is none yet.
func (s *ReportService) HistoryPeriods(ctx context.Context, userID string) Result {
	years, err := s.storage.ListRollupYears(ctx, userID)
	if err != nil {
		return failForError(ctx, s.logger, "history_periods", err, "")
	}
	if len(years) == 0 {
		years = []int{time.Now().UTC().Year()}
	}
	return OK(years)
}

// FormattedTransaction is a transaction decorated with its display-
// formatted amount. The stored amount stays a raw numeric value.
type FormattedTransaction struct {
	core.Transaction
	FormattedAmount string `json:"formatted_amount"`
}

// TransactionHistory lists in-range transactions newest first, each with
// the amount formatted in the user's configured currency.
func (s *ReportService) TransactionHistory(ctx context.Context, userID string, in core.DateRangeInput) Result {
	if err := in.Validate(); err != nil {
		return failForError(ctx, s.logger, "transaction_history", err, "")
	}

	settings, err := s.storage.GetOrCreateUserSettings(ctx, userID)
	if err != nil {
		return failForError(ctx, s.logger, "transaction_history", err, "settings not found")
	}
	currency, ok := core.LookupCurrency(settings.Currency)
	if !ok {
		// Settings predate a currency removal; fall back to the default.
		currency, _ = core.LookupCurrency(core.DefaultCurrency)
	}

	transactions, err := s.storage.ListTransactionsInRange(ctx, userID, in.From, in.To)
	if err != nil {
		return failForError(ctx, s.logger, "transaction_history", err, "")
	}

	formatted := make([]FormattedTransaction, len(transactions))
	for i, t := range transactions {
		formatted[i] = FormattedTransaction{
			Transaction:     t,
			FormattedAmount: core.FormatCents(t.AmountCents, currency),
		}
	}
	return OK(formatted)
}
