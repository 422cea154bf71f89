package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidDate is returned when a range bound is not a YYYY-MM-DD date.
var ErrInvalidDate = errors.New("invalid date")

// Meta describes the evaluated range and its headline figures.
type Meta struct {
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	Currency  string  `json:"currency"`

	TotalIncome      *float64 `json:"totalIncome,omitempty"`
	TotalExpense     *float64 `json:"totalExpense,omitempty"`
	NetCashflow      *float64 `json:"netCashflow,omitempty"`
	FixedCosts       *float64 `json:"fixedCosts,omitempty"`
	Saving           *float64 `json:"saving,omitempty"`
	WeekendSpending  *float64 `json:"weekendSpending,omitempty"`
	MicroSpending    *float64 `json:"microSpending,omitempty"`
	VariableSpending *float64 `json:"variableSpending,omitempty"`
}

// Result is the ranked tip list for one request.
type Result struct {
	Tips []Tip `json:"tips"`
	Meta Meta  `json:"meta"`
}

// Engine turns a user's transactions into ranked tips. It keeps no state between
// requests and is safe for concurrent use.
type Engine struct {
	stores Stores
	rules  Rules
	log    zerolog.Logger
}

// NewEngine creates an engine reading from the given stores.
func NewEngine(stores Stores, rules Rules, log zerolog.Logger) *Engine {
	return &Engine{
		stores: stores,
		rules:  rules.withDefaults(),
		log:    log,
	}
}

// GenerateTips evaluates the user's activity between startDate and endDate
// (YYYY-MM-DD, empty for unbounded) and returns at most ten ranked tips.
func (e *Engine) GenerateTips(ctx context.Context, userID, startDate, endDate string) (*Result, error) {
	dateRange, err := parseRange(startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("GenerateTips: %w", err)
	}

	log := e.log.With().Str("user_id", userID).Logger()

	var (
		records    []domain.TransactionRecord
		pref       *domain.BudgetPreference
		categories []domain.CategoryEntry
		goals      []domain.GoalProgress
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = e.stores.Transactions.ListTransactionsWithCategory(gctx, userID, dateRange)
		if err != nil {
			return fmt.Errorf("GenerateTips: list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		pref, err = e.stores.Preferences.GetPreference(gctx, userID)
		if err != nil {
			return fmt.Errorf("GenerateTips: get preference: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = e.stores.Categories.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("GenerateTips: list categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if e.stores.Goals == nil {
			return nil
		}
		list, err := e.stores.Goals.GetGoalProgress(gctx, userID)
		if err != nil {
			log.Warn().Err(err).Msg("Goal progress unavailable, continuing without goals")
			return nil
		}
		goals = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if pref == nil {
		def := domain.DefaultPreference(userID)
		pref = &def
	}
	currency := firstNonEmpty(pref.PreferredCurrency, domain.DefaultCurrency)
	meta := Meta{
		StartDate: optionalString(startDate),
		EndDate:   optionalString(endDate),
		Currency:  currency,
	}

	if len(records) == 0 {
		log.Debug().Msg("No transactions in range")
		return &Result{Tips: []Tip{finalize(noDataTip())}, Meta: meta}, nil
	}

	catalog := catalogByID(categories)
	expenses, income := normalize(records)
	agg := aggregate(expenses, income, catalog, e.rules)

	in := &detectorInput{
		agg:      agg,
		budget:   parseAmount(pref.Saldo),
		currency: currency,
		catalog:  catalog,
		goals:    goals,
		rules:    e.rules,
	}

	if prevRange, ok := previousMonth(dateRange); ok {
		prevRecords, err := e.stores.Transactions.ListTransactionsWithCategory(ctx, userID, prevRange)
		if err != nil {
			return nil, fmt.Errorf("GenerateTips: list previous month transactions: %w", err)
		}
		prevExpenses, _ := normalize(prevRecords)
		in.previousVariable = variableSpend(prevExpenses, e.rules)
		in.hasPreviousVariable = true
	}

	tips := rankTips(runDetectors(in), e.rules.MaxTips)
	fillMeta(&meta, agg)

	log.Debug().
		Int("transactions", len(records)).
		Int("tips", len(tips)).
		Msg("Generated tips")

	return &Result{Tips: tips, Meta: meta}, nil
}

func fillMeta(m *Meta, a *Aggregates) {
	m.TotalIncome = rounded(a.TotalIncome)
	m.TotalExpense = rounded(a.TotalExpense)
	m.NetCashflow = rounded(a.NetCashflow)
	m.FixedCosts = rounded(a.FixedSum)
	m.Saving = rounded(a.SavingSum)
	m.WeekendSpending = rounded(a.WeekendVariableSum)
	m.MicroSpending = rounded(a.MicroSum)
	m.VariableSpending = rounded(a.VariableSum)
}

func rounded(x float64) *float64 {
	v := round2(x)
	return &v
}

// optionalString echoes a date bound, nil when it is blank.
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseRange(startDate, endDate string) (domain.DateRange, error) {
	var r domain.DateRange
	var err error
	if r.Start, err = parseBound(startDate); err != nil {
		return r, fmt.Errorf("startDate: %w", err)
	}
	if r.End, err = parseBound(endDate); err != nil {
		return r, fmt.Errorf("endDate: %w", err)
	}
	return r, nil
}

func parseBound(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil || !d.IsValid() {
		return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// previousMonth shifts a range lying within one calendar month back by one
// month. Days past the end of the shorter month are clamped.
func previousMonth(r domain.DateRange) (domain.DateRange, bool) {
	if !r.HasStart() || !r.HasEnd() {
		return domain.DateRange{}, false
	}
	if r.Start.Year != r.End.Year || r.Start.Month != r.End.Month {
		return domain.DateRange{}, false
	}
	return domain.DateRange{Start: shiftMonth(r.Start, -1), End: shiftMonth(r.End, -1)}, true
}

func shiftMonth(d civil.Date, months int) civil.Date {
	first := time.Date(d.Year, d.Month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := d.Day
	if day > lastDay {
		day = lastDay
	}
	return civil.Date{Year: first.Year(), Month: first.Month(), Day: day}
}
