package snapshot

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
)

// Store serves a Dataset through the engine's collaborator interfaces.
// The dataset is treated as read-only.
type Store struct {
	records    []domain.TransactionRecord
	prefs      map[string]domain.BudgetPreference
	categories []domain.CategoryEntry
	goals      []domain.GoalProgress
	now        func() time.Time
}

// NewStore indexes ds. Goal status is derived against the current date.
func NewStore(ds *Dataset) *Store {
	return NewStoreWithClock(ds, time.Now)
}

// NewStoreWithClock is NewStore with an explicit clock for goal status.
func NewStoreWithClock(ds *Dataset, now func() time.Time) *Store {
	s := &Store{
		records: ds.Records(),
		prefs:   make(map[string]domain.BudgetPreference, len(ds.Preferences)),
		goals:   ds.GoalRecords(),
		now:     now,
	}
	for _, p := range ds.Preferences {
		s.prefs[p.UserID] = p
	}
	s.categories = append(s.categories, ds.Categories...)
	sort.SliceStable(s.categories, func(i, j int) bool { return s.categories[i].ID < s.categories[j].ID })
	return s
}

// Stores returns the store as the engine's collaborator set.
func (s *Store) Stores() insights.Stores {
	return insights.Stores{Transactions: s, Preferences: s, Categories: s, Goals: s}
}

// ListTransactionsWithCategory returns the user's transactions inside the range,
// newest first.
func (s *Store) ListTransactionsWithCategory(ctx context.Context, userID string, dateRange domain.DateRange) ([]domain.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.TransactionRecord
	for _, r := range s.records {
		if r.UserID != userID || !dateRange.Contains(r.Date) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// GetPreference returns the user's preference, or nil if none exists.
func (s *Store) GetPreference(ctx context.Context, userID string) (*domain.BudgetPreference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := s.prefs[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// ListCategories returns the catalog ordered by id.
func (s *Store) ListCategories(ctx context.Context) ([]domain.CategoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.CategoryEntry, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

// GetGoalProgress returns the user's goals with derived progress and status,
// earliest target date first and undated goals last.
func (s *Store) GetGoalProgress(ctx context.Context, userID string) ([]domain.GoalProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	today := civil.DateOf(s.now())
	var out []domain.GoalProgress
	for _, g := range s.goals {
		if g.UserID != userID {
			continue
		}
		g.ProgressPercentage = domain.ProgressPercentage(g.CurrentAmount, g.TargetAmount)
		g.Status = domain.DeriveGoalStatus(g.CurrentAmount, g.TargetAmount, g.TargetDate, today)
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].TargetDate.IsValid(), out[j].TargetDate.IsValid()
		if di != dj {
			return di
		}
		if di && out[i].TargetDate != out[j].TargetDate {
			return out[i].TargetDate.Before(out[j].TargetDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

var (
	_ insights.TransactionStore = (*Store)(nil)
	_ insights.PreferenceStore  = (*Store)(nil)
	_ insights.CategoryCatalog  = (*Store)(nil)
	_ insights.GoalStore        = (*Store)(nil)
)
