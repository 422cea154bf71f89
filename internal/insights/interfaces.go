package insights

import (
	"context"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// TransactionStore reads a user's transactions joined with their category labels.
// Implementations return records ordered by date, newest first.
type TransactionStore interface {
	ListTransactionsWithCategory(ctx context.Context, userID string, dateRange domain.DateRange) ([]domain.TransactionRecord, error)
}

// PreferenceStore reads budget preferences. A user without preferences yields (nil, nil).
type PreferenceStore interface {
	GetPreference(ctx context.Context, userID string) (*domain.BudgetPreference, error)
}

// CategoryCatalog lists all known categories.
type CategoryCatalog interface {
	ListCategories(ctx context.Context) ([]domain.CategoryEntry, error)
}

// GoalStore reads savings goals with derived progress and status.
type GoalStore interface {
	GetGoalProgress(ctx context.Context, userID string) ([]domain.GoalProgress, error)
}

// Stores groups the collaborators the engine reads from.
type Stores struct {
	Transactions TransactionStore
	Preferences  PreferenceStore
	Categories   CategoryCatalog
	Goals        GoalStore
}
