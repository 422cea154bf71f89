package domain

import (
	"cloud.google.com/go/civil"
)

// CategoryEntry is one row of the category catalog.
type CategoryEntry struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// BudgetPreference holds a user's spending ceiling and preferred currency.
type BudgetPreference struct {
	UserID string `json:"user_id"`
	// Saldo is the decimal text of the monthly spending ceiling.
	Saldo             string `json:"saldo"`
	PreferredCurrency string `json:"preferred_currency"`
}

// DefaultCurrency is used whenever a user has no preferred currency.
const DefaultCurrency = "EUR"

// DefaultPreference is the preference assumed for users without a stored one.
func DefaultPreference(userID string) BudgetPreference {
	return BudgetPreference{UserID: userID, Saldo: "0", PreferredCurrency: DefaultCurrency}
}

// GoalStatus is derived by the goal store from amounts and target date.
type GoalStatus string

const (
	GoalCompleted  GoalStatus = "completed"
	GoalOverdue    GoalStatus = "overdue"
	GoalInProgress GoalStatus = "in_progress"
)

// GoalProgress is a savings goal together with its derived progress.
type GoalProgress struct {
	ID                 int64      `json:"id"`
	UserID             string     `json:"user_id"`
	Title              string     `json:"title"`
	TargetAmount       float64    `json:"target_amount"`
	CurrentAmount      float64    `json:"current_amount"`
	TargetDate         civil.Date `json:"target_date"`
	CategoryID         int64      `json:"category_id,omitempty"`
	ProgressPercentage float64    `json:"progress_percentage"`
	Status             GoalStatus `json:"status"`
}

// DeriveGoalStatus applies the store-side status rule: reached goals are
// completed, goals past their target date are overdue, the rest (including goals
// without a target date) are in progress.
func DeriveGoalStatus(current, target float64, targetDate, today civil.Date) GoalStatus {
	switch {
	case current >= target:
		return GoalCompleted
	case targetDate != civil.Date{} && targetDate.Before(today):
		return GoalOverdue
	default:
		return GoalInProgress
	}
}

// ProgressPercentage returns current/target in percent, or 0 for a
// non-positive target.
func ProgressPercentage(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return current * 100 / target
}
