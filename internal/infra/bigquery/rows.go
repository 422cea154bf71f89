package bigquery

import (
	"math/big"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-insights/internal/domain"
)

// TransactionRow is one row of the transactions/categories join.
type TransactionRow struct {
	ID     int64  `bigquery:"id"`      // REQUIRED
	UserID string `bigquery:"user_id"` // REQUIRED

	CategoryID          bigquery.NullInt64  `bigquery:"category_id"`          // NULLABLE
	CategoryName        bigquery.NullString `bigquery:"category_name"`        // categories.name
	CategoryDescription bigquery.NullString `bigquery:"category_description"` // categories.description

	Amount          *big.Rat            `bigquery:"amount"`           // NUMERIC, nil when NULL
	TransactionType string              `bigquery:"transaction_type"` // 'Einnahme' | 'Ausgabe'
	Currency        bigquery.NullString `bigquery:"currency"`         // NULLABLE

	Date        bigquery.NullDate   `bigquery:"date"`        // NULLABLE
	Description bigquery.NullString `bigquery:"description"` // NULLABLE
}

// CategoryRow is one row of the categories table.
type CategoryRow struct {
	ID          int64               `bigquery:"id"`
	Name        string              `bigquery:"name"`
	Description bigquery.NullString `bigquery:"description"`
}

// PreferenceRow is one row of the user_preferences table.
type PreferenceRow struct {
	UserID            string              `bigquery:"user_id"`
	Saldo             *big.Rat            `bigquery:"saldo"`
	PreferredCurrency bigquery.NullString `bigquery:"preferred_currency"`
}

// GoalRow is a goal with progress and status derived in SQL.
type GoalRow struct {
	ID                 int64              `bigquery:"id"`
	UserID             string             `bigquery:"user_id"`
	Title              string             `bigquery:"title"`
	TargetAmount       float64            `bigquery:"target_amount"`
	CurrentAmount      float64            `bigquery:"current_amount"`
	TargetDate         bigquery.NullDate  `bigquery:"target_date"`
	CategoryID         bigquery.NullInt64 `bigquery:"category_id"`
	ProgressPercentage float64            `bigquery:"progress_percentage"`
	Status             string             `bigquery:"status"`
}

// ToDomain converts the row to the engine's record type.
func (r *TransactionRow) ToDomain() domain.TransactionRecord {
	rec := domain.TransactionRecord{
		ID:                  r.ID,
		UserID:              r.UserID,
		CategoryName:        r.CategoryName.StringVal,
		CategoryDescription: r.CategoryDescription.StringVal,
		Amount:              ratText(r.Amount),
		Kind:                domain.TransactionKind(r.TransactionType),
		Currency:            r.Currency.StringVal,
		Description:         r.Description.StringVal,
	}
	if r.CategoryID.Valid {
		rec.CategoryID = r.CategoryID.Int64
	}
	if r.Date.Valid {
		rec.Date = r.Date.Date
	}
	return rec
}

// ToDomain converts the row to a catalog entry.
func (r *CategoryRow) ToDomain() domain.CategoryEntry {
	return domain.CategoryEntry{ID: r.ID, Name: r.Name, Description: r.Description.StringVal}
}

// ToDomain converts the row to a budget preference.
func (r *PreferenceRow) ToDomain() *domain.BudgetPreference {
	return &domain.BudgetPreference{
		UserID:            r.UserID,
		Saldo:             ratText(r.Saldo),
		PreferredCurrency: r.PreferredCurrency.StringVal,
	}
}

// ToDomain converts the row to goal progress.
func (r *GoalRow) ToDomain() domain.GoalProgress {
	g := domain.GoalProgress{
		ID:                 r.ID,
		UserID:             r.UserID,
		Title:              r.Title,
		TargetAmount:       r.TargetAmount,
		CurrentAmount:      r.CurrentAmount,
		ProgressPercentage: r.ProgressPercentage,
		Status:             domain.GoalStatus(r.Status),
	}
	if r.TargetDate.Valid {
		g.TargetDate = r.TargetDate.Date
	}
	if r.CategoryID.Valid {
		g.CategoryID = r.CategoryID.Int64
	}
	return g
}

// ratText renders a NUMERIC value as decimal text; NULL becomes "".
func ratText(r *big.Rat) string {
	if r == nil {
		return ""
	}
	return r.FloatString(bigquery.NumericScaleDigits)
}
